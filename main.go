package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mirmaia/pos/internal/api"
	"mirmaia/pos/internal/auth"
	"mirmaia/pos/internal/catalog"
	"mirmaia/pos/internal/config"
	"mirmaia/pos/internal/database"
	"mirmaia/pos/internal/inventory"
	"mirmaia/pos/internal/migrations"
	"mirmaia/pos/internal/orders"
	"mirmaia/pos/internal/recipe"
	"mirmaia/pos/internal/reports"
	"mirmaia/pos/internal/scheduler"
	"mirmaia/pos/internal/seed"
	"mirmaia/pos/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "optional env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Location()
	if err != nil {
		baseLogger.Fatal("invalid business timezone", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		baseLogger.Fatal("failed to connect database", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		baseLogger.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := auth.NewUsers(db)
	if err := users.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, baseLogger.Named("seed")); err != nil {
		baseLogger.Fatal("failed to create bootstrap admin", zap.Error(err))
	}
	if _, err := seed.LoadMenuFile(ctx, db, cfg.Seed.MenuCSV, baseLogger.Named("seed")); err != nil {
		baseLogger.Error("menu seed failed", zap.Error(err))
	}

	inventoryStore := inventory.NewStore(db)
	coordinator := orders.NewCoordinator(db, inventory.NewLedger(nil), reports.NewTracker(), orders.Options{
		TaxRate:  cfg.Business.TaxRate,
		Location: loc,
		Logger:   baseLogger.Named("svc.orders"),
	})

	handler := api.New(api.Deps{
		DB:          db,
		Tokens:      auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Users:       users,
		Catalog:     catalog.NewStore(db),
		Inventory:   inventoryStore,
		Recipes:     recipe.NewStore(db),
		Orders:      coordinator,
		Reports:     reports.NewService(db, loc, nil),
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      baseLogger.Named("http"),
	})

	sched := scheduler.NewScheduler(cfg.Scheduler.LowStockCron, inventoryStore, loc, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("POS server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("driver", cfg.Database.Driver),
			zap.Float64("tax_rate", cfg.Business.TaxRate),
			zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
