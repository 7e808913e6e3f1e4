package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration values.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Business  BusinessConfig
	Scheduler SchedulerConfig
	Seed      SeedConfig
	LogLevel  string
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

// AuthConfig carries the JWT secret and the bootstrap administrator.
type AuthConfig struct {
	Secret        string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type BusinessConfig struct {
	TaxRate  float64
	Timezone string
}

// SchedulerConfig holds the low-stock sweep schedule. Empty disables it.
type SchedulerConfig struct {
	LowStockCron string
}

type SeedConfig struct {
	MenuCSV string
}

// Load reads configuration from the environment, optionally from envFile or a
// local .env, and validates it.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	taxRate, err := strconv.ParseFloat(getenvWithDefault("TAX_RATE", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	ttl, err := time.ParseDuration(getenvWithDefault("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getenvWithDefault("HTTP_PORT", "8080"),
			CORSOrigins: splitList(getenvWithDefault("CORS_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Driver: getenvWithDefault("DB_DRIVER", "sqlite"),
			DSN:    getenvWithDefault("DATABASE_DSN", "file:pos.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"),
		},
		Auth: AuthConfig{
			Secret:        getenvWithDefault("SECRET", "dev_secret"),
			TokenTTL:      ttl,
			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
			AdminName:     getenvWithDefault("ADMIN_NAME", "Administrator"),
		},
		Business: BusinessConfig{
			TaxRate:  taxRate,
			Timezone: getenvWithDefault("BUSINESS_TIMEZONE", "UTC"),
		},
		Scheduler: SchedulerConfig{
			LowStockCron: os.Getenv("LOW_STOCK_CRON"),
		},
		Seed: SeedConfig{
			MenuCSV: os.Getenv("MENU_CSV"),
		},
		LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures that configuration values are usable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("HTTP_PORT must be numeric, got %q", c.Server.Port)
	}
	switch c.Database.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or pgx, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_DSN must be provided")
	}
	if c.Auth.Secret == "" {
		return errors.New("SECRET must be provided")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.Business.TaxRate < 0 || c.Business.TaxRate > 100 {
		return fmt.Errorf("TAX_RATE must be between 0 and 100, got %v", c.Business.TaxRate)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Scheduler.LowStockCron != "" {
		if _, err := cron.ParseStandard(c.Scheduler.LowStockCron); err != nil {
			return fmt.Errorf("invalid LOW_STOCK_CRON: %w", err)
		}
	}
	return nil
}

// Location resolves the business timezone that decides the calendar day of an order.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", c.Business.Timezone, err)
	}
	return loc, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
