package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"mirmaia/pos/domain"
)

// LowStockSource lists raw materials at or below their minimum.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]domain.InventoryItem, error)
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	source   LowStockSource
	logger   *zap.Logger
}

// NewScheduler creates a scheduler. An empty schedule leaves the sweep disabled.
func NewScheduler(schedule string, source LowStockSource, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		source:   source,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("low stock sweep disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.sweepLowStock); err != nil {
		return err
	}
	s.logger.Info("starting scheduler", zap.String("low_stock_cron", s.schedule))
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.SweepLowStock(ctx)
}

// SweepLowStock logs one warning per item that needs restocking and returns the count.
func (s *Scheduler) SweepLowStock(ctx context.Context) int {
	items, err := s.source.LowStock(ctx)
	if err != nil {
		s.logger.Error("low stock sweep failed", zap.Error(err))
		return 0
	}
	for _, item := range items {
		s.logger.Warn("inventory item below minimum",
			zap.Int64("inventory_item_id", item.ID),
			zap.String("name", item.Name),
			zap.Stringer("quantity", item.Quantity),
			zap.Stringer("min_quantity", item.MinQuantity))
	}
	if len(items) > 0 {
		s.logger.Info("low stock sweep finished", zap.Int("items", len(items)))
	}
	return len(items)
}
