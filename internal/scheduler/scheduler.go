// Package scheduler wires up the cron job that periodically backfills
// missing profile and job-posting embeddings.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/embedding"
)

// Scheduler wraps robfig/cron and manages the embedding refresh loop.
type Scheduler struct {
	cron      *cron.Cron
	refresher *embedding.Refresher
	log       *zap.Logger
	spec      string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(refresher *embedding.Refresher, log *zap.Logger, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		log:       log,
		spec:      fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so new rows are covered without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("embedding refresh cron started", zap.String("spec", s.spec))

	// Run immediately on startup (non-blocking)
	go s.runRefresh(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("embedding refresh cron stopped")
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	s.log.Info("embedding refresh cycle started")
	if err := s.refresher.RefreshAll(ctx); err != nil {
		s.log.Error("embedding refresh cycle failed", zap.Error(err))
		return
	}
	s.log.Info("embedding refresh cycle complete")
}
