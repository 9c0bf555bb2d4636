// Package scheduler re-runs saved searches on a cron interval so the catalog
// and vector index stay warm without waiting for user traffic.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"joblens/catalog-service/internal/catalog"
	"joblens/catalog-service/internal/model"
)

// Scheduler wraps robfig/cron around the aggregator's cache-bypassing
// refresh path.
type Scheduler struct {
	cron    *cron.Cron
	service *catalog.Service
	logger  *zap.Logger
	spec    string // cron spec, e.g. "@every 6h"

	mu      sync.Mutex
	queries []model.SearchQuery
}

// New creates a Scheduler that fires every intervalHours hours.
func New(service *catalog.Service, logger *zap.Logger, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		logger:  logger,
		spec:    fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Register adds a saved search to the refresh rotation. Safe to call while
// the scheduler is running.
func (s *Scheduler) Register(q model.SearchQuery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
}

// Start registers the cron job and runs one refresh cycle immediately so the
// catalog is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go s.runCycle(ctx)
	return nil
}

// Stop shuts the scheduler down; already-running cycles finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.mu.Lock()
	queries := make([]model.SearchQuery, len(s.queries))
	copy(queries, s.queries)
	s.mu.Unlock()

	if len(queries) == 0 {
		s.logger.Debug("no saved searches registered, skipping refresh cycle")
		return
	}

	s.logger.Info("refresh cycle started", zap.Int("queries", len(queries)))
	for _, q := range queries {
		if ctx.Err() != nil {
			return
		}
		res, err := s.service.Refresh(ctx, q)
		if err != nil {
			s.logger.Warn("saved search refresh failed",
				zap.String("keywords", q.Keywords), zap.Error(err))
			continue
		}
		s.logger.Info("saved search refreshed",
			zap.String("keywords", q.Keywords), zap.Int("total", res.Total))
	}
	s.logger.Info("refresh cycle complete")
}
