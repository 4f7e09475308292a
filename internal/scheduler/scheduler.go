package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/config"
	"github.com/kdiomande/stockroom/internal/service/catalog"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron       *cron.Cron
	catalogSvc *catalog.Service
	cfg        config.Config
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, catalogSvc *catalog.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:       cron.New(),
		catalogSvc: catalogSvc,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers the periodic jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("cache_refresh", s.cfg.Cache.RefreshCron))

	_, err := s.cron.AddFunc(s.cfg.Cache.RefreshCron, s.refreshMasterData)
	if err != nil {
		s.logger.Error("failed to schedule master-data refresh", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) refreshMasterData() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.catalogSvc.RefreshAll(ctx); err != nil {
		s.logger.Error("master-data refresh run failed", zap.Error(err))
		return
	}
	s.logger.Info("master-data cache refreshed")
}
