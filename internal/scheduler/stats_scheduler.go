package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/municipio/patentes-backend/internal/app/service"
	"github.com/municipio/patentes-backend/pkg/logger"
)

// StatsScheduler keeps the cached dashboard counts warm so the first request
// of the morning does not pay for four COUNT queries.
type StatsScheduler struct {
	cron        *cron.Cron
	memoService service.MemoService
}

func NewStatsScheduler(memoService service.MemoService) *StatsScheduler {
	return &StatsScheduler{
		cron:        cron.New(),
		memoService: memoService,
	}
}

// Start schedules the overview refresh every 10 minutes.
func (s *StatsScheduler) Start() error {
	_, err := s.cron.AddFunc("*/10 * * * *", func() {
		logger.Info("Starting scheduled overview refresh", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.memoService.RefreshOverview(ctx); err != nil {
			logger.Error("Failed to refresh overview from scheduler", err)
			return
		}

		logger.Info("Successfully refreshed overview from scheduler", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for overview refresh", err)
		return err
	}

	s.cron.Start()
	logger.Info("Stats scheduler started successfully (every 10 minutes)", nil)

	return nil
}

// Stop halts the scheduler.
func (s *StatsScheduler) Stop() {
	logger.Info("Stopping stats scheduler...", nil)
	s.cron.Stop()
	logger.Info("Stats scheduler stopped", nil)
}
