package usecase

import (
	"context"
	"log/slog"
	"time"

	"InsightStream/internal/ports"
)

// Scheduler wires the cron driver with the refresh workflow.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring refreshes.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the refresh job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		result, err := s.pipeline.Refresh(ctx)
		if s.logger == nil {
			return
		}
		if err != nil {
			s.logger.Error("scheduled refresh failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled refresh done", "trigger", trigger, "new_items", len(result.Items), "errors", len(result.Errors))
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
