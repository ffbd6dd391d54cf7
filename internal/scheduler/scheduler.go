package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"leilauto/internal/domain"
	"leilauto/internal/service"
)

// Runner triggers one scraping cycle.
type Runner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
}

type Scheduler struct {
	runner     Runner
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(runner Runner, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	_, err := s.runner.Run(runCtx)
	if errors.Is(err, service.ErrRunInProgress) {
		// A manually triggered run is still going; this tick just skips.
		s.logger.Info("skipping scheduled run, another run in progress")
		return
	}
	if err != nil {
		s.logger.Error("scheduled run failed", "error", err)
	}
}
