package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Task is one unit of periodic work.
type Task interface {
	Poll(ctx context.Context) error
}

type Scheduler struct {
	task     Task
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewScheduler runs task every interval. A poll that outlives timeout is
// cancelled; zero timeout means no limit.
func NewScheduler(task Task, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		task:     task,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start polls once immediately and then on every tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.task.Poll(ctx); err != nil {
		s.logger.Error("poll failed", "error", err)
	}
}
