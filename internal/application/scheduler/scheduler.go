package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Runner calls Task on a ticker until the context ends.
type Runner struct {
	Name     string
	Interval time.Duration
	Task     func(ctx context.Context, now time.Time)
	Now      func() time.Time
}

func (r Runner) Run(ctx context.Context) error {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	slog.Info("scheduler_started", "task", r.Name, "interval", r.Interval.String())
	// kick immediately
	r.Task(ctx, now())

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler_stopped", "task", r.Name)
			return ctx.Err()
		case <-t.C:
			r.Task(ctx, now())
		}
	}
}
