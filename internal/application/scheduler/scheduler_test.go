package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/salto-club/internal/application/scheduler"
)

func TestRunnerKicksImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	r := scheduler.Runner{
		Name:     "test",
		Interval: time.Hour,
		Task: func(context.Context, time.Time) {
			calls.Add(1)
			cancel()
		},
	}
	err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestRunnerTicks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var calls atomic.Int32
	r := scheduler.Runner{
		Interval: time.Millisecond,
		Task: func(context.Context, time.Time) {
			if calls.Add(1) == 3 {
				cancel()
			}
		},
	}
	_ = r.Run(ctx)
	if calls.Load() < 3 {
		t.Errorf("calls = %d, want at least 3", calls.Load())
	}
}
