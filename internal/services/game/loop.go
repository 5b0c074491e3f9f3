package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is the loop cadence when none is configured.
const DefaultTickInterval = 100 * time.Millisecond

// Loop drives GameService.Tick from a time.Ticker. The cadence is only a
// schedule; each tick measures its own elapsed time.
type Loop struct {
	svc      *GameService
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLoop(svc *GameService, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	return &Loop{svc: svc, interval: interval}
}

// Start runs the loop in its own goroutine until ctx is canceled or Stop is
// called. Starting a running loop does nothing.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != nil {
		return
	}

	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})

	go l.run(ctx, l.done)

	slog.Info("simulation loop started", "interval", l.interval)
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.svc.Tick()
		}
	}
}

// Stop cancels the loop and waits for the goroutine to exit.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if done == nil {
		return nil
	}

	cancel()

	select {
	case <-done:
		slog.Info("simulation loop stopped")
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("loop did not stop"), ctx.Err())
	}
}
