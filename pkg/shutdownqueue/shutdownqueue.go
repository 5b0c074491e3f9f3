// Package shutdownqueue runs cleanup tasks in LIFO order at process exit.
//
// A Queue takes named tasks from any goroutine and drains them once:
//
//	q := shutdownqueue.New()
//	q.Add("http server", srv.Shutdown)
//	...
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	err := q.Shutdown(ctx)
//
// The package-level Add and Shutdown use a process-wide default queue.
// Panics in tasks are recovered and reported as errors. Shutdown is
// idempotent and aggregates errors with errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type entry struct {
	name string
	task Task
}

type Queue struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

func New() *Queue {
	return &Queue{entries: make([]entry, 0, 8)}
}

var defaultQueue = New()

// Add registers t under name on the default queue.
func Add(name string, t Task) { defaultQueue.Add(name, t) }

// Shutdown drains the default queue.
func Shutdown(ctx context.Context) error { return defaultQueue.Shutdown(ctx) }

// Add registers a task to be run on Shutdown, in LIFO order.
// If t is nil or shutdown has already started, Add does nothing.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.entries = append(q.entries, entry{name: name, task: t})
}

// Len is the number of tasks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// Shutdown drains all registered tasks in LIFO order. Later calls are no-ops.
//
// If ctx is canceled or times out mid-drain, Shutdown stops early and returns
// the context error joined with any task errors so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed && len(q.entries) == 0 {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	entries := q.entries
	q.entries = nil

	q.mu.Unlock()

	var errs []error

	for i := len(entries) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled before %q: %w", entries[i].name, ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := run(ctx, entries[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func run(ctx context.Context, e entry) (err error) {
	start := time.Now()

	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task %q: %v", e.name, r)
		}

		if err != nil {
			slog.Error("shutdown task failed", "task", e.name, "error", err)
			return
		}

		slog.Debug("shutdown task done", "task", e.name, "took", time.Since(start))
	}()

	err = e.task(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", e.name, err)
	}

	return nil
}
