package shutdownqueue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func noop(context.Context) error { return nil }

func TestAddNilTaskIsIgnored(t *testing.T) {
	t.Parallel()

	q := New()
	q.Add("nil", nil)

	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}

	err := q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("expected nil with no tasks; got %v", err)
	}
}

func TestLIFOOrder(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		order []string
	)

	q := New()
	for _, name := range []string{"close db", "final save", "stop loop", "http server"} {
		q.Add(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()

			return nil
		})
	}

	err := q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}

	want := []string{"http server", "stop loop", "final save", "close db"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("order mismatch: got %v, want %v", order, want)
	}
}

func TestPanicIsRecoveredAndNamed(t *testing.T) {
	t.Parallel()

	var ranAfter atomic.Bool

	q := New()
	q.Add("after", func(context.Context) error {
		ranAfter.Store(true)
		return nil
	})
	q.Add("boom", func(context.Context) error { panic("kaboom") })

	err := q.Shutdown(t.Context())
	if err == nil {
		t.Fatalf("expected error with panic; got nil")
	}

	if !strings.Contains(err.Error(), `panic in shutdown task "boom": kaboom`) {
		t.Fatalf("unexpected error: %q", err.Error())
	}

	if !ranAfter.Load() {
		t.Fatalf("expected remaining tasks to run after a panic")
	}
}

func TestCancelStopsDrain(t *testing.T) {
	t.Parallel()

	errA := errors.New("taskA")

	var ranB atomic.Bool

	gateReady := make(chan struct{})

	q := New()
	q.Add("a", func(context.Context) error { return errA })
	q.Add("b", func(context.Context) error {
		ranB.Store(true)
		return nil
	})
	q.Add("gate", func(ctx context.Context) error {
		close(gateReady)
		<-ctx.Done()

		return nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)

	go func() {
		errCh <- q.Shutdown(ctx)
	}()

	<-gateReady
	cancel()

	err := <-errCh
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled; got %v", err)
	}

	if !strings.Contains(err.Error(), `before "b"`) {
		t.Fatalf("expected the skipped task in the error; got %q", err.Error())
	}

	if ranB.Load() {
		t.Fatalf("task b must not run after cancel")
	}

	if errors.Is(err, errA) {
		t.Fatalf("task a must not have been reached")
	}
}

func TestShutdownRunsOnce(t *testing.T) {
	t.Parallel()

	var count atomic.Int32

	q := New()
	q.Add("count", func(context.Context) error {
		count.Add(1)
		return nil
	})

	for range 3 {
		err := q.Shutdown(t.Context())
		if err != nil {
			t.Fatalf("Shutdown error: %v", err)
		}
	}

	if got := count.Load(); got != 1 {
		t.Fatalf("expected one run; got %d", got)
	}
}

func TestAddDuringShutdownIsDropped(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	unblock := make(chan struct{})

	q := New()
	q.Add("noop", noop)
	q.Add("blocker", func(context.Context) error {
		close(started)
		<-unblock

		return nil
	})

	done := make(chan struct{})

	go func() {
		_ = q.Shutdown(context.Background())

		close(done)
	}()

	<-started

	var ran atomic.Bool
	q.Add("late", func(context.Context) error {
		ran.Store(true)
		return nil
	})

	close(unblock)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Shutdown did not finish")
	}

	if ran.Load() {
		t.Fatalf("task added after shutdown started must not run")
	}
}

func TestTaskErrorsAreJoinedAndWrapped(t *testing.T) {
	t.Parallel()

	err1 := errors.New("alpha")
	err2 := errors.New("beta")

	q := New()
	q.Add("first", func(context.Context) error { return err1 })
	q.Add("second", func(context.Context) error { return err2 })

	err := q.Shutdown(t.Context())
	if !errors.Is(err, err1) || !errors.Is(err, err2) {
		t.Fatalf("expected both errors; got %v", err)
	}

	s := err.Error()
	if !strings.Contains(s, "first: alpha") || !strings.Contains(s, "second: beta") {
		t.Fatalf("expected task names in error; got %q", s)
	}
}

//nolint:paralleltest
func TestDefaultQueue(t *testing.T) {
	var ran atomic.Bool

	Add("default", func(context.Context) error {
		ran.Store(true)
		return nil
	})

	err := Shutdown(t.Context())
	if err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}

	if !ran.Load() {
		t.Fatalf("expected task on the default queue to run")
	}
}
