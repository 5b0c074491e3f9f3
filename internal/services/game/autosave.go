package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultAutosaveSpec = "@every 5s"
	autosaveTimeout     = 5 * time.Second
)

// Autosaver saves the game on a cron schedule.
type Autosaver struct {
	svc  *GameService
	cron *cron.Cron
}

// NewAutosaver registers the save job under spec, which accepts the
// seconds-field cron syntax as well as descriptors such as "@every 5s".
func NewAutosaver(svc *GameService, spec string) (*Autosaver, error) {
	if spec == "" {
		spec = DefaultAutosaveSpec
	}

	a := &Autosaver{
		svc:  svc,
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	_, err := a.cron.AddFunc(spec, a.save)
	if err != nil {
		return nil, fmt.Errorf("register autosave %q: %w", spec, err)
	}

	return a, nil
}

func (a *Autosaver) save() {
	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()

	err := a.svc.Save(ctx)
	if err != nil {
		slog.Error("autosave failed", "error", err)
	}
}

func (a *Autosaver) Start() {
	a.cron.Start()
	slog.Info("autosave started")
}

// Stop halts the schedule and waits for a running save to finish.
func (a *Autosaver) Stop(ctx context.Context) error {
	select {
	case <-a.cron.Stop().Done():
		slog.Info("autosave stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for autosave: %w", ctx.Err())
	}
}
