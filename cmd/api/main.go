package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/TimeMint/internal/api"
	"github.com/fastprodman/TimeMint/internal/catalog"
	"github.com/fastprodman/TimeMint/internal/clock"
	core "github.com/fastprodman/TimeMint/internal/game"
	"github.com/fastprodman/TimeMint/internal/infra/logging"
	"github.com/fastprodman/TimeMint/internal/rhythm"
	"github.com/fastprodman/TimeMint/internal/services/game"
	"github.com/fastprodman/TimeMint/internal/stream"
	"github.com/fastprodman/TimeMint/pkg/envconf"
	"github.com/fastprodman/TimeMint/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = logging.Setup(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	cat, err := catalog.Load(cfg.Game.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	store, db, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	// Tasks run last-added first, so the database closes after the final save.
	if db != nil {
		shutdownqueue.Add("close db", func(context.Context) error {
			return db.Close()
		})
	}

	// --- Game ---
	clk := clock.RealClock{}
	detector := rhythm.NewDetector(clk)

	var svc *game.GameService
	hub := stream.NewHub(func(bins []uint8) {
		svc.ObserveSpectrum(bins)
	})

	svc = game.New(core.NewEngine(cat), store, detector, hub, clk, game.Options{
		Key:             cfg.Storage.Key,
		OfflineEarnings: cfg.Game.OfflineEarnings,
		OfflineMax:      cfg.Game.OfflineMax,
	})

	err = svc.Load(ctx)
	if err != nil {
		return fmt.Errorf("load game: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	shutdownqueue.Add("final save", func(c context.Context) error {
		defer stopHub()

		err := svc.Save(c)
		if err != nil {
			return fmt.Errorf("final save: %w", err)
		}

		slog.Info("final save written", "key", cfg.Storage.Key)

		return nil
	})

	loop := game.NewLoop(svc, cfg.Game.TickInterval)
	loop.Start(context.Background())
	shutdownqueue.Add("stop loop", loop.Stop)

	autosaver, err := game.NewAutosaver(svc, cfg.Game.AutosaveSpec)
	if err != nil {
		return fmt.Errorf("init autosave: %w", err)
	}

	autosaver.Start()
	shutdownqueue.Add("stop autosave", autosaver.Stop)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, svc, http.HandlerFunc(hub.ServeWS))

	shutdownqueue.Add("http server", func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started",
		"port", cfg.Port,
		"save_driver", cfg.Storage.Driver,
		"tick_interval", cfg.Game.TickInterval,
		"autosave", cfg.Game.AutosaveSpec,
	)

	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
