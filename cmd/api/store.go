package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fastprodman/TimeMint/internal/config"
	"github.com/fastprodman/TimeMint/internal/infra/pgutils"
	"github.com/fastprodman/TimeMint/internal/infra/sqliteutil"
	"github.com/fastprodman/TimeMint/internal/repos/saves"
	"github.com/fastprodman/TimeMint/internal/repos/saves/memory"
	"github.com/fastprodman/TimeMint/internal/repos/saves/postgres"
	"github.com/fastprodman/TimeMint/internal/repos/saves/sqlite"
)

// openStore builds the save store for cfg.Driver. The returned db is nil for
// the memory driver.
func openStore(ctx context.Context, cfg config.StorageConfig) (saves.Saves, *sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := pgutils.OpenDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}

		return postgres.New(db, cfg.History), db, nil
	case config.DriverSQLite:
		db, err := sqliteutil.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}

		err = sqlite.Migrate(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}

		return sqlite.New(db, cfg.History), db, nil
	case config.DriverMemory:
		slog.Warn("memory save store selected, progress is lost on exit")

		return memory.New(cfg.History), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown save driver %q", cfg.Driver)
	}
}
