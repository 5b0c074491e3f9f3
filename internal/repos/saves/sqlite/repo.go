package sqlite

import (
	"database/sql"
	"time"

	"github.com/fastprodman/TimeMint/internal/repos/saves"
)

var _ saves.Saves = (*savesRepo)(nil)

type savesRepo struct {
	db           *sql.DB
	historyLimit int
	now          func() time.Time
}

// New returns a store on a database already migrated with Migrate.
// historyLimit snapshots are kept per key; zero disables history.
func New(db *sql.DB, historyLimit int) *savesRepo {
	return &savesRepo{db: db, historyLimit: historyLimit, now: time.Now}
}
