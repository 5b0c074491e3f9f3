package postgres

import (
	"database/sql"

	"github.com/fastprodman/TimeMint/internal/repos/saves"
)

var _ saves.Saves = (*savesRepo)(nil)

type savesRepo struct {
	db           *sql.DB
	historyLimit int
}

// New returns a store keeping historyLimit snapshots per key. Zero disables history.
func New(db *sql.DB, historyLimit int) *savesRepo {
	return &savesRepo{db: db, historyLimit: historyLimit}
}
