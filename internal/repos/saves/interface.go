package saves

import (
	"context"
	"errors"
	"time"
)

var ErrSaveNotFound = errors.New("save not found")

// Snapshot is one stored copy of a save document.
type Snapshot struct {
	Data    []byte
	SavedAt time.Time
}

// Saves persists opaque save documents under a key. Every Store replaces
// the current document and appends it to a bounded history in one
// transaction.
type Saves interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, data []byte) error
	// History returns up to limit snapshots for key, newest first.
	History(ctx context.Context, key string, limit int) ([]Snapshot, error)
}
