package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/fastprodman/TimeMint/internal/repos/saves"
)

func (r *savesRepo) History(ctx context.Context, key string, limit int) ([]saves.Snapshot, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT data, saved_at
		FROM save_history
		WHERE save_key = ?
		ORDER BY id DESC
		LIMIT ?
	`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []saves.Snapshot

	for rows.Next() {
		var (
			data    string
			savedAt int64
		)

		err = rows.Scan(&data, &savedAt)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}

		out = append(out, saves.Snapshot{Data: []byte(data), SavedAt: time.UnixMilli(savedAt)})
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return out, nil
}
