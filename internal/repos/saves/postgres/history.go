package postgres

import (
	"context"
	"fmt"

	"github.com/fastprodman/TimeMint/internal/repos/saves"
)

func (r *savesRepo) History(ctx context.Context, key string, limit int) ([]saves.Snapshot, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT data::text, saved_at
		FROM save_history
		WHERE save_key = $1
		ORDER BY id DESC
		LIMIT $2
	`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []saves.Snapshot

	for rows.Next() {
		var (
			data string
			snap saves.Snapshot
		)

		err = rows.Scan(&data, &snap.SavedAt)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}

		snap.Data = []byte(data)
		out = append(out, snap)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return out, nil
}
