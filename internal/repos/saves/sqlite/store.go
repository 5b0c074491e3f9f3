package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/TimeMint/internal/infra/dbutil"
)

func (r *savesRepo) Store(ctx context.Context, key string, data []byte) error {
	now := r.now().UnixMilli()

	err := dbutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO saves (save_key, data, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (save_key) DO UPDATE
			SET data = excluded.data, updated_at = excluded.updated_at
		`, key, string(data), now)
		if err != nil {
			return fmt.Errorf("upsert save: %w", err)
		}

		if r.historyLimit <= 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO save_history (save_key, data, saved_at)
			VALUES (?, ?, ?)
		`, key, string(data), now)
		if err != nil {
			return fmt.Errorf("append history: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM save_history
			WHERE save_key = ?
			  AND id NOT IN (
				SELECT id FROM save_history
				WHERE save_key = ?
				ORDER BY id DESC
				LIMIT ?
			  )
		`, key, key, r.historyLimit)
		if err != nil {
			return fmt.Errorf("prune history: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("store save: %w", err)
	}

	return nil
}
