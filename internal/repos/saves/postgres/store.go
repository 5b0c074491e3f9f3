package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/TimeMint/internal/infra/dbutil"
)

func (r *savesRepo) Store(ctx context.Context, key string, data []byte) error {
	err := dbutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := upsertCurrent(ctx, tx, key, data)
		if err != nil {
			return err
		}

		if r.historyLimit <= 0 {
			return nil
		}

		err = appendHistory(ctx, tx, key, data)
		if err != nil {
			return err
		}

		return pruneHistory(ctx, tx, key, r.historyLimit)
	})
	if err != nil {
		return fmt.Errorf("store save: %w", err)
	}

	return nil
}

func upsertCurrent(ctx context.Context, tx *sql.Tx, key string, data []byte) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO saves (save_key, data, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (save_key) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("upsert save: %w", err)
	}

	return nil
}

func appendHistory(ctx context.Context, tx *sql.Tx, key string, data []byte) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO save_history (save_key, data)
		VALUES ($1, $2::jsonb)
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	return nil
}

func pruneHistory(ctx context.Context, tx *sql.Tx, key string, keep int) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM save_history
		WHERE save_key = $1
		  AND id NOT IN (
			SELECT id FROM save_history
			WHERE save_key = $1
			ORDER BY id DESC
			LIMIT $2
		  )
	`, key, keep)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}

	return nil
}
