package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/TimeMint/internal/repos/saves"
)

func (r *savesRepo) Load(ctx context.Context, key string) ([]byte, error) {
	var data string

	err := r.db.QueryRowContext(ctx, `
		SELECT data::text
		FROM saves
		WHERE save_key = $1
	`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, saves.ErrSaveNotFound
		}

		return nil, fmt.Errorf("load save: %w", err)
	}

	return []byte(data), nil
}
