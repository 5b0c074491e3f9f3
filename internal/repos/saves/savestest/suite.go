// Package savestest holds behavior tests every saves.Saves backend must pass.
package savestest

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/TimeMint/internal/repos/saves"
)

// Factory returns an empty store that keeps historyLimit snapshots per key.
type Factory func(t *testing.T, historyLimit int) saves.Saves

func doc(balance float64) []byte {
	return fmt.Appendf(nil, `{"balance":%v,"version":"2.6.3"}`, balance)
}

func balanceOf(t *testing.T, data []byte) float64 {
	t.Helper()

	var v struct {
		Balance float64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(data, &v))

	return v.Balance
}

// Run exercises the store contract against backends built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("load missing", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, 3)

		_, err := s.Load(t.Context(), "nope")
		require.ErrorIs(t, err, saves.ErrSaveNotFound)
	})

	t.Run("store then load", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, 3)
		require.NoError(t, s.Store(t.Context(), "k", doc(15)))

		got, err := s.Load(t.Context(), "k")
		require.NoError(t, err)
		assert.Equal(t, 15.0, balanceOf(t, got))
	})

	t.Run("store overwrites", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, 3)
		require.NoError(t, s.Store(t.Context(), "k", doc(1)))
		require.NoError(t, s.Store(t.Context(), "k", doc(2)))

		got, err := s.Load(t.Context(), "k")
		require.NoError(t, err)
		assert.Equal(t, 2.0, balanceOf(t, got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, 3)
		require.NoError(t, s.Store(t.Context(), "a", doc(1)))
		require.NoError(t, s.Store(t.Context(), "b", doc(2)))

		got, err := s.Load(t.Context(), "a")
		require.NoError(t, err)
		assert.Equal(t, 1.0, balanceOf(t, got))
	})

	t.Run("history is bounded and newest first", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, 3)
		for i := 1; i <= 5; i++ {
			require.NoError(t, s.Store(t.Context(), "k", doc(float64(i))))
		}
		require.NoError(t, s.Store(t.Context(), "other", doc(99)))

		hist, err := s.History(t.Context(), "k", 10)
		require.NoError(t, err)
		require.Len(t, hist, 3)

		var got []float64
		for _, snap := range hist {
			got = append(got, balanceOf(t, snap.Data))
			assert.False(t, snap.SavedAt.IsZero())
		}
		assert.Equal(t, []float64{5, 4, 3}, got)

		hist, err = s.History(t.Context(), "k", 1)
		require.NoError(t, err)
		require.Len(t, hist, 1)
		assert.Equal(t, 5.0, balanceOf(t, hist[0].Data))
	})

	t.Run("history disabled", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, 0)
		require.NoError(t, s.Store(t.Context(), "k", doc(1)))

		hist, err := s.History(t.Context(), "k", 10)
		require.NoError(t, err)
		assert.Empty(t, hist)

		_, err = s.Load(t.Context(), "k")
		require.NoError(t, err)
	})

	t.Run("history of unknown key", func(t *testing.T) {
		t.Parallel()

		s := newStore(t, 3)

		hist, err := s.History(t.Context(), "nope", 10)
		require.NoError(t, err)
		assert.Empty(t, hist)
		assert.False(t, errors.Is(err, saves.ErrSaveNotFound))
	})
}
