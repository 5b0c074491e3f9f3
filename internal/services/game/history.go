package game

import (
	"context"
	"fmt"
	"time"

	"github.com/fastprodman/TimeMint/internal/format"
	core "github.com/fastprodman/TimeMint/internal/game"
)

// HistoryEntry summarizes one stored snapshot.
type HistoryEntry struct {
	SavedAt          time.Time `json:"savedAt"`
	Balance          float64   `json:"balance"`
	BalanceFormatted string    `json:"balanceFormatted"`
	TotalEarned      float64   `json:"totalEarned"`
	PrestigePoints   int64     `json:"prestigePoints"`
	Readable         bool      `json:"readable"`
}

// SaveHistory lists up to limit past saves, newest first. Snapshots that no
// longer decode are reported with Readable false.
func (s *GameService) SaveHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	snaps, err := s.store.History(ctx, s.opts.Key, limit)
	if err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}

	out := make([]HistoryEntry, 0, len(snaps))

	for _, snap := range snaps {
		e := HistoryEntry{SavedAt: snap.SavedAt}

		st, derr := core.Decode(snap.Data)
		if derr == nil {
			e.Readable = true
			e.Balance = st.Balance
			e.BalanceFormatted = format.Currency(st.Balance)
			e.TotalEarned = st.TotalEarned
			e.PrestigePoints = st.PrestigePoints
		}

		out = append(out, e)
	}

	return out, nil
}
