package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fastprodman/TimeMint/internal/repos/saves"
)

var _ saves.Saves = (*savesRepo)(nil)

// savesRepo keeps everything in process memory. Nothing survives a restart.
type savesRepo struct {
	mu           sync.Mutex
	current      map[string][]byte
	history      map[string][]saves.Snapshot // oldest first
	historyLimit int
	now          func() time.Time
}

func New(historyLimit int) *savesRepo {
	return &savesRepo{
		current:      map[string][]byte{},
		history:      map[string][]saves.Snapshot{},
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

func (r *savesRepo) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.current[key]
	if !ok {
		return nil, saves.ErrSaveNotFound
	}

	return slices.Clone(data), nil
}

func (r *savesRepo) Store(ctx context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current[key] = slices.Clone(data)

	if r.historyLimit <= 0 {
		return nil
	}

	h := append(r.history[key], saves.Snapshot{Data: slices.Clone(data), SavedAt: r.now()})
	if len(h) > r.historyLimit {
		h = slices.Clone(h[len(h)-r.historyLimit:])
	}
	r.history[key] = h

	return nil
}

func (r *savesRepo) History(ctx context.Context, key string, limit int) ([]saves.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		return nil, nil
	}

	h := r.history[key]
	out := make([]saves.Snapshot, 0, min(limit, len(h)))

	for i := len(h) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, saves.Snapshot{Data: slices.Clone(h[i].Data), SavedAt: h[i].SavedAt})
	}

	return out, nil
}
