package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/TimeMint/internal/catalog"
	"github.com/fastprodman/TimeMint/internal/clock"
	core "github.com/fastprodman/TimeMint/internal/game"
	"github.com/fastprodman/TimeMint/internal/repos/saves/memory"
	"github.com/fastprodman/TimeMint/internal/rhythm"
	"github.com/fastprodman/TimeMint/internal/services/game"
)

const testKey = "timemint_save_v1"

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// newTestRouter loads st into a memory-backed service and returns its router.
func newTestRouter(t *testing.T, st core.State) http.Handler {
	t.Helper()

	c, err := catalog.Default()
	require.NoError(t, err)

	clk := clock.NewFakeClock(epoch)
	store := memory.New(5)

	data, err := core.Encode(st)
	require.NoError(t, err)
	require.NoError(t, store.Store(t.Context(), testKey, data))

	svc := game.New(core.NewEngine(c), store, rhythm.NewDetector(clk), nil, clk, game.Options{Key: testKey})
	require.NoError(t, svc.Load(t.Context()))

	return NewRouter(svc, nil)
}

func withBalance(balance, total float64) core.State {
	st := core.Fresh(epoch)
	st.Balance = balance
	st.TotalEarned = total

	return st
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}

	return rec, out
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, core.Fresh(epoch))
	rec, out := do(t, h, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestGetState(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, withBalance(1234.5, 2000))
	rec, out := do(t, h, http.MethodGet, "/state", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, 1234.5, out["balance"])
	assert.Equal(t, "$1,234.50", out["balanceFormatted"])
	assert.Equal(t, "normal", out["mode"])
	assert.Len(t, out["upgrades"], 4)
}

func TestSetMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"fast", `{"mode":"fast"}`, http.StatusOK, ""},
		{"case and spaces", `{"mode":" FREEZE "}`, http.StatusOK, ""},
		{"unknown mode", `{"mode":"warp"}`, http.StatusBadRequest, "unknown mode"},
		{"unknown field", `{"mode":"fast","speed":2}`, http.StatusBadRequest, "invalid JSON"},
		{"bad json", `{"mode":`, http.StatusBadRequest, "invalid JSON"},
		{"empty body", ``, http.StatusBadRequest, "empty body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestRouter(t, core.Fresh(epoch))
			rec, out := do(t, h, http.MethodPost, "/mode", tt.body)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, out["error"])
				return
			}

			state, ok := out["state"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, out["mode"], state["mode"])
		})
	}
}

func TestPurchase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		balance  float64
		wantCode int
		wantErr  string
	}{
		{"upgrade", "/upgrades/u1/purchase", 20, http.StatusOK, ""},
		{"business", "/businesses/b1/purchase", 10, http.StatusOK, ""},
		{"upgrade unaffordable", "/upgrades/u2/purchase", 99.99, http.StatusConflict, "insufficient funds"},
		{"business unaffordable", "/businesses/b2/purchase", 10, http.StatusConflict, "insufficient funds"},
		{"unknown upgrade", "/upgrades/b1/purchase", 1e9, http.StatusNotFound, "unknown item"},
		{"unknown business", "/businesses/zzz/purchase", 1e9, http.StatusNotFound, "unknown item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestRouter(t, withBalance(tt.balance, tt.balance))
			rec, out := do(t, h, http.MethodPost, tt.path, "")

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, out["error"])

				_, state := do(t, h, http.MethodGet, "/state", "")
				assert.Equal(t, tt.balance, state["balance"], "refused purchase leaves the balance alone")
				return
			}

			purchase, ok := out["purchase"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, 1.0, purchase["owned"])
		})
	}
}

func TestPurchase_UpgradeDebitsBalance(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, withBalance(20, 20))
	rec, out := do(t, h, http.MethodPost, "/upgrades/u1/purchase", "")
	require.Equal(t, http.StatusOK, rec.Code)

	purchase := out["purchase"].(map[string]any)
	assert.Equal(t, 15.0, purchase["cost"])
	assert.InDelta(t, 17.25, purchase["nextCost"], 1e-9)

	state := out["state"].(map[string]any)
	assert.InDelta(t, 5.0, state["balance"], 1e-9)
}

func TestTap(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, core.Fresh(epoch))

	rec, out := do(t, h, http.MethodPost, "/tap", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "tap is only available in freeze mode", out["error"])

	rec, _ = do(t, h, http.MethodPost, "/mode", `{"mode":"freeze"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out = do(t, h, http.MethodPost, "/tap", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 5.0, out["amount"], 1e-9)
}

func TestPrestige(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, withBalance(10, 99999))
	rec, out := do(t, h, http.MethodPost, "/prestige", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "prestige threshold not reached", out["error"])

	h = newTestRouter(t, withBalance(10, 400000))
	rec, out = do(t, h, http.MethodPost, "/prestige", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := out["prestige"].(map[string]any)
	assert.Equal(t, 2.0, res["awardedPoints"])

	state := out["state"].(map[string]any)
	assert.Equal(t, 0.0, state["balance"])
}

func TestSpectrum(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, core.Fresh(epoch))

	rec, out := do(t, h, http.MethodPost, "/rhythm/spectrum", `{"bins":[255,255,255,255,3]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["beat"])
	assert.Greater(t, out["rhythmMultiplier"], 1.0)

	rec, out = do(t, h, http.MethodPost, "/rhythm/spectrum", `{"bins":[10,10,10,10]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["beat"])

	rec, _ = do(t, h, http.MethodPost, "/rhythm/spectrum", `{"bins":[256]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/rhythm/spectrum", `{"bins":"loud"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetRhythm(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, core.Fresh(epoch))

	_, out := do(t, h, http.MethodPost, "/rhythm/spectrum", `{"bins":[255,255,255,255]}`)
	require.Greater(t, out["rhythmMultiplier"], 1.0)

	rec, out := do(t, h, http.MethodPost, "/rhythm/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	state := out["state"].(map[string]any)
	multipliers := state["multipliers"].(map[string]any)
	assert.Equal(t, 1.0, multipliers["rhythm"])
}

func TestSaveHistory(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, withBalance(42, 42))

	rec, out := do(t, h, http.MethodGet, "/saves/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	saves, ok := out["saves"].([]any)
	require.True(t, ok)
	require.Len(t, saves, 1)
	entry := saves[0].(map[string]any)
	assert.Equal(t, 42.0, entry["balance"])
	assert.Equal(t, true, entry["readable"])

	for _, q := range []string{"abc", "0", "-1", "101"} {
		rec, _ = do(t, h, http.MethodGet, "/saves/history?limit="+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", q)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, core.Fresh(epoch))

	req := httptest.NewRequest(http.MethodGet, "/tap", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDecodeBody_Sentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty", "", errEmptyBody},
		{"truncated", `{"mode":`, errInvalidJSON},
		{"unknown field", `{"nope":1}`, errInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/mode", strings.NewReader(tt.body))
			var dst modeRequest

			err := decodeBody(httptest.NewRecorder(), req, &dst)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
