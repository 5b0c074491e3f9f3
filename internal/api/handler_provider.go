package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	core "github.com/fastprodman/TimeMint/internal/game"
	"github.com/fastprodman/TimeMint/internal/services/game"
	"github.com/fastprodman/TimeMint/internal/stream"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

var (
	errEmptyBody   = errors.New("empty body")
	errInvalidJSON = errors.New("invalid JSON")
)

// GameService is the part of game.GameService the handlers drive.
type GameService interface {
	View() game.View
	SetMode(m core.TimeMode) error
	BuyUpgrade(id string) (core.Purchase, error)
	BuyBusiness(id string) (core.Purchase, error)
	Tap() (float64, error)
	Prestige(ctx context.Context) (core.PrestigeResult, error)
	ObserveSpectrum(bins []uint8) (bool, float64)
	ResetRhythm()
	SaveHistory(ctx context.Context, limit int) ([]game.HistoryEntry, error)
}

// HandlerProvider wraps a GameService and exposes HTTP handlers.
type HandlerProvider struct {
	svc GameService
}

// NewHandler returns a new Handler provider.
func NewHandler(svc GameService) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a size-capped JSON body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}

		return errInvalidJSON
	}

	return nil
}

// writeRefusal maps a refused game action to a 4xx response. Anything
// unrecognised is logged and reported as 500.
func writeRefusal(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnknownItem):
		writeError(w, http.StatusNotFound, "unknown item")
	case errors.Is(err, core.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, "insufficient funds")
	case errors.Is(err, core.ErrTapUnavailable):
		writeError(w, http.StatusConflict, "tap is only available in freeze mode")
	case errors.Is(err, core.ErrPrestigeLocked):
		writeError(w, http.StatusConflict, "prestige threshold not reached")
	case errors.Is(err, core.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, "unknown mode")
	default:
		slog.Error("game action failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseHistoryLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return defaultHistoryLimit, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: %w", err)
	}
	if n <= 0 || n > maxHistoryLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxHistoryLimit)
	}

	return n, nil
}

// --- Handlers ---

type modeRequest struct {
	Mode string `json:"mode"`
}

type spectrumRequest struct {
	Bins []int `json:"bins"`
}

// GetStateHandler handles GET /state
func (h *HandlerProvider) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.View())
}

// SetModeHandler handles POST /mode
func (h *HandlerProvider) SetModeHandler(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode, err := core.ParseTimeMode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown mode")
		return
	}

	err = h.svc.SetMode(mode)
	if err != nil {
		writeRefusal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"mode": mode, "state": h.svc.View()})
}

// BuyUpgradeHandler handles POST /upgrades/{id}/purchase
func (h *HandlerProvider) BuyUpgradeHandler(w http.ResponseWriter, r *http.Request) {
	h.purchase(w, chi.URLParam(r, "id"), h.svc.BuyUpgrade)
}

// BuyBusinessHandler handles POST /businesses/{id}/purchase
func (h *HandlerProvider) BuyBusinessHandler(w http.ResponseWriter, r *http.Request) {
	h.purchase(w, chi.URLParam(r, "id"), h.svc.BuyBusiness)
}

func (h *HandlerProvider) purchase(w http.ResponseWriter, id string, buy func(string) (core.Purchase, error)) {
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	p, err := buy(id)
	if err != nil {
		writeRefusal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"purchase": p, "state": h.svc.View()})
}

// TapHandler handles POST /tap
func (h *HandlerProvider) TapHandler(w http.ResponseWriter, r *http.Request) {
	burst, err := h.svc.Tap()
	if err != nil {
		writeRefusal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"amount": burst, "state": h.svc.View()})
}

// PrestigeHandler handles POST /prestige
func (h *HandlerProvider) PrestigeHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Prestige(r.Context())
	if err != nil {
		writeRefusal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"prestige": res, "state": h.svc.View()})
}

// SpectrumHandler handles POST /rhythm/spectrum
func (h *HandlerProvider) SpectrumHandler(w http.ResponseWriter, r *http.Request) {
	var req spectrumRequest
	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bins, err := stream.ToBins(req.Bins)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	beat, mult := h.svc.ObserveSpectrum(bins)

	writeJSON(w, http.StatusOK, map[string]any{"beat": beat, "rhythmMultiplier": mult})
}

// ResetRhythmHandler handles POST /rhythm/reset
func (h *HandlerProvider) ResetRhythmHandler(w http.ResponseWriter, r *http.Request) {
	h.svc.ResetRhythm()

	writeJSON(w, http.StatusOK, map[string]any{"state": h.svc.View()})
}

// SaveHistoryHandler handles GET /saves/history
func (h *HandlerProvider) SaveHistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseHistoryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.svc.SaveHistory(r.Context(), limit)
	if err != nil {
		slog.Error("list save history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"saves": entries})
}
