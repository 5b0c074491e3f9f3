package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter constructs a chi router with all API endpoints registered. ws
// serves GET /ws and may be nil.
func NewRouter(svc GameService, ws http.Handler) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/state", h.GetStateHandler)
	r.Post("/mode", h.SetModeHandler)
	r.Post("/upgrades/{id}/purchase", h.BuyUpgradeHandler)
	r.Post("/businesses/{id}/purchase", h.BuyBusinessHandler)
	r.Post("/tap", h.TapHandler)
	r.Post("/prestige", h.PrestigeHandler)
	r.Post("/rhythm/spectrum", h.SpectrumHandler)
	r.Post("/rhythm/reset", h.ResetRhythmHandler)
	r.Get("/saves/history", h.SaveHistoryHandler)

	if ws != nil {
		r.Method(http.MethodGet, "/ws", ws)
	}

	return r
}
