// internal/app/features/syncapi/routes.go
package syncapi

import (
	"github.com/dalemusser/labcarbon/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router meant to be mounted at /api:
//   - POST   /sync            manual sync (API key)
//   - GET    /sync/status
//   - GET    /sync/runs
//   - GET    /sync/stats
//   - PUT    /session         set organization and demo flags (API key)
//   - DELETE /session         clear scope and store (API key)
//   - GET    /state
//   - GET    /state/stream    server-sent events
//   - GET    /experiments
func Routes(h *Handler, apiKey string, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Get("/sync/status", h.Status)
	r.Get("/sync/runs", h.Runs)
	r.Get("/sync/stats", h.Stats)
	r.Get("/state", h.State)
	r.Get("/state/stream", h.Stream)
	r.Get("/experiments", h.Experiments)

	r.Group(func(wr chi.Router) {
		wr.Use(auth.APIKeyAuth(apiKey, logger))
		wr.Post("/sync", h.Sync)
		wr.Put("/session", h.SetSession)
		wr.Delete("/session", h.ClearSession)
	})

	return r
}
