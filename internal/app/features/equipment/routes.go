// internal/app/features/equipment/routes.go
package equipment

import (
	"github.com/dalemusser/labcarbon/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns the inventory router. Reads are open; writes require the
// API key.
//
// When mounted at /api/equipment:
//   - GET    /api/equipment       list, search, filter, group
//   - GET    /api/equipment/{id}  one item
//   - POST   /api/equipment       add
//   - PATCH  /api/equipment/{id}  partial update (PUT is accepted too)
//   - DELETE /api/equipment/{id}  remove
func Routes(h *Handler, apiKey string, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(wr chi.Router) {
		wr.Use(auth.APIKeyAuth(apiKey, logger))
		wr.Post("/", h.Create)
		wr.Patch("/{id}", h.Update)
		wr.Put("/{id}", h.Update)
		wr.Delete("/{id}", h.Delete)
	})

	return r
}
