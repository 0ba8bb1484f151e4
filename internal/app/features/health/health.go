// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/labcarbon/internal/app/system/jsonutil"
	"github.com/dalemusser/labcarbon/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

// Service is a named dependency probe. Required services decide readiness;
// optional ones only mark the full check as degraded.
type Service struct {
	Name     string
	Required bool
	Check    Check
}

// MongoCheck pings the primary.
func MongoCheck(client *mongo.Client) Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

// Handler provides health check endpoints.
type Handler struct {
	services []Service
	logger   *zap.Logger
}

// NewHandler creates a new health check Handler. Services with a nil Check
// are ignored.
func NewHandler(logger *zap.Logger, services ...Service) *Handler {
	h := &Handler{logger: logger}
	for _, s := range services {
		if s.Check != nil {
			h.services = append(h.services, s)
		}
	}
	return h
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds /ready, /readyz and /livez on the root router.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// Check pings every service. Any failure makes the status "degraded" and the
// response a 503.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:   "ok",
		Services: make(map[string]string, len(h.services)),
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.logger, "health check")
	defer cancel()

	for _, s := range h.services {
		if err := s.Check(ctx); err != nil {
			resp.Status = "degraded"
			resp.Services[s.Name] = "unavailable"
			h.logger.Warn("health check failed", zap.String("service", s.Name), zap.Error(err))
			continue
		}
		resp.Services[s.Name] = "ok"
	}

	if resp.Status != "ok" {
		jsonutil.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	jsonutil.OK(w, resp)
}

// Ready reports whether every required service answers.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.logger, "health check")
	defer cancel()

	for _, s := range h.services {
		if !s.Required {
			continue
		}
		if err := s.Check(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.String("service", s.Name), zap.Error(err))
			writeRaw(w, http.StatusServiceUnavailable, `{"status":"not ready"}`)
			return
		}
	}
	writeRaw(w, http.StatusOK, `{"status":"ready"}`)
}

// Live checks if the process is alive.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeRaw(w, http.StatusOK, `{"status":"alive"}`)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
