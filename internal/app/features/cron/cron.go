// internal/app/features/cron/cron.go
package cron

import (
	"context"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/labcarbon/internal/app/features/errors"
	"github.com/dalemusser/labcarbon/internal/app/system/auth"
	"github.com/dalemusser/labcarbon/internal/app/system/jsonutil"
	"github.com/dalemusser/labcarbon/internal/app/system/recorder"
	"github.com/dalemusser/labcarbon/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Recorder records today's emissions rows.
type Recorder interface {
	Run(ctx context.Context, now time.Time) (recorder.Report, error)
}

// Handler exposes scheduled jobs to an external scheduler.
type Handler struct {
	rec    Recorder
	now    func() time.Time
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new cron Handler. rec is nil when no relational
// backend is configured.
func NewHandler(rec Recorder, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{rec: rec, now: time.Now, errLog: errLog, logger: logger}
}

// Routes returns a router meant to be mounted at /api/cron. Requests must
// carry the cron secret when one is configured.
func Routes(h *Handler, secret string, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.CronSecret(secret, logger))
	r.Post("/record-emissions", h.RecordEmissions)
	r.Get("/record-emissions", h.RecordEmissions)
	return r
}

// RecordEmissions handles /api/cron/record-emissions.
//
// Response (200 OK):
//
//	{"success": true, "message": "Recorded daily emissions for 4 equipment items", "recorded": 4}
func (h *Handler) RecordEmissions(w http.ResponseWriter, r *http.Request) {
	if h.rec == nil {
		h.logger.Error("record-emissions called without a relational backend")
		jsonutil.InternalError(w, "Server configuration error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	report, err := h.rec.Run(ctx, h.now())
	if err != nil {
		h.errLog.Log(r, "record emissions failed", err)
		jsonutil.JSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to record emissions",
		})
		return
	}
	jsonutil.OK(w, report)
}
