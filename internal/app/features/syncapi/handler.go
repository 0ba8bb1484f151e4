// internal/app/features/syncapi/handler.go
package syncapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	errorsfeature "github.com/dalemusser/labcarbon/internal/app/features/errors"
	statestore "github.com/dalemusser/labcarbon/internal/app/store/state"
	statsstore "github.com/dalemusser/labcarbon/internal/app/store/stats"
	"github.com/dalemusser/labcarbon/internal/app/system/jsonutil"
	"github.com/dalemusser/labcarbon/internal/app/system/syncer"
	"github.com/dalemusser/labcarbon/internal/app/system/timeouts"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"go.uber.org/zap"
)

// Orchestrator is the part of the sync orchestrator this API drives.
type Orchestrator interface {
	Start(ctx context.Context) error
	Sync(ctx context.Context) error
	Scope() syncer.Scope
	SetScope(s syncer.Scope)
	Syncing() bool
	InFlight() bool
	BackendConfigured() bool
	Store() *statestore.Store
}

// RunLister reads sync history.
type RunLister interface {
	Recent(ctx context.Context, limit int64) ([]models.SyncRun, error)
}

// StatsReader reads daily sync counters.
type StatsReader interface {
	GetRange(ctx context.Context, startDate, endDate time.Time, statType string) ([]statsstore.DailyStats, error)
}

// Handler serves sync control, session scope, state and the live stream.
type Handler struct {
	orch      Orchestrator
	runs      RunLister
	stats     StatsReader
	keepAlive time.Duration
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
}

// NewHandler creates a new sync API Handler. runs and stats may be nil when
// MongoDB history is not wired.
func NewHandler(orch Orchestrator, runs RunLister, stats StatsReader, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		orch:      orch,
		runs:      runs,
		stats:     stats,
		keepAlive: 25 * time.Second,
		errLog:    errLog,
		logger:    logger,
	}
}

// StatusResponse describes the orchestrator and store flags.
type StatusResponse struct {
	Syncing           bool         `json:"syncing"`
	InFlight          bool         `json:"inFlight"`
	IsLoading         bool         `json:"isLoading"`
	Error             *string      `json:"error"`
	LastSyncTime      *time.Time   `json:"lastSyncTime"`
	BackendConfigured bool         `json:"backendConfigured"`
	Scope             syncer.Scope `json:"scope"`
}

func (h *Handler) status() StatusResponse {
	st := h.orch.Store().State()
	return StatusResponse{
		Syncing:           h.orch.Syncing(),
		InFlight:          h.orch.InFlight(),
		IsLoading:         st.IsLoading,
		Error:             st.Error,
		LastSyncTime:      st.LastSyncTime,
		BackendConfigured: h.orch.BackendConfigured(),
		Scope:             h.orch.Scope(),
	}
}

// Status handles GET /api/sync/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, h.status())
}

// Sync handles POST /api/sync. The sync runs to completion before the
// response is written.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err := h.orch.Sync(ctx)
	switch {
	case errors.Is(err, syncer.ErrSyncInProgress):
		jsonutil.Conflict(w, "sync already in progress")
	case err != nil:
		h.errLog.Log(r, "manual sync failed", err)
		jsonutil.BadGateway(w, "sync failed")
	default:
		jsonutil.OK(w, h.status())
	}
}

// Runs handles GET /api/sync/runs?limit=N.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	limit := int64(20)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 || n > 200 {
			jsonutil.ValidationError(w, map[string]string{"limit": "must be between 1 and 200"})
			return
		}
		limit = n
	}
	if h.runs == nil {
		jsonutil.OK(w, map[string]any{"runs": []models.SyncRun{}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	runs, err := h.runs.Recent(ctx, limit)
	if err != nil {
		h.errLog.Log(r, "failed to list sync runs", err)
		jsonutil.InternalError(w, "failed to list sync runs")
		return
	}
	jsonutil.OK(w, map[string]any{"runs": runs})
}

// DayStats is one day of sync counters.
type DayStats struct {
	Date     string             `json:"date"`
	Counters map[string]int64   `json:"counters"`
	Gauges   map[string]float64 `json:"gauges"`
}

// Stats handles GET /api/sync/stats?days=N: per-day sync outcome counts
// for the trailing N days (default 7).
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 366 {
			jsonutil.ValidationError(w, map[string]string{"days": "must be between 1 and 366"})
			return
		}
		days = n
	}
	out := []DayStats{}
	if h.stats == nil {
		jsonutil.OK(w, map[string]any{"days": out})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	end := time.Now().UTC()
	rows, err := h.stats.GetRange(ctx, end.AddDate(0, 0, -(days-1)), end, statsstore.TypeSync)
	if err != nil {
		h.errLog.Log(r, "failed to read sync stats", err)
		jsonutil.InternalError(w, "failed to read sync stats")
		return
	}
	for _, row := range rows {
		out = append(out, DayStats{
			Date:     row.Date.Format("2006-01-02"),
			Counters: row.Counters,
			Gauges:   row.Gauges,
		})
	}
	jsonutil.OK(w, map[string]any{"days": out})
}

// SetSession handles PUT /api/session. Changing the organization resets the
// store; the new scope is synced before the response is written.
func (h *Handler) SetSession(w http.ResponseWriter, r *http.Request) {
	var in syncer.Scope
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	h.orch.SetScope(in)
	h.logger.Info("session scope changed",
		zap.String("organization_id", in.OrganizationID),
		zap.Bool("demo_mode", in.DemoMode),
		zap.Bool("auth_loading", in.AuthLoading))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	// A failed sync is already recorded in the store's error field, which
	// the status below carries. A sync already in flight follows up for the
	// new scope itself before it finishes.
	if err := h.orch.Start(ctx); err != nil && !errors.Is(err, syncer.ErrSyncInProgress) {
		h.logger.Warn("sync after scope change failed", zap.Error(err))
	}
	jsonutil.OK(w, h.status())
}

// ClearSession handles DELETE /api/session: the scope is dropped and the
// store reset.
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	h.orch.SetScope(syncer.Scope{})
	h.orch.Store().Clear()
	jsonutil.NoContent(w)
}

// State handles GET /api/state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, h.orch.Store().State())
}

// Experiments handles GET /api/experiments with the document-store proxy
// shape {success, data}.
func (h *Handler) Experiments(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]any{
		"success": true,
		"data":    h.orch.Store().RawExperiments(),
	})
}
