// internal/app/system/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	statestore "github.com/dalemusser/labcarbon/internal/app/store/state"
	statsstore "github.com/dalemusser/labcarbon/internal/app/store/stats"
	syncrunstore "github.com/dalemusser/labcarbon/internal/app/store/syncruns"
	"github.com/dalemusser/labcarbon/internal/app/system/datasource"
	"github.com/dalemusser/labcarbon/internal/app/system/events"
	"github.com/dalemusser/labcarbon/internal/app/system/influxsink"
	"github.com/dalemusser/labcarbon/internal/app/system/metrics"
	"github.com/dalemusser/labcarbon/internal/app/system/timeouts"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrSyncInProgress is returned when a sync is requested while another
	// is still running.
	ErrSyncInProgress = errors.New("sync already in progress")
)

// ValidationError lists the fields that made a mutation unacceptable.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Scope is who the dashboard is being shown for.
type Scope struct {
	OrganizationID string `json:"organizationId"`
	DemoMode       bool   `json:"demoMode"`
	AuthLoading    bool   `json:"authLoading"`
}

// sameData reports whether s and t select the same data: the same
// organization from the same source.
func (s Scope) sameData(t Scope) bool {
	return s.OrganizationID == t.OrganizationID && s.DemoMode == t.DemoMode
}

// RunRecorder keeps sync history.
type RunRecorder interface {
	Start(ctx context.Context, run models.SyncRun) (models.SyncRun, error)
	Finish(ctx context.Context, id primitive.ObjectID, f syncrunstore.FinishFields) error
}

// StatsRecorder keeps daily sync counters.
type StatsRecorder interface {
	Record(ctx context.Context, date time.Time, statType, counter string, gauges map[string]float64) error
}

// Config wires an Orchestrator. Mock and Store are required; everything
// else is optional. Backend is nil when no relational backend is configured.
type Config struct {
	Mock    datasource.DataSource
	Backend datasource.DataSource
	Store   *statestore.Store
	Runs    RunRecorder
	Stats   StatsRecorder
	Events  events.Publisher
	Sink    influxsink.Sink
	Metrics *metrics.Metrics
	Now     func() time.Time
	Logger  *zap.Logger
}

// Orchestrator moves data from the selected source into the store and
// routes equipment mutations through the source before the store.
type Orchestrator struct {
	mock    datasource.DataSource
	backend datasource.DataSource
	store   *statestore.Store
	runs    RunRecorder
	stats   StatsRecorder
	events  events.Publisher
	sink    influxsink.Sink
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *zap.Logger

	mu    sync.RWMutex
	scope Scope

	inFlight atomic.Bool
	syncing  atomic.Bool
	// resync is set when the scope changes under a running sync. The
	// running sync follows up for the new scope before releasing inFlight.
	resync atomic.Bool
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		mock:    cfg.Mock,
		backend: cfg.Backend,
		store:   cfg.Store,
		runs:    cfg.Runs,
		stats:   cfg.Stats,
		events:  cfg.Events,
		sink:    cfg.Sink,
		metrics: cfg.Metrics,
		now:     cfg.Now,
		logger:  cfg.Logger,
	}
	if o.events == nil {
		o.events = events.Nop{}
	}
	if o.sink == nil {
		o.sink = influxsink.Nop{}
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Store returns the store the orchestrator writes to.
func (o *Orchestrator) Store() *statestore.Store { return o.store }

// BackendConfigured reports whether a relational backend is wired.
func (o *Orchestrator) BackendConfigured() bool { return o.backend != nil }

// Scope returns the current scope.
func (o *Orchestrator) Scope() Scope {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scope
}

// SetScope replaces the scope and forwards the organization id to the
// store, which resets itself when the id changes.
func (o *Orchestrator) SetScope(s Scope) {
	o.mu.Lock()
	prev := o.scope
	o.scope = s
	o.mu.Unlock()
	if !prev.sameData(s) && o.inFlight.Load() {
		o.resync.Store(true)
	}
	o.store.SetOrganizationID(s.OrganizationID)
}

// Syncing reports whether a manual sync is running.
func (o *Orchestrator) Syncing() bool { return o.syncing.Load() }

// InFlight reports whether any sync is running.
func (o *Orchestrator) InFlight() bool { return o.inFlight.Load() }

// Start performs the initial sync unless authentication is still loading.
func (o *Orchestrator) Start(ctx context.Context) error {
	if o.Scope().AuthLoading {
		o.logger.Info("initial sync deferred; authentication loading")
		return nil
	}
	return o.run(ctx, models.TriggerStartup)
}

// Sync runs a manual sync. Syncing reports true while it runs.
func (o *Orchestrator) Sync(ctx context.Context) error {
	o.syncing.Store(true)
	defer o.syncing.Store(false)
	return o.run(ctx, models.TriggerManual)
}

// SyncPeriodic is the task runner's entry point. An overlapping cycle is
// skipped rather than reported.
func (o *Orchestrator) SyncPeriodic(ctx context.Context) error {
	err := o.run(ctx, models.TriggerInterval)
	if errors.Is(err, ErrSyncInProgress) {
		o.logger.Debug("periodic sync skipped; another sync is running")
		return nil
	}
	return err
}

// source picks the data source for scope. skip is true when a backend is
// configured but no organization has been selected yet.
func (o *Orchestrator) source(scope Scope) (src datasource.DataSource, skip bool) {
	if o.backend != nil && !scope.DemoMode {
		if scope.OrganizationID == "" {
			return nil, true
		}
		return o.backend, false
	}
	return o.mock, false
}

func (o *Orchestrator) run(ctx context.Context, trigger string) error {
	if o.Scope().AuthLoading {
		return nil
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	err := o.runOnce(ctx, trigger)
	o.release(ctx)
	return err
}

// release clears inFlight, first running one follow-up sync for every scope
// change that landed while a sync held the guard. A change that races the
// release is caught by the re-check after inFlight is cleared.
func (o *Orchestrator) release(ctx context.Context) {
	for {
		for o.resync.Swap(false) {
			o.followUp(ctx)
		}
		o.inFlight.Store(false)
		if !o.resync.Load() || !o.inFlight.CompareAndSwap(false, true) {
			return
		}
	}
}

// followUp syncs the current scope. It outlives a cancelled parent so a
// request that ended early still leaves the new scope populated.
func (o *Orchestrator) followUp(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), timeouts.Long())
	defer cancel()
	scope := o.Scope()
	if scope.AuthLoading {
		return
	}
	o.logger.Info("scope changed during sync; syncing current scope",
		zap.String("organization_id", scope.OrganizationID),
		zap.Bool("demo_mode", scope.DemoMode))
	// Failures are already logged and written to the store's error field.
	_ = o.runOnce(ctx, models.TriggerScopeChange)
}

// runOnce performs one sync. The caller holds inFlight.
func (o *Orchestrator) runOnce(ctx context.Context, trigger string) error {
	scope := o.Scope()
	if scope.AuthLoading {
		return nil
	}

	o.store.SetLoading(true)
	o.store.SetError("")
	defer o.store.SetLoading(false)

	src, skip := o.source(scope)
	if skip {
		o.logger.Debug("sync skipped; no organization selected", zap.String("trigger", trigger))
		o.metrics.ObserveSync(models.ModeNone, models.SyncOutcomeSkipped, 0)
		return nil
	}

	start := o.now()
	mode := src.Mode()
	run := o.startRun(ctx, trigger, mode, scope.OrganizationID, start)

	res, err := src.Fetch(ctx, scope.OrganizationID, start)

	// The scope may have moved on while the fetch ran; its results, and
	// its failure, no longer belong in the store.
	if current := o.Scope(); !current.sameData(scope) {
		o.logger.Info("discarding sync results for a previous scope",
			zap.String("fetched_for", scope.OrganizationID),
			zap.Bool("fetched_demo_mode", scope.DemoMode),
			zap.String("current", current.OrganizationID),
			zap.Bool("current_demo_mode", current.DemoMode))
		o.resync.Store(true)
		o.finish(ctx, run, scope, start, mode, res, err)
		return nil
	}

	if err != nil {
		o.store.SetError(err.Error())
		o.finish(ctx, run, scope, start, mode, res, err)
		return fmt.Errorf("sync %s: %w", mode, err)
	}

	o.apply(res, start)
	o.finish(ctx, run, scope, start, mode, res, nil)
	return nil
}

func (o *Orchestrator) apply(res datasource.Result, now time.Time) {
	switch res.Mode {
	case models.ModeMock:
		if len(res.Snapshots) == 0 {
			return
		}
		o.store.SetSnapshots(res.Snapshots)
		o.store.SetHistoricalData(res.History)
		o.store.SetRawExperiments(res.Experiments)
	default:
		o.store.SetEquipment(res.Equipment)
		o.store.SetHistoricalData(res.History)
	}
	o.store.SetLastSyncTime(now)
}

func (o *Orchestrator) startRun(ctx context.Context, trigger, mode, orgID string, start time.Time) models.SyncRun {
	run := models.SyncRun{
		RunID:          uuid.NewString(),
		Trigger:        trigger,
		Mode:           mode,
		OrganizationID: orgID,
		StartedAt:      start.UTC(),
	}
	if o.runs == nil {
		return run
	}
	stored, err := o.runs.Start(ctx, run)
	if err != nil {
		o.logger.Warn("failed to record sync start", zap.String("run_id", run.RunID), zap.Error(err))
		return run
	}
	return stored
}

// finish records the outcome everywhere it is tracked. Failures here are
// logged and never change the sync result.
func (o *Orchestrator) finish(ctx context.Context, run models.SyncRun, scope Scope, start time.Time, mode string, res datasource.Result, syncErr error) {
	elapsed := o.now().Sub(start)
	outcome := models.SyncOutcomeSuccess
	errText := ""
	if syncErr != nil {
		outcome = models.SyncOutcomeFailed
		errText = syncErr.Error()
	}

	fields := []zap.Field{
		zap.String("run_id", run.RunID),
		zap.String("trigger", run.Trigger),
		zap.String("mode", mode),
		zap.String("organization_id", scope.OrganizationID),
		zap.Duration("duration", elapsed),
	}
	if syncErr != nil {
		o.logger.Warn("sync failed", append(fields, zap.Error(syncErr))...)
	} else {
		o.logger.Info("sync completed", append(fields,
			zap.Int("equipment", len(res.Equipment)),
			zap.Int("snapshots", len(res.Snapshots)))...)
	}

	if o.runs != nil && !run.ID.IsZero() {
		if err := o.runs.Finish(ctx, run.ID, syncrunstore.FinishFields{
			Outcome:        outcome,
			Error:          errText,
			Mode:           mode,
			EquipmentCount: len(res.Equipment),
			SnapshotCount:  len(res.Snapshots),
		}); err != nil {
			o.logger.Warn("failed to record sync finish", zap.String("run_id", run.RunID), zap.Error(err))
		}
	}

	o.metrics.ObserveSync(mode, outcome, elapsed)

	if o.stats != nil {
		gauges := map[string]float64{
			"equipment": float64(len(res.Equipment)),
			"snapshots": float64(len(res.Snapshots)),
		}
		if n := len(res.History.Daily); n > 0 {
			gauges["latest_daily_emissions"] = res.History.Daily[n-1].Emissions
		}
		if err := o.stats.Record(ctx, start, statsstore.TypeSync, outcome, gauges); err != nil {
			o.logger.Warn("failed to record sync stats", zap.Error(err))
		}
	}

	if syncErr != nil {
		o.events.Publish(ctx, events.Event{
			Type:           events.SyncFailed,
			OrganizationID: scope.OrganizationID,
			Payload:        map[string]any{"run_id": run.RunID, "mode": mode, "error": errText},
		})
		return
	}

	o.metrics.SetEquipment(countByStatus(res.Equipment))
	o.events.Publish(ctx, events.Event{
		Type:           events.SyncCompleted,
		OrganizationID: scope.OrganizationID,
		Payload: map[string]any{
			"run_id":          run.RunID,
			"mode":            mode,
			"equipment_count": len(res.Equipment),
			"snapshot_count":  len(res.Snapshots),
		},
	})

	rollup := influxsink.Rollup{
		OrganizationID: scope.OrganizationID,
		Source:         mode,
		Daily:          res.History.Daily,
		Equipment:      res.Equipment,
		Time:           start,
	}
	if err := o.sink.Write(ctx, rollup); err != nil {
		o.logger.Warn("rollup sink write failed", zap.Error(err))
	} else {
		o.metrics.AddRecords("influx", len(res.History.Daily)+len(res.Equipment))
	}
}

func countByStatus(equipment []models.Equipment) map[string]int {
	out := map[string]int{}
	for _, eq := range equipment {
		out[string(eq.Status)]++
	}
	return out
}
