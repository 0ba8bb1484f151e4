// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/labcarbon/internal/app/store/aggregatecache"
	snapshotstore "github.com/dalemusser/labcarbon/internal/app/store/snapshots"
	statestore "github.com/dalemusser/labcarbon/internal/app/store/state"
	statsstore "github.com/dalemusser/labcarbon/internal/app/store/stats"
	syncrunstore "github.com/dalemusser/labcarbon/internal/app/store/syncruns"
	"github.com/dalemusser/labcarbon/internal/app/system/catalog"
	"github.com/dalemusser/labcarbon/internal/app/system/datasource"
	"github.com/dalemusser/labcarbon/internal/app/system/docstore"
	"github.com/dalemusser/labcarbon/internal/app/system/metrics"
	"github.com/dalemusser/labcarbon/internal/app/system/recorder"
	"github.com/dalemusser/labcarbon/internal/app/system/snapexport"
	"github.com/dalemusser/labcarbon/internal/app/system/syncer"
	"github.com/dalemusser/labcarbon/internal/app/system/tasks"
	"github.com/dalemusser/labcarbon/internal/app/system/timeouts"
	"github.com/dalemusser/labcarbon/internal/app/system/timeseries"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// services is what Startup builds and BuildHandler serves.
type services struct {
	catalog  *catalog.Catalog
	metrics  *metrics.Metrics
	orch     *syncer.Orchestrator
	runs     *syncrunstore.Store
	stats    *statsstore.Store
	recorder *recorder.Recorder // nil without a relational backend
}

// svc and taskRunner are set by Startup. BuildHandler reads svc; Shutdown
// stops taskRunner.
var (
	svc        *services
	taskRunner *tasks.Runner
)

// Startup runs once after connections and schema setup are complete, but
// before the HTTP handler is built.
//
// It builds the data sources and the sync orchestrator, applies the
// configured initial scope, performs the initial sync and starts the
// background jobs. A failed initial sync is logged, not fatal: the store
// keeps the error and the next sync retries.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	cat, err := catalog.Load()
	if err != nil {
		logger.Error("failed to load equipment catalog", zap.Error(err))
		return err
	}

	m := metrics.New()
	ranges := timeseries.Ranges{
		Days:   appCfg.DailyRange,
		Weeks:  appCfg.WeeklyRange,
		Months: appCfg.MonthlyRange,
	}

	snapStore := snapshotstore.New(deps.MongoDatabase)
	runStore := syncrunstore.New(deps.MongoDatabase)
	statStore := statsstore.New(deps.MongoDatabase)

	docs := docstore.New(docstore.Config{
		BaseURL:   appCfg.DocstoreURL,
		BinID:     appCfg.DocstoreBinID,
		MasterKey: appCfg.DocstoreMasterKey,
		Timeout:   timeouts.Medium(),
	}, nil, logger)
	if docs.Enabled() {
		logger.Info("document store enabled", zap.Bool("jsonbin", appCfg.DocstoreBinID != ""))
	}

	mock := datasource.NewMock(datasource.MockConfig{
		HistoryDays: appCfg.HistoryDays,
		Ranges:      ranges,
	}, datasource.BaseEquipment(), snapStore, docs, logger)

	cfg := syncer.Config{
		Mock:    mock,
		Store:   statestore.New(),
		Runs:    runStore,
		Stats:   statStore,
		Events:  deps.Events,
		Sink:    deps.Influx,
		Metrics: m,
		Logger:  logger,
	}

	var rec *recorder.Recorder
	if deps.SQL != nil {
		var cache datasource.HistoryCache
		if deps.Redis != nil {
			cache = aggregatecache.New(deps.Redis, appCfg.AggregateCacheTTL)
		}
		cfg.Backend = datasource.NewBackend(deps.SQL, cache, ranges, logger)
		rec = recorder.New(deps.SQL, statStore, deps.Events, m, logger)
	}

	orch := syncer.New(cfg)
	orch.SetScope(syncer.Scope{
		OrganizationID: appCfg.OrganizationID,
		DemoMode:       appCfg.DemoMode,
	})

	svc = &services{
		catalog:  cat,
		metrics:  m,
		orch:     orch,
		runs:     runStore,
		stats:    statStore,
		recorder: rec,
	}

	if err := orch.Start(ctx); err != nil {
		logger.Warn("initial sync failed", zap.Error(err))
	}

	startTaskRunner(appCfg, orch, rec, snapStore, runStore, deps, logger)
	return nil
}

// startTaskRunner registers the background jobs the config enables and
// starts the runner.
func startTaskRunner(appCfg AppConfig, orch *syncer.Orchestrator, rec *recorder.Recorder,
	snapStore *snapshotstore.Store, runStore *syncrunstore.Store, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	if appCfg.AutoSync {
		taskRunner.Register(tasks.SyncJob(orch, appCfg.SyncInterval))
	}
	if rec != nil {
		taskRunner.Register(tasks.RecordEmissionsJob(rec, appCfg.RecordInterval, nil, logger))
	}
	if appCfg.ExportEnabled {
		exp := snapexport.New(deps.FileStorage, orch.Store(), logger)
		taskRunner.Register(tasks.SnapshotExportJob(exp, appCfg.ExportInterval, nil))
	}
	taskRunner.Register(tasks.HistoryPruneJob(
		tasks.PrunerFunc(snapStore.Prune),
		runStore,
		appCfg.SnapshotRetention,
		appCfg.SyncRunRetention,
		logger,
	))

	logger.Info("starting background jobs", zap.Strings("jobs", taskRunner.Names()))
	taskRunner.Start()
}
