// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	analyticsfeature "github.com/dalemusser/labcarbon/internal/app/features/analytics"
	catalogapifeature "github.com/dalemusser/labcarbon/internal/app/features/catalogapi"
	cronfeature "github.com/dalemusser/labcarbon/internal/app/features/cron"
	dashboardfeature "github.com/dalemusser/labcarbon/internal/app/features/dashboard"
	equipmentfeature "github.com/dalemusser/labcarbon/internal/app/features/equipment"
	errorsfeature "github.com/dalemusser/labcarbon/internal/app/features/errors"
	healthfeature "github.com/dalemusser/labcarbon/internal/app/features/health"
	syncapifeature "github.com/dalemusser/labcarbon/internal/app/features/syncapi"
	"github.com/dalemusser/labcarbon/internal/app/system/apicors"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// requestTimeout bounds every /api request except the sync endpoints,
// whose state stream stays open.
const requestTimeout = 30 * time.Second

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// Route layout:
//   - /api/dashboard, /api/equipment, /api/analytics, /api/catalog, /api/cron
//   - /api/sync/*, /api/session, /api/state, /api/state/stream, /api/experiments
//   - /health, /ready, /readyz, /livez
//   - /metrics
//
// Every /api route gets the API CORS policy. Writes require the API key and
// /api/cron requires the cron secret.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("BuildHandler called before Startup")
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()
	store := svc.orch.Store()

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	// Request ids: picked up by the error logger.
	r.Use(chimw.RequestID)

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// ─────────────────────────────────────────────────────────────────────────────
	// API
	// ─────────────────────────────────────────────────────────────────────────────

	dashboardHandler := dashboardfeature.NewHandler(store, nil, logger)
	equipmentHandler := equipmentfeature.NewHandler(svc.orch, store, errLog, logger)
	analyticsHandler := analyticsfeature.NewHandler(store)
	catalogHandler := catalogapifeature.NewHandler(svc.catalog)
	syncHandler := syncapifeature.NewHandler(svc.orch, svc.runs, svc.stats, errLog, logger)

	// A nil *recorder.Recorder must reach the cron handler as a nil interface.
	var cronRecorder cronfeature.Recorder
	if svc.recorder != nil {
		cronRecorder = svc.recorder
	}
	cronHandler := cronfeature.NewHandler(cronRecorder, errLog, logger)

	r.Route("/api", func(api chi.Router) {
		api.Use(apicors.Middleware(appCfg.CORSOrigins...))

		api.Group(func(g chi.Router) {
			g.Use(chimw.Timeout(requestTimeout))
			g.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))
			g.Mount("/equipment", equipmentfeature.Routes(equipmentHandler, appCfg.APIKey, logger))
			g.Mount("/analytics", analyticsfeature.Routes(analyticsHandler))
			g.Mount("/catalog", catalogapifeature.Routes(catalogHandler))
			g.Mount("/cron", cronfeature.Routes(cronHandler, appCfg.CronSecret, logger))
		})

		api.Mount("/", syncapifeature.Routes(syncHandler, appCfg.APIKey, logger))
	})

	// ─────────────────────────────────────────────────────────────────────────────
	// Operations
	// ─────────────────────────────────────────────────────────────────────────────

	healthHandler := healthfeature.NewHandler(logger, healthServices(deps)...)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	r.Handle("/metrics", svc.metrics.Handler())

	return r, nil
}

// healthServices lists the probes for the backends that are connected.
// MongoDB decides readiness; the optional backends only degrade /health.
func healthServices(deps DBDeps) []healthfeature.Service {
	services := []healthfeature.Service{
		{Name: "mongodb", Required: true, Check: healthfeature.MongoCheck(deps.MongoClient)},
	}
	if deps.SQL != nil {
		services = append(services, healthfeature.Service{
			Name:  "sql",
			Check: deps.SQL.PingContext,
		})
	}
	if deps.Redis != nil {
		rdb := deps.Redis
		services = append(services, healthfeature.Service{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		})
	}
	return services
}
