// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires this app into the WAFFLE lifecycle.
// Each function is called in order by app.Run, from configuration
// loading through backend setup, startup work, HTTP handler
// construction, and finally graceful shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "labcarbon",    // used only for logging/diagnostics
	LoadConfig:     LoadConfig,     // load core + app config
	ValidateConfig: ValidateConfig, // validate URIs, drivers, intervals and ranges
	ConnectDB:      ConnectDB,      // connect MongoDB plus optional SQL, Redis, Kafka, InfluxDB
	EnsureSchema:   EnsureSchema,   // create collections, validators and indexes
	Startup:        Startup,        // build sources and orchestrator, start jobs
	BuildHandler:   BuildHandler,   // build the HTTP router + middleware stack
	Shutdown:       Shutdown,       // stop jobs and close backends
}
