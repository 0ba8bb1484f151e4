// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	relstore "github.com/dalemusser/labcarbon/internal/app/store/relational"
	"github.com/dalemusser/labcarbon/internal/app/system/events"
	"github.com/dalemusser/labcarbon/internal/app/system/influxsink"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// It is created in ConnectDB and passed to EnsureSchema, Startup,
// BuildHandler and Shutdown. Optional backends are nil (or a no-op
// implementation) when they are not configured.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Relational backend; nil runs the dashboard on mock data only
	SQL *relstore.DB

	// Redis for the aggregate cache; nil when redis_addr is empty
	Redis *redis.Client

	// Event publisher; events.Nop when Kafka is not configured
	Events events.Publisher

	// Rollup sink; influxsink.Nop when InfluxDB is not configured
	Influx influxsink.Sink

	// FileStorage receives snapshot exports
	FileStorage storage.Store
}
