// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework settings (ports, TLS, logging, CORS); everything about the
// dashboard, its backends and its background jobs lives here.
type AppConfig struct {
	// MongoDB connection configuration (snapshot cache, sync history, stats)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Relational backend. An empty driver runs the dashboard on mock data only.
	BackendDriver string // "", "sqlite" or "postgres"
	BackendDSN    string // file path for sqlite, connection string for postgres

	// Redis aggregate cache (optional)
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	AggregateCacheTTL time.Duration

	// Document store (optional). BinID selects JSONBin, otherwise URL is a proxy.
	DocstoreURL       string
	DocstoreBinID     string
	DocstoreMasterKey string

	// Kafka events (optional)
	KafkaBrokers []string
	KafkaTopic   string

	// InfluxDB rollup sink (optional)
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	// API protection
	APIKey      string   // Bearer key for write endpoints; empty leaves them open
	CronSecret  string   // Bearer secret for /api/cron; empty leaves it open
	CORSOrigins []string // allowed origins for /api; empty allows any

	// Initial dashboard scope
	DemoMode       bool
	OrganizationID string

	// Sync and history
	AutoSync     bool
	SyncInterval time.Duration
	HistoryDays  int
	DailyRange   int
	WeeklyRange  int
	MonthlyRange int

	// Background jobs
	RecordInterval    time.Duration
	ExportEnabled     bool
	ExportInterval    time.Duration
	SnapshotRetention time.Duration
	SyncRunRetention  time.Duration

	// File storage for snapshot exports
	StorageType      string // "local" or "s3"
	StorageLocalPath string
	StorageLocalURL  string

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageCFURL       string
	StorageCFKeyPairID string
	StorageCFKeyPath   string
}
