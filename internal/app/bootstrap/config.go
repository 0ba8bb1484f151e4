// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	relstore "github.com/dalemusser/labcarbon/internal/app/store/relational"
	"github.com/dalemusser/labcarbon/internal/app/system/apicors"
	"github.com/dalemusser/labcarbon/internal/app/system/timeouts"
	"github.com/dalemusser/labcarbon/internal/app/system/timeseries"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "LABCARBON"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, backend_driver, etc.
//   - Environment variables: LABCARBON_MONGO_URI, LABCARBON_BACKEND_DRIVER, etc.
//   - Command-line flags: --mongo_uri, --backend_driver, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "labcarbon", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Relational backend
	{Name: "backend_driver", Default: "", Desc: "Relational backend: '', 'sqlite' or 'postgres' (empty runs on mock data)"},
	{Name: "backend_dsn", Default: "./labcarbon.db", Desc: "SQLite file path or PostgreSQL connection string"},

	// Redis aggregate cache
	{Name: "redis_addr", Default: "", Desc: "Redis address for the aggregate cache (empty disables it)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "aggregate_cache_ttl", Default: "5m", Desc: "How long cached rollups stay valid"},

	// Document store
	{Name: "docstore_url", Default: "", Desc: "Document store proxy URL or JSONBin base URL"},
	{Name: "docstore_bin_id", Default: "", Desc: "JSONBin bin id (selects the JSONBin API)"},
	{Name: "docstore_master_key", Default: "", Desc: "JSONBin master key"},

	// Kafka events
	{Name: "kafka_brokers", Default: "", Desc: "Comma-separated Kafka brokers (empty disables events)"},
	{Name: "kafka_topic", Default: "labcarbon.events", Desc: "Kafka topic for dashboard events"},

	// InfluxDB sink
	{Name: "influx_url", Default: "", Desc: "InfluxDB URL (empty disables the rollup sink)"},
	{Name: "influx_token", Default: "", Desc: "InfluxDB token"},
	{Name: "influx_org", Default: "", Desc: "InfluxDB organization"},
	{Name: "influx_bucket", Default: "labcarbon", Desc: "InfluxDB bucket"},

	// API protection
	{Name: "api_key", Default: "", Desc: "Bearer key for write endpoints (leave empty to disable API key auth)"},
	{Name: "cron_secret", Default: "", Desc: "Bearer secret for /api/cron endpoints"},
	{Name: "cors_origins", Default: "", Desc: "Comma-separated origins allowed on /api (empty allows any)"},

	// Initial scope
	{Name: "demo_mode", Default: false, Desc: "Start in demo mode (always use mock data)"},
	{Name: "organization_id", Default: "", Desc: "Organization shown at startup in backend mode"},

	// Sync and history
	{Name: "auto_sync", Default: true, Desc: "Re-sync on an interval"},
	{Name: "sync_interval", Default: "5m", Desc: "Interval between automatic syncs"},
	{Name: "history_days", Default: timeseries.DaysOfHistory, Desc: "Days of generated mock history"},
	{Name: "daily_range", Default: timeseries.DefaultDailyRange, Desc: "Days in the daily rollup"},
	{Name: "weekly_range", Default: timeseries.DefaultWeeklyRange, Desc: "Weeks in the weekly rollup"},
	{Name: "monthly_range", Default: timeseries.DefaultMonthlyRange, Desc: "Months in the monthly rollup"},

	// Background jobs
	{Name: "record_interval", Default: "1h", Desc: "How often the record-emissions job checks for missing days"},
	{Name: "export_enabled", Default: false, Desc: "Export snapshot sequences to file storage"},
	{Name: "export_interval", Default: "24h", Desc: "Interval between snapshot exports"},
	{Name: "snapshot_retention", Default: "168h", Desc: "How long cached snapshot sequences are kept"},
	{Name: "sync_run_retention", Default: "720h", Desc: "How long sync run history is kept"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./exports", Desc: "Local storage path for exports"},
	{Name: "storage_local_url", Default: "/exports", Desc: "URL prefix for local files"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "labcarbon/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, LABCARBON_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("applied timeout overrides", zap.Int("count", n))
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		BackendDriver: strings.ToLower(strings.TrimSpace(appValues.String("backend_driver"))),
		BackendDSN:    appValues.String("backend_dsn"),

		RedisAddr:         appValues.String("redis_addr"),
		RedisPassword:     appValues.String("redis_password"),
		RedisDB:           appValues.Int("redis_db"),
		AggregateCacheTTL: appValues.Duration("aggregate_cache_ttl", 5*time.Minute),

		DocstoreURL:       appValues.String("docstore_url"),
		DocstoreBinID:     appValues.String("docstore_bin_id"),
		DocstoreMasterKey: appValues.String("docstore_master_key"),

		KafkaBrokers: splitList(appValues.String("kafka_brokers")),
		KafkaTopic:   appValues.String("kafka_topic"),

		InfluxURL:    appValues.String("influx_url"),
		InfluxToken:  appValues.String("influx_token"),
		InfluxOrg:    appValues.String("influx_org"),
		InfluxBucket: appValues.String("influx_bucket"),

		APIKey:      appValues.String("api_key"),
		CronSecret:  appValues.String("cron_secret"),
		CORSOrigins: apicors.ParseOrigins(appValues.String("cors_origins")),

		DemoMode:       appValues.Bool("demo_mode"),
		OrganizationID: appValues.String("organization_id"),

		AutoSync:     appValues.Bool("auto_sync"),
		SyncInterval: appValues.Duration("sync_interval", 5*time.Minute),
		HistoryDays:  appValues.Int("history_days"),
		DailyRange:   appValues.Int("daily_range"),
		WeeklyRange:  appValues.Int("weekly_range"),
		MonthlyRange: appValues.Int("monthly_range"),

		RecordInterval:    appValues.Duration("record_interval", time.Hour),
		ExportEnabled:     appValues.Bool("export_enabled"),
		ExportInterval:    appValues.Duration("export_interval", 24*time.Hour),
		SnapshotRetention: appValues.Duration("snapshot_retention", 7*24*time.Hour),
		SyncRunRetention:  appValues.Duration("sync_run_retention", 30*24*time.Hour),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(appCfg, logger)
}

// validateApp checks the settings that do not need WAFFLE's core config.
func validateApp(appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.BackendDriver != "" {
		if !relstore.IsValidDriver(appCfg.BackendDriver) {
			return fmt.Errorf("unknown backend driver %q (want sqlite or postgres)", appCfg.BackendDriver)
		}
		if strings.TrimSpace(appCfg.BackendDSN) == "" {
			return fmt.Errorf("backend_dsn is required when backend_driver is %q", appCfg.BackendDriver)
		}
	}

	if appCfg.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval must be positive, got %s", appCfg.SyncInterval)
	}
	if appCfg.RecordInterval <= 0 {
		return fmt.Errorf("record_interval must be positive, got %s", appCfg.RecordInterval)
	}
	if appCfg.ExportEnabled && appCfg.ExportInterval <= 0 {
		return fmt.Errorf("export_interval must be positive, got %s", appCfg.ExportInterval)
	}

	ranges := map[string]int{
		"history_days":  appCfg.HistoryDays,
		"daily_range":   appCfg.DailyRange,
		"weekly_range":  appCfg.WeeklyRange,
		"monthly_range": appCfg.MonthlyRange,
	}
	for name, v := range ranges {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if appCfg.DailyRange > appCfg.HistoryDays {
		return fmt.Errorf("daily_range (%d) cannot exceed history_days (%d)", appCfg.DailyRange, appCfg.HistoryDays)
	}

	switch appCfg.StorageType {
	case "", "local", "s3":
	default:
		return fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
	}

	if appCfg.InfluxURL != "" && appCfg.InfluxOrg == "" {
		return fmt.Errorf("influx_org is required when influx_url is set")
	}

	if appCfg.APIKey == "" {
		logger.Warn("api_key is empty; equipment and session endpoints accept unauthenticated writes")
	}
	if appCfg.CronSecret == "" {
		logger.Warn("cron_secret is empty; /api/cron accepts unauthenticated requests")
	}
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
