// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	relstore "github.com/dalemusser/labcarbon/internal/app/store/relational"
	"github.com/dalemusser/labcarbon/internal/app/system/events"
	"github.com/dalemusser/labcarbon/internal/app/system/indexes"
	"github.com/dalemusser/labcarbon/internal/app/system/influxsink"
	"github.com/dalemusser/labcarbon/internal/app/system/timeouts"
	"github.com/dalemusser/labcarbon/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and every configured optional backend.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. A failure to reach a configured backend aborts startup; backends
// left unconfigured are skipped.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (deps DBDeps, err error) {
	// Release whatever was opened if a later backend fails.
	defer func() {
		if err != nil {
			closeDeps(context.Background(), deps, logger)
			deps = DBDeps{}
		}
	}()

	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return deps, err
	}
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	// Relational backend
	if appCfg.BackendDriver != "" {
		deps.SQL, err = relstore.Open(ctx, appCfg.BackendDriver, appCfg.BackendDSN)
		if err != nil {
			return deps, fmt.Errorf("failed to open %s backend: %w", appCfg.BackendDriver, err)
		}
		logger.Info("connected to relational backend", zap.String("driver", appCfg.BackendDriver))
	} else {
		logger.Info("no relational backend configured; dashboard runs on mock data")
	}

	// Redis aggregate cache
	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		pingCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), logger, "redis ping")
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			rdb.Close()
			return deps, fmt.Errorf("failed to connect to Redis at %s: %w", appCfg.RedisAddr, err)
		}
		deps.Redis = rdb
		logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr), zap.Int("db", appCfg.RedisDB))
	}

	// Kafka events
	if len(appCfg.KafkaBrokers) > 0 {
		deps.Events = events.NewKafka(appCfg.KafkaBrokers, appCfg.KafkaTopic, logger)
		logger.Info("publishing events to Kafka",
			zap.Strings("brokers", appCfg.KafkaBrokers),
			zap.String("topic", appCfg.KafkaTopic))
	} else {
		deps.Events = events.Nop{}
	}

	// InfluxDB sink
	if appCfg.InfluxURL != "" {
		influxCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), logger, "influx health")
		sink, ierr := influxsink.New(influxCtx, influxsink.Config{
			URL:    appCfg.InfluxURL,
			Token:  appCfg.InfluxToken,
			Org:    appCfg.InfluxOrg,
			Bucket: appCfg.InfluxBucket,
		}, logger)
		cancel()
		if ierr != nil {
			return deps, fmt.Errorf("failed to connect to InfluxDB: %w", ierr)
		}
		deps.Influx = sink
	} else {
		deps.Influx = influxsink.Nop{}
	}

	// File storage for snapshot exports
	switch appCfg.StorageType {
	case "s3":
		deps.FileStorage, err = storage.NewS3(ctx, storage.S3Config{
			Region:                   appCfg.StorageS3Region,
			Bucket:                   appCfg.StorageS3Bucket,
			Prefix:                   appCfg.StorageS3Prefix,
			CloudFrontURL:            appCfg.StorageCFURL,
			CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
			CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
		})
		if err != nil {
			return deps, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		logger.Info("initialized S3/CloudFront file storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("prefix", appCfg.StorageS3Prefix),
		)
	case "local", "":
		deps.FileStorage, err = storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return deps, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		logger.Info("initialized local file storage",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL),
		)
	default:
		return deps, fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
	}

	return deps, nil
}

// EnsureSchema creates MongoDB collections, validators and indexes.
//
// The relational schema is migrated by relstore.Open in ConnectDB.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Collections and validators first so indexes land on existing collections.
	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}
