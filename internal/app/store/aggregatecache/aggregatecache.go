// internal/app/store/aggregatecache/aggregatecache.go
//
// Package aggregatecache keeps each organization's rollups in Redis so the
// backend source can skip the aggregate queries between mutations.
package aggregatecache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dalemusser/labcarbon/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a cached rollup is trusted.
const DefaultTTL = 10 * time.Minute

const keyPrefix = "labcarbon:aggregates:"

// ErrMiss is returned when no entry is cached.
var ErrMiss = errors.New("aggregatecache: miss")

// Cache reads and writes HistoricalData per organization.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New wraps a Redis client. A non-positive ttl uses DefaultTTL.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key returns the Redis key for an organization.
func Key(orgID string) string {
	return keyPrefix + orgID
}

// Get returns the cached rollups or ErrMiss.
func (c *Cache) Get(ctx context.Context, orgID string) (models.HistoricalData, error) {
	raw, err := c.rdb.Get(ctx, Key(orgID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.HistoricalData{}, ErrMiss
	}
	if err != nil {
		return models.HistoricalData{}, err
	}
	var h models.HistoricalData
	if err := json.Unmarshal(raw, &h); err != nil {
		// Treat undecodable entries as absent.
		_ = c.rdb.Del(ctx, Key(orgID)).Err()
		return models.HistoricalData{}, ErrMiss
	}
	return h, nil
}

// Set stores rollups with the cache TTL.
func (c *Cache) Set(ctx context.Context, orgID string, h models.HistoricalData) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(orgID), raw, c.ttl).Err()
}

// Invalidate drops an organization's entry.
func (c *Cache) Invalidate(ctx context.Context, orgID string) error {
	return c.rdb.Del(ctx, Key(orgID)).Err()
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
