package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestRedisAddr is the Redis address for tests. LABCARBON_TEST_REDIS overrides it.
const TestRedisAddr = "localhost:6379"

var (
	redisOnce   sync.Once
	redisClient *redis.Client
	redisErr    error
)

func getRedis() (*redis.Client, error) {
	redisOnce.Do(func() {
		addr := os.Getenv("LABCARBON_TEST_REDIS")
		if addr == "" {
			addr = TestRedisAddr
		}
		redisClient = redis.NewClient(&redis.Options{Addr: addr, DB: 15})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		redisErr = redisClient.Ping(ctx).Err()
	})
	return redisClient, redisErr
}

// SetupTestRedis returns a client on database 15 of the local Redis.
// Tests are skipped when Redis is not reachable, so keys must be unique
// per test rather than relying on a flushed database.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb, err := getRedis()
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	return rdb
}
