// Package timeouts holds the process-wide deadlines used for storage,
// backend and HTTP handler work.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

// Config holds one value per timeout class. Zero fields are ignored by
// Configure.
type Config struct {
	Ping   time.Duration // health probes
	Short  time.Duration // single-document reads and writes
	Medium time.Duration // handler work, one sync cycle
	Long   time.Duration // aggregate queries, exports
	Batch  time.Duration // daily emissions recording
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	}
}

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(current)
}

// Ping returns the health-check timeout.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the timeout for simple operations.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium returns the timeout for handler work.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long returns the timeout for heavier queries.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// Batch returns the timeout for bulk jobs.
func Batch() time.Duration { return get(func(c Config) time.Duration { return c.Batch }) }

// fields pairs each environment variable with its slot in c.
func fields(c *Config) map[string]*time.Duration {
	return map[string]*time.Duration{
		"LABCARBON_TIMEOUT_PING":   &c.Ping,
		"LABCARBON_TIMEOUT_SHORT":  &c.Short,
		"LABCARBON_TIMEOUT_MEDIUM": &c.Medium,
		"LABCARBON_TIMEOUT_LONG":   &c.Long,
		"LABCARBON_TIMEOUT_BATCH":  &c.Batch,
	}
}

// Configure overrides the positive fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	src := fields(&cfg)
	for name, dst := range fields(&current) {
		if v := *src[name]; v > 0 {
			*dst = v
		}
	}
}

// ConfigureFromEnv reads LABCARBON_TIMEOUT_* durations and reports how many
// were applied. Unparseable or non-positive values are skipped.
func ConfigureFromEnv() int {
	var cfg Config
	applied := 0
	for name, dst := range fields(&cfg) {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			applied++
		}
	}
	Configure(cfg)
	return applied
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout derives a context with timeout whose cancel func logs when the
// deadline was hit.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
