// Package timeouts centralises the deadlines applied to store and upstream
// calls made while serving a request.
//
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: listings, merges, uploads
//   - Long: multi-document workflows (approve) and AI/upstream calls
//   - Batch: bulk imports
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config holds timeout values. Zero values leave the current value as is.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Defaults are used until Configure is called.
var Defaults = Config{
	Ping:   2 * time.Second,
	Short:  5 * time.Second,
	Medium: 10 * time.Second,
	Long:   30 * time.Second,
	Batch:  60 * time.Second,
}

var (
	mu  sync.RWMutex
	cur = Defaults
)

func get(f func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return f(cur)
}

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }
func Batch() time.Duration  { return get(func(c Config) time.Duration { return c.Batch }) }

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the non-zero values of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	set(&cur.Ping, cfg.Ping)
	set(&cur.Short, cfg.Short)
	set(&cur.Medium, cfg.Medium)
	set(&cur.Long, cfg.Long)
	set(&cur.Batch, cfg.Batch)
}

// Reset restores Defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = Defaults
}

// FromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM, TIMEOUT_LONG and
// TIMEOUT_BATCH (Go duration strings). Unset or invalid values are zero.
func FromEnv() Config {
	parse := func(key string) time.Duration {
		d, err := time.ParseDuration(os.Getenv(key))
		if err != nil || d <= 0 {
			return 0
		}
		return d
	}
	return Config{
		Ping:   parse("TIMEOUT_PING"),
		Short:  parse("TIMEOUT_SHORT"),
		Medium: parse("TIMEOUT_MEDIUM"),
		Long:   parse("TIMEOUT_LONG"),
		Batch:  parse("TIMEOUT_BATCH"),
	}
}

// WithTimeout is context.WithTimeout whose cancel logs a warning when the
// deadline was hit, naming the operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
