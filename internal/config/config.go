// Package config defines the configuration structures of the functional group
// analyser.  Loading and defaults live in loader.go and defaults.go; this file
// holds only plain data types and validation.
package config

import (
	"time"

	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/funcgroup/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// CatalogConfig selects the functional group template catalog.
type CatalogConfig struct {
	// Path of a "PATTERN NAME" text catalog.  Empty selects the built-in one.
	Path string `mapstructure:"path"`
}

// MatchingConfig tunes the subgraph matching engine.
type MatchingConfig struct {
	MaxDepth   int  `mapstructure:"max_depth"`
	MaxAtoms   int  `mapstructure:"max_atoms"`
	Exhaustive bool `mapstructure:"exhaustive"`
}

// BatchConfig tunes the batch driver.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// CacheConfig holds the Redis result cache parameters.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TTL          time.Duration `mapstructure:"ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MetricsConfig holds Prometheus parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	MaxBatchSize    int           `mapstructure:"max_batch_size"`

	// CORSOrigins lists browser origins allowed to call the API; "*" allows all.
	CORSOrigins []string `mapstructure:"cors_origins"`

	// RateLimitRPS is the per-client sustained request rate; zero disables limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log      logging.LogConfig `mapstructure:"log"`
	Catalog  CatalogConfig     `mapstructure:"catalog"`
	Matching MatchingConfig    `mapstructure:"matching"`
	Batch    BatchConfig       `mapstructure:"batch"`
	Cache    CacheConfig       `mapstructure:"cache"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Server   ServerConfig      `mapstructure:"server"`
}

func invalid(format string, args ...interface{}) error {
	return errors.New(errors.ErrCodeValidation, "invalid configuration").WithDetailf(format, args...)
}

// Validate performs semantic validation of the fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	// Log
	if _, err := logging.ParseLevel(string(c.Log.Level)); err != nil {
		return invalid("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Matching
	if c.Matching.MaxDepth < 1 {
		return invalid("matching.max_depth must be >= 1, got %d", c.Matching.MaxDepth)
	}
	if c.Matching.MaxAtoms < 1 {
		return invalid("matching.max_atoms must be >= 1, got %d", c.Matching.MaxAtoms)
	}

	// Batch
	if c.Batch.Concurrency < 1 {
		return invalid("batch.concurrency must be >= 1, got %d", c.Batch.Concurrency)
	}

	// Cache
	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return invalid("cache.addr is required when the cache is enabled")
		}
		if c.Cache.DB < 0 {
			return invalid("cache.db must be >= 0, got %d", c.Cache.DB)
		}
		if c.Cache.TTL <= 0 {
			return invalid("cache.ttl must be positive, got %s", c.Cache.TTL)
		}
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return invalid("metrics.namespace is required when metrics are enabled")
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.MaxBatchSize < 1 {
		return invalid("server.max_batch_size must be >= 1, got %d", c.Server.MaxBatchSize)
	}
	if c.Server.RateLimitRPS < 0 {
		return invalid("server.rate_limit_rps must be >= 0, got %g", c.Server.RateLimitRPS)
	}
	return nil
}
