package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = logging.LevelInfo
	DefaultLogFormat = "json"

	DefaultMaxDepth = 256
	DefaultMaxAtoms = 512

	DefaultBatchConcurrency = 4

	DefaultCacheAddr      = "localhost:6379"
	DefaultCacheTTL       = 24 * time.Hour
	DefaultCacheKeyPrefix = "ifg:"
	DefaultCachePoolSize  = 10
	DefaultCacheTimeout   = 3 * time.Second

	DefaultMetricsNamespace = "ifg"

	DefaultServerPort      = 8080
	DefaultServerTimeout   = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodySize     = 4 << 20
	DefaultMaxBatchSize    = 1000
	DefaultRateLimitBurst  = 20
)

// Default returns a fully populated configuration, equal to what Load yields
// with no file and no environment overrides.
func Default() *Config {
	cfg := &Config{}
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.  Fields
// already set are left unchanged.  Booleans are never touched.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.OutputPaths == nil {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
	if cfg.Log.ErrorOutputPaths == nil {
		cfg.Log.ErrorOutputPaths = []string{"stderr"}
	}

	// ── Matching ──────────────────────────────────────────────────────────────
	if cfg.Matching.MaxDepth == 0 {
		cfg.Matching.MaxDepth = DefaultMaxDepth
	}
	if cfg.Matching.MaxAtoms == 0 {
		cfg.Matching.MaxAtoms = DefaultMaxAtoms
	}

	// ── Batch ─────────────────────────────────────────────────────────────────
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = DefaultBatchConcurrency
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}
	if cfg.Cache.PoolSize == 0 {
		cfg.Cache.PoolSize = DefaultCachePoolSize
	}
	if cfg.Cache.DialTimeout == 0 {
		cfg.Cache.DialTimeout = DefaultCacheTimeout
	}
	if cfg.Cache.ReadTimeout == 0 {
		cfg.Cache.ReadTimeout = DefaultCacheTimeout
	}
	if cfg.Cache.WriteTimeout == 0 {
		cfg.Cache.WriteTimeout = DefaultCacheTimeout
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.MaxBatchSize == 0 {
		cfg.Server.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Server.RateLimitRPS > 0 && cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = DefaultRateLimitBurst
	}
}

// registerDefaults makes every key known to v, which is what lets
// AutomaticEnv resolve IFG_* variables for keys absent from the file.
func registerDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", string(d.Log.Level))
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output_paths", d.Log.OutputPaths)
	v.SetDefault("log.error_output_paths", d.Log.ErrorOutputPaths)

	v.SetDefault("catalog.path", d.Catalog.Path)

	v.SetDefault("matching.max_depth", d.Matching.MaxDepth)
	v.SetDefault("matching.max_atoms", d.Matching.MaxAtoms)
	v.SetDefault("matching.exhaustive", d.Matching.Exhaustive)

	v.SetDefault("batch.concurrency", d.Batch.Concurrency)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.addr", d.Cache.Addr)
	v.SetDefault("cache.password", d.Cache.Password)
	v.SetDefault("cache.db", d.Cache.DB)
	v.SetDefault("cache.pool_size", d.Cache.PoolSize)
	v.SetDefault("cache.dial_timeout", d.Cache.DialTimeout)
	v.SetDefault("cache.read_timeout", d.Cache.ReadTimeout)
	v.SetDefault("cache.write_timeout", d.Cache.WriteTimeout)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.key_prefix", d.Cache.KeyPrefix)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_size", d.Server.MaxBodySize)
	v.SetDefault("server.max_batch_size", d.Server.MaxBatchSize)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.rate_limit_rps", d.Server.RateLimitRPS)
	v.SetDefault("server.rate_limit_burst", d.Server.RateLimitBurst)
}
