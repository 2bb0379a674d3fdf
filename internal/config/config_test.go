package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/funcgroup/internal/config"
	"github.com/turtacn/funcgroup/pkg/errors"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.DefaultMaxDepth, cfg.Matching.MaxDepth)
	assert.Equal(t, config.DefaultMaxAtoms, cfg.Matching.MaxAtoms)
	assert.False(t, cfg.Matching.Exhaustive)
	assert.Equal(t, config.DefaultBatchConcurrency, cfg.Batch.Concurrency)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "ifg:", cfg.Cache.KeyPrefix)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "ifg", cfg.Metrics.Namespace)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
	assert.Empty(t, cfg.Catalog.Path)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Matching.MaxDepth = 16
	cfg.Server.Port = 9090
	cfg.Log.Format = "console"
	config.ApplyDefaults(cfg)
	assert.Equal(t, 16, cfg.Matching.MaxDepth)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, config.DefaultMaxAtoms, cfg.Matching.MaxAtoms)
}

func TestApplyDefaults_Nil(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { config.ApplyDefaults(nil) })
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"zero depth", func(c *config.Config) { c.Matching.MaxDepth = 0 }, "matching.max_depth"},
		{"negative atoms", func(c *config.Config) { c.Matching.MaxAtoms = -1 }, "matching.max_atoms"},
		{"zero concurrency", func(c *config.Config) { c.Batch.Concurrency = 0 }, "batch.concurrency"},
		{"cache without addr", func(c *config.Config) { c.Cache.Enabled = true; c.Cache.Addr = "" }, "cache.addr"},
		{"cache negative db", func(c *config.Config) { c.Cache.Enabled = true; c.Cache.DB = -1 }, "cache.db"},
		{"cache zero ttl", func(c *config.Config) { c.Cache.Enabled = true; c.Cache.TTL = 0 }, "cache.ttl"},
		{"metrics without namespace", func(c *config.Config) { c.Metrics.Namespace = "" }, "metrics.namespace"},
		{"port too high", func(c *config.Config) { c.Server.Port = 65536 }, "server.port"},
		{"port zero", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"zero batch size", func(c *config.Config) { c.Server.MaxBatchSize = 0 }, "server.max_batch_size"},
		{"negative rate limit", func(c *config.Config) { c.Server.RateLimitRPS = -1 }, "server.rate_limit_rps"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_Validate_DisabledCacheIgnoresAddr(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Cache.Addr = ""
	assert.NoError(t, cfg.Validate())
}
