package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/funcgroup/pkg/errors"
)

const validConfigYAML = `
log:
  level: debug
  format: console
catalog:
  path: /etc/ifg/catalog.txt
matching:
  max_depth: 64
  exhaustive: true
batch:
  concurrency: 8
cache:
  enabled: true
  addr: "redis:6379"
  ttl: 1h
server:
  port: 9000
  read_timeout: 5s
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", string(cfg.Log.Level))
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/etc/ifg/catalog.txt", cfg.Catalog.Path)
	assert.Equal(t, 64, cfg.Matching.MaxDepth)
	assert.Equal(t, DefaultMaxAtoms, cfg.Matching.MaxAtoms)
	assert.True(t, cfg.Matching.Exhaustive)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis:6379", cfg.Cache.Addr)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultServerTimeout, cfg.Server.WriteTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("IFG_MATCHING_MAX_DEPTH", "32")
	t.Setenv("IFG_BATCH_CONCURRENCY", "2")
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Matching.MaxDepth)
	assert.Equal(t, 2, cfg.Batch.Concurrency)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IFG_CACHE_ENABLED", "true")
	t.Setenv("IFG_CACHE_ADDR", "cache:6380")
	t.Setenv("IFG_METRICS_ENABLED", "false")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "cache:6380", cfg.Cache.Addr)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMaxDepth, cfg.Matching.MaxDepth)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
		assert.Contains(t, err.Error(), "absent.yaml")
	})
	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(createTempConfigFile(t, "matching: [\n"))
		require.Error(t, err)
	})
	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(createTempConfigFile(t, "batch:\n  concurrency: -3\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch.concurrency")
	})
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yaml")) })
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	var depth atomic.Int64
	require.NoError(t, Watch(path, func(c *Config) {
		depth.Store(int64(c.Matching.MaxDepth))
	}, nil))

	updated := "matching:\n  max_depth: 99\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	assert.Eventually(t, func() bool { return depth.Load() == 99 }, 5*time.Second, 50*time.Millisecond)
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {}, nil)
	require.Error(t, err)
}
