package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/funcgroup/internal/config"
	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/funcgroup/pkg/errors"
)

func TestNewClient_Success(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)

	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 10, client.config.PoolSize)
	assert.NotNil(t, client.PoolStats())
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	t.Parallel()
	cfg := &RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1}

	client, err := NewClient(cfg, logging.NewNopLogger())
	assert.Nil(t, client)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))
	assert.Contains(t, err.Error(), "addr=127.0.0.1:1")
}

func TestNewClient_MissingAddr(t *testing.T) {
	t.Parallel()
	_, err := NewClient(&RedisConfig{}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))

	_, err = NewClient(nil, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func TestFromCacheConfig(t *testing.T) {
	t.Parallel()
	cfg := FromCacheConfig(config.CacheConfig{
		Addr:        "cache:6379",
		Password:    "secret",
		DB:          2,
		PoolSize:    7,
		DialTimeout: time.Second,
		ReadTimeout: 2 * time.Second,
	})
	assert.Equal(t, "cache:6379", cfg.Addr)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, 7, cfg.PoolSize)
	assert.Equal(t, time.Second, cfg.DialTimeout)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
}

func TestClient_Operations(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "foo", "bar", time.Minute).Err())
	val, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, "bar", val)

	vals, err := client.MGet(ctx, "foo", "missing").Result()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"bar", nil}, vals)

	ttl, err := client.TTL(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	keys, _, err := client.Scan(ctx, 0, "f*", 10).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, keys)

	n, err := client.Exists(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = client.Del(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_Close(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())

	ctx := context.Background()
	assert.Equal(t, ErrClientClosed, client.Get(ctx, "foo").Err())
	assert.Equal(t, ErrClientClosed, client.Set(ctx, "foo", "bar", 0).Err())
	assert.Equal(t, ErrClientClosed, client.MGet(ctx, "foo").Err())
	assert.Equal(t, ErrClientClosed, client.Del(ctx, "foo").Err())
	assert.Equal(t, ErrClientClosed, client.Scan(ctx, 0, "*", 10).Err())
	assert.Equal(t, ErrClientClosed, client.Ping(ctx))
}
