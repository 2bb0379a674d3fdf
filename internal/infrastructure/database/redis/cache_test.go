package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/funcgroup/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
	log    logging.Logger
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.log = logging.NewNopLogger()
	s.client = newClient(db, &RedisConfig{}, s.log)
	s.cache = NewRedisCache(s.client, s.log, WithPrefix("test:"))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type testStruct struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := testStruct{Name: "acetone", Age: 3}
	bytes, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(bytes))

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	s.Require().NoError(err)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	s.Equal(ErrCacheMiss, err)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeNotFound))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:key1").SetErr(stderrors.New("connection reset"))

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	s.Require().Error(err)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	s.Contains(err.Error(), "key=key1")
}

func (s *CacheTestSuite) TestGet_Undecodable() {
	s.mock.ExpectGet("test:key1").SetVal("{not json")

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "k1", "k2"))
}

func (s *CacheTestSuite) TestDelete_NoKeys() {
	s.NoError(s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:k1").SetVal(1)

	exists, err := s.cache.Exists(context.Background(), "k1")
	s.NoError(err)
	s.True(exists)
}

func (s *CacheTestSuite) TestMGet_OmitsMissingKeys() {
	s.mock.ExpectMGet("test:a", "test:b", "test:c").SetVal([]interface{}{"1", nil, "3"})

	got, err := s.cache.MGet(context.Background(), []string{"a", "b", "c"})
	s.Require().NoError(err)
	s.Equal(map[string][]byte{"a": []byte("1"), "c": []byte("3")}, got)
}

func (s *CacheTestSuite) TestMGet_Empty() {
	got, err := s.cache.MGet(context.Background(), nil)
	s.NoError(err)
	s.Empty(got)
}

func (s *CacheTestSuite) TestDeleteByPrefix_Paginates() {
	s.mock.ExpectScan(0, "test:ns:*", 100).SetVal([]string{"test:ns:a", "test:ns:b"}, 7)
	s.mock.ExpectDel("test:ns:a", "test:ns:b").SetVal(2)
	s.mock.ExpectScan(7, "test:ns:*", 100).SetVal([]string{"test:ns:c"}, 0)
	s.mock.ExpectDel("test:ns:c").SetVal(1)

	n, err := s.cache.DeleteByPrefix(context.Background(), "ns:")
	s.NoError(err)
	s.Equal(int64(3), n)
}

func (s *CacheTestSuite) TestGetOrSet_Hit() {
	val := testStruct{Name: "ethanol", Age: 2}
	bytes, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(bytes))

	var loads int
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return &val, nil
	}

	var dest testStruct
	hit, err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, loader)

	s.NoError(err)
	s.True(hit)
	s.Zero(loads)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_BackendErrorSkipsLoader() {
	s.mock.ExpectGet("test:key1").SetErr(stderrors.New("timeout"))

	var loads int
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return &testStruct{}, nil
	}

	var dest testStruct
	hit, err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, loader)

	s.False(hit)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	s.Zero(loads)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

// Set and GetOrSet write with a jittered TTL, which redismock cannot
// expect exactly; these run against miniredis instead.

func newMiniCache(t *testing.T, opts ...CacheOption) (*miniredis.Miniredis, Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCache(client, logging.NewNopLogger(), opts...)
}

func TestRedisCache_SetAppliesJitteredTTL(t *testing.T) {
	t.Parallel()
	mr, cache := newMiniCache(t, WithPrefix("p:"), WithDefaultTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", testStruct{Name: "x"}, 0))

	ttl := mr.TTL("p:k")
	assert.GreaterOrEqual(t, ttl, 54*time.Minute)
	assert.LessOrEqual(t, ttl, 66*time.Minute)

	var got testStruct
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, "x", got.Name)
}

func TestRedisCache_GetOrSet_MissThenHit(t *testing.T) {
	t.Parallel()
	_, cache := newMiniCache(t)
	ctx := context.Background()

	var loads int
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return &testStruct{Name: "phenol", Age: 7}, nil
	}

	var first testStruct
	hit, err := cache.GetOrSet(ctx, "k", &first, time.Minute, loader)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "phenol", first.Name)

	var second testStruct
	hit, err = cache.GetOrSet(ctx, "k", &second, time.Minute, loader)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestRedisCache_GetOrSet_LoaderErrorNotCached(t *testing.T) {
	t.Parallel()
	mr, cache := newMiniCache(t)
	ctx := context.Background()
	boom := pkgerrors.New(pkgerrors.ErrCodeSMILESSyntax, "bad smiles")

	var dest testStruct
	_, err := cache.GetOrSet(ctx, "k", &dest, time.Minute, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("ifg:k"))
}

func TestRedisCache_GetOrSet_Concurrent(t *testing.T) {
	t.Parallel()
	_, cache := newMiniCache(t)
	ctx := context.Background()

	var loads atomic.Int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (interface{}, error) {
		loads.Add(1)
		<-release
		return &testStruct{Name: "shared"}, nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]testStruct, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = cache.GetOrSet(ctx, "k", &results[i], time.Minute, loader)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i].Name)
	}
	assert.LessOrEqual(t, loads.Load(), int32(workers))
	assert.GreaterOrEqual(t, loads.Load(), int32(1))
}

func TestRedisCache_TTLAndPing(t *testing.T) {
	t.Parallel()
	_, cache := newMiniCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Ping(ctx))
	require.NoError(t, cache.Set(ctx, "k", 1, 10*time.Second))
	ttl, err := cache.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
