package redis

import (
	"context"
	"time"

	metrics "github.com/turtacn/funcgroup/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/funcgroup/pkg/errors"
	"github.com/turtacn/funcgroup/pkg/types/funcgroup"
)

// cacheLabel is the "cache" label value of the cache metrics.
const cacheLabel = "result"

// ResultCache stores analysis results keyed by namespace and SMILES.  The
// namespace identifies everything besides the SMILES that shapes a result
// (catalog fingerprint and matching mode), so a catalog change never serves
// stale entries.
//
// Cache failures degrade to computing the result; they are logged and
// counted but never returned.
type ResultCache struct {
	cache     Cache
	namespace string
	ttl       time.Duration
	metrics   *metrics.AppMetrics
	logger    logging.Logger
}

// NewResultCache wraps cache.  m may be nil.
func NewResultCache(cache Cache, namespace string, ttl time.Duration, m *metrics.AppMetrics, log logging.Logger) *ResultCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ResultCache{
		cache:     cache,
		namespace: namespace,
		ttl:       ttl,
		metrics:   m,
		logger:    log.Named("result_cache"),
	}
}

// Namespace returns the key namespace of this cache.
func (r *ResultCache) Namespace() string { return r.namespace }

func (r *ResultCache) key(smiles string) string {
	return r.namespace + ":" + smiles
}

// Get returns the cached result of smiles, or ErrCacheMiss.
func (r *ResultCache) Get(ctx context.Context, smiles string) (*funcgroup.AnalysisResult, error) {
	var res funcgroup.AnalysisResult
	err := r.cache.Get(ctx, r.key(smiles), &res)
	switch {
	case err == nil:
		metrics.RecordCacheAccess(r.metrics, cacheLabel, true)
		res.Cached = true
		return &res, nil
	case err == ErrCacheMiss:
		metrics.RecordCacheAccess(r.metrics, cacheLabel, false)
		return nil, ErrCacheMiss
	default:
		metrics.RecordCacheError(r.metrics, cacheLabel, "get")
		return nil, err
	}
}

// GetMany looks up several SMILES with one round trip.  Undecodable entries
// are treated as misses.
func (r *ResultCache) GetMany(ctx context.Context, smiles []string) (map[string]*funcgroup.AnalysisResult, error) {
	keys := make([]string, len(smiles))
	for i, s := range smiles {
		keys[i] = r.key(s)
	}
	raw, err := r.cache.MGet(ctx, keys)
	if err != nil {
		metrics.RecordCacheError(r.metrics, cacheLabel, "mget")
		return nil, err
	}

	out := make(map[string]*funcgroup.AnalysisResult, len(raw))
	for i, s := range smiles {
		data, ok := raw[keys[i]]
		if !ok {
			metrics.RecordCacheAccess(r.metrics, cacheLabel, false)
			continue
		}
		var res funcgroup.AnalysisResult
		if err := (jsonSerializer{}).Unmarshal(data, &res); err != nil {
			r.logger.Warn("dropping undecodable cache entry", logging.SMILES(s), logging.Err(err))
			metrics.RecordCacheError(r.metrics, cacheLabel, "decode")
			continue
		}
		metrics.RecordCacheAccess(r.metrics, cacheLabel, true)
		res.Cached = true
		out[s] = &res
	}
	return out, nil
}

// Set stores res under its SMILES.  The refcode is not part of the cached
// value since one SMILES may be submitted under many refcodes.
func (r *ResultCache) Set(ctx context.Context, res *funcgroup.AnalysisResult) error {
	if res == nil {
		return errors.InvalidParam("nil analysis result")
	}
	stored := *res
	stored.Refcode = ""
	stored.Cached = false
	if err := r.cache.Set(ctx, r.key(res.SMILES), &stored, r.ttl); err != nil {
		metrics.RecordCacheError(r.metrics, cacheLabel, "set")
		return err
	}
	return nil
}

// GetOrCompute returns the cached result of smiles or runs compute and
// stores its outcome.  Concurrent calls for the same SMILES share a single
// compute.  Errors from compute are returned unchanged and never cached.
func (r *ResultCache) GetOrCompute(ctx context.Context, smiles string, compute func(ctx context.Context) (*funcgroup.AnalysisResult, error)) (*funcgroup.AnalysisResult, error) {
	var res funcgroup.AnalysisResult
	var computeErr error
	loader := func(ctx context.Context) (interface{}, error) {
		v, err := compute(ctx)
		if err != nil {
			computeErr = err
			return nil, err
		}
		stored := *v
		stored.Refcode = ""
		stored.Cached = false
		return &stored, nil
	}

	hit, err := r.cache.GetOrSet(ctx, r.key(smiles), &res, r.ttl, loader)
	switch {
	case err == nil:
		metrics.RecordCacheAccess(r.metrics, cacheLabel, hit)
		res.Cached = hit
		return &res, nil
	case computeErr != nil:
		metrics.RecordCacheAccess(r.metrics, cacheLabel, false)
		return nil, computeErr
	case errors.IsCode(err, errors.ErrCodeCacheError) || errors.IsCode(err, errors.ErrCodeSerialization) || err == ErrCacheMiss:
		metrics.RecordCacheError(r.metrics, cacheLabel, "get")
		r.logger.Warn("result cache unavailable, computing directly", logging.SMILES(smiles), logging.Err(err))
		return compute(ctx)
	default:
		// compute failed in a concurrent caller sharing this flight.
		return nil, err
	}
}

// Invalidate drops every entry of this namespace.
func (r *ResultCache) Invalidate(ctx context.Context) (int64, error) {
	n, err := r.cache.DeleteByPrefix(ctx, r.namespace+":")
	if err != nil {
		metrics.RecordCacheError(r.metrics, cacheLabel, "invalidate")
		return n, err
	}
	r.logger.Info("result cache invalidated", logging.String("namespace", r.namespace), logging.Int64("deleted", n))
	return n, nil
}

// Ping checks that the backing store is reachable.
func (r *ResultCache) Ping(ctx context.Context) error {
	return r.cache.Ping(ctx)
}
