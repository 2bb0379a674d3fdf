// Package bootstrap assembles the analysis service and its infrastructure
// from a loaded configuration.  Both entry points (CLI and API server) build
// their dependencies here.
package bootstrap

import (
	"context"
	"os"

	"github.com/turtacn/funcgroup/internal/application/analysis"
	"github.com/turtacn/funcgroup/internal/config"
	"github.com/turtacn/funcgroup/internal/domain/funcgroup"
	"github.com/turtacn/funcgroup/internal/infrastructure/database/redis"
	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	metrics "github.com/turtacn/funcgroup/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/funcgroup/pkg/errors"
)

// Options adjusts Build for the calling entry point.
type Options struct {
	// CatalogPath overrides cfg.Catalog.Path when non-empty.
	CatalogPath string
	// RequireCache turns an unreachable cache into a startup error instead
	// of a warning.
	RequireCache bool
	// Concurrency overrides cfg.Batch.Concurrency when positive.
	Concurrency int
}

// Components are the assembled dependencies.  Close releases them.
type Components struct {
	Config    *config.Config
	Analyzer  *funcgroup.Analyzer
	Service   *analysis.Service
	Collector metrics.MetricsCollector
	Metrics   *metrics.AppMetrics

	// Cache and RedisClient are nil when caching is disabled or the cache
	// could not be reached.
	Cache       *redis.ResultCache
	RedisClient *redis.Client

	logger logging.Logger
}

// LoadCatalog reads a "PATTERN NAME" catalog file, or returns the built-in
// catalog when path is empty.
func LoadCatalog(path string) (*funcgroup.Catalog, error) {
	if path == "" {
		return funcgroup.DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to open catalog").WithDetailf("path=%s", path)
	}
	defer f.Close()

	cat, err := funcgroup.LoadCatalog(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to load catalog").WithDetailf("path=%s", path)
	}
	return cat, nil
}

// Build wires catalog, analyser, metrics, optional cache and the analysis
// service according to cfg.
func Build(cfg *config.Config, logger logging.Logger, opts Options) (*Components, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &Components{Config: cfg, logger: logger}

	catalogPath := cfg.Catalog.Path
	if opts.CatalogPath != "" {
		catalogPath = opts.CatalogPath
	}
	catalog, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	c.Analyzer = funcgroup.NewAnalyzer(catalog,
		funcgroup.WithMaxDepth(cfg.Matching.MaxDepth),
		funcgroup.WithExhaustive(cfg.Matching.Exhaustive),
	)

	if cfg.Metrics.Enabled {
		c.Collector, err = metrics.NewMetricsCollector(metrics.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableGoMetrics:      true,
			EnableProcessMetrics: true,
		}, logger)
		if err != nil {
			return nil, err
		}
	} else {
		c.Collector = metrics.NewNopCollector()
	}
	c.Metrics = metrics.NewAppMetrics(c.Collector)

	if cfg.Cache.Enabled {
		if err := c.connectCache(cfg); err != nil {
			if opts.RequireCache {
				return nil, err
			}
			logger.Warn("result cache disabled", logging.Err(err))
		}
	}

	concurrency := cfg.Batch.Concurrency
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}
	svcOpts := []analysis.Option{
		analysis.WithMetrics(c.Metrics),
		analysis.WithMaxAtoms(cfg.Matching.MaxAtoms),
		analysis.WithConcurrency(concurrency),
	}
	if c.Cache != nil {
		svcOpts = append(svcOpts, analysis.WithCache(c.Cache))
	}
	c.Service = analysis.NewService(c.Analyzer, logger, svcOpts...)

	logger.Info("analysis service ready",
		logging.Int("templates", catalog.Len()),
		logging.String("catalog_fingerprint", catalog.Fingerprint()),
		logging.String("mode", c.Service.Mode()),
		logging.Bool("cache", c.Cache != nil),
	)
	return c, nil
}

func (c *Components) connectCache(cfg *config.Config) error {
	client, err := redis.NewClient(redis.FromCacheConfig(cfg.Cache), c.logger)
	if err != nil {
		return err
	}
	backing := redis.NewRedisCache(client, c.logger,
		redis.WithPrefix(cfg.Cache.KeyPrefix),
		redis.WithDefaultTTL(cfg.Cache.TTL),
	)
	c.RedisClient = client
	c.Cache = redis.NewResultCache(backing, analysis.CacheNamespace(c.Analyzer), cfg.Cache.TTL, c.Metrics, c.logger)
	return nil
}

// PingCache reports cache reachability; nil when no cache is configured.
func (c *Components) PingCache(ctx context.Context) error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Ping(ctx)
}

// Close releases the cache connection, if any.
func (c *Components) Close() error {
	if c.RedisClient == nil {
		return nil
	}
	return c.RedisClient.Close()
}
