package main

import (
	"net/http"

	"github.com/turtacn/funcgroup/internal/bootstrap"
	"github.com/turtacn/funcgroup/internal/config"
	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/funcgroup/internal/interfaces/http"
	"github.com/turtacn/funcgroup/internal/interfaces/http/handlers"
	"github.com/turtacn/funcgroup/internal/interfaces/http/middleware"
)

// newRouter adapts bootstrap components to the HTTP route tree.  The returned
// function releases background resources held by the middleware.
func newRouter(cfg *config.Config, comps *bootstrap.Components, logger logging.Logger, version string) (http.Handler, func()) {
	var checkers []handlers.HealthChecker
	if comps.Cache != nil {
		checkers = append(checkers, handlers.NewChecker("cache", comps.PingCache))
	}

	rc := httpserver.RouterConfig{
		AnalysisHandler: handlers.NewAnalysisHandler(comps.Service, logger, handlers.AnalysisHandlerConfig{
			MaxBatchSize: cfg.Server.MaxBatchSize,
			MaxBodySize:  cfg.Server.MaxBodySize,
		}),
		HealthHandler:     handlers.NewHealthHandler(version, checkers...),
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger, middleware.DefaultLoggingConfig(), comps.Metrics),
	}
	if cfg.Metrics.Enabled {
		rc.MetricsHandler = comps.Collector.Handler()
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		cc := middleware.DefaultCORSConfig()
		cc.AllowedOrigins = cfg.Server.CORSOrigins
		cc.AllowWildcard = true
		rc.CORSMiddleware = middleware.NewCORSMiddleware(cc)
	}

	stop := func() {}
	if cfg.Server.RateLimitRPS > 0 {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.Server.RateLimitRPS
		rl.BurstSize = cfg.Server.RateLimitBurst
		rc.RateLimitMiddleware = middleware.NewRateLimitMiddleware(rl)
		stop = rc.RateLimitMiddleware.Stop
	}
	return httpserver.NewRouter(rc), stop
}
