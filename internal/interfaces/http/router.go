// Package http exposes the analysis service over a chi-routed JSON API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/funcgroup/internal/interfaces/http/handlers"
	"github.com/turtacn/funcgroup/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil entries are skipped.
type RouterConfig struct {
	AnalysisHandler *handlers.AnalysisHandler
	HealthHandler   *handlers.HealthHandler

	CORSMiddleware      *middleware.CORSMiddleware
	LoggingMiddleware   *middleware.LoggingMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware

	// MetricsHandler serves the Prometheus scrape endpoint.
	MetricsHandler http.Handler
}

// NewRouter builds the route tree:
//
//	POST /api/v1/analyze
//	POST /api/v1/analyze/batch
//	GET  /api/v1/catalog
//	GET  /healthz, /readyz
//	GET  /metrics
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}
	r.Use(chimw.Recoverer)
	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimitMiddleware != nil {
			api.Use(cfg.RateLimitMiddleware.Handler)
		}
		registerAnalysisRoutes(api, cfg.AnalysisHandler)
	})

	return r
}

func registerAnalysisRoutes(r chi.Router, h *handlers.AnalysisHandler) {
	if h == nil {
		return
	}
	r.Post("/analyze", h.Analyze)
	r.Post("/analyze/batch", h.AnalyzeBatch)
	r.Get("/catalog", h.Catalog)
}
