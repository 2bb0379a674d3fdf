package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	metrics "github.com/turtacn/funcgroup/internal/infrastructure/monitoring/prometheus"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are neither logged nor counted (health checks, scrapes).
	SkipPaths []string
	// SlowThreshold promotes successful requests slower than this to Warn.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig skips health-check and scrape endpoints.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// unmatchedRoute labels requests no route matched, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// RequestLogging logs each request at a level chosen by its outcome and
// records it in the HTTP request metrics.  m may be nil.
func RequestLogging(logger logging.Logger, cfg LoggingConfig, m *metrics.AppMetrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("http")
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			duration := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			metrics.RecordHTTPRequest(m, r.Method, route, status, duration)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.String("route", route),
				logging.Int("status", status),
				logging.Duration("duration", duration),
				logging.Int("bytes", ww.BytesWritten()),
				logging.String("remote_addr", r.RemoteAddr),
				logging.String("request_id", chimw.GetReqID(r.Context())),
			}
			if ua := r.UserAgent(); ua != "" {
				fields = append(fields, logging.String("user_agent", ua))
			}

			switch {
			case status >= 500:
				logger.Error("HTTP request completed with server error", fields...)
			case status >= 400:
				logger.Warn("HTTP request completed with client error", fields...)
			case cfg.SlowThreshold > 0 && duration >= cfg.SlowThreshold:
				logger.Warn("HTTP request completed (slow)", fields...)
			default:
				logger.Info("HTTP request completed", fields...)
			}
		})
	}
}

// LoggingMiddleware wraps RequestLogging for use in RouterConfig.
type LoggingMiddleware struct {
	handler func(http.Handler) http.Handler
}

// NewLoggingMiddleware creates a LoggingMiddleware.
func NewLoggingMiddleware(logger logging.Logger, cfg LoggingConfig, m *metrics.AppMetrics) *LoggingMiddleware {
	return &LoggingMiddleware{handler: RequestLogging(logger, cfg, m)}
}

// Handler returns the middleware handler function.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return m.handler(next)
}
