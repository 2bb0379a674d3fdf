package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func corsRequest(t *testing.T, cfg CORSConfig, method, origin string, preflight bool) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, "/api/v1/analyze", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	if preflight {
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		r.Header.Set("Access-Control-Request-Headers", "Content-Type")
	}
	w := httptest.NewRecorder()
	CORS(cfg)(okHandler()).ServeHTTP(w, r)
	return w
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}

	w := corsRequest(t, cfg, http.MethodOptions, "https://app.example.com", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Content-Type, X-Request-ID", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_PlainOptionsIsServed(t *testing.T) {
	t.Parallel()
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}

	w := corsRequest(t, cfg, http.MethodOptions, "https://app.example.com", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestCORS_Origins(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		origins    []string
		wildcard   bool
		origin     string
		wantHeader string
	}{
		{"exact match", []string{"https://app.example.com"}, false, "https://app.example.com", "https://app.example.com"},
		{"case insensitive", []string{"https://App.Example.com"}, false, "https://app.example.com", "https://app.example.com"},
		{"disallowed", []string{"https://app.example.com"}, false, "https://evil.example.org", ""},
		{"allow all", []string{"*"}, false, "https://anything.test", "*"},
		{"subdomain wildcard", []string{"*.example.com"}, true, "https://lab.example.com", "https://lab.example.com"},
		{"subdomain wildcard disabled", []string{"*.example.com"}, false, "https://lab.example.com", ""},
		{"subdomain wildcard other domain", []string{"*.example.com"}, true, "https://example.org", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.origins
			cfg.AllowWildcard = tt.wildcard

			w := corsRequest(t, cfg, http.MethodPost, tt.origin, false)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_NoOriginHeader(t *testing.T) {
	t.Parallel()
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}

	w := corsRequest(t, cfg, http.MethodGet, "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Values("Vary"))
}

func TestCORS_ExposedAndVaryHeaders(t *testing.T) {
	t.Parallel()
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}

	w := corsRequest(t, cfg, http.MethodPost, "https://app.example.com", false)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-RateLimit-Remaining")
	assert.ElementsMatch(t,
		[]string{"Origin", "Access-Control-Request-Method", "Access-Control-Request-Headers"},
		w.Header().Values("Vary"))
}

func TestCORS_WildcardWithCredentials(t *testing.T) {
	t.Parallel()
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	cfg.AllowCredentials = true

	w := corsRequest(t, cfg, http.MethodGet, "https://app.example.com", false)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ZeroMaxAgeOmitsHeader(t *testing.T) {
	t.Parallel()
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	cfg.MaxAge = 0

	w := corsRequest(t, cfg, http.MethodOptions, "https://app.example.com", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Max-Age"))
}

func TestDefaultCORSConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultCORSConfig()
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Contains(t, cfg.AllowedMethods, http.MethodPost)
	assert.NotContains(t, cfg.AllowedMethods, http.MethodDelete)
}

func TestCORSMiddleware_Handler(t *testing.T) {
	t.Parallel()
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	m := NewCORSMiddleware(cfg)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://x.test")
	w := httptest.NewRecorder()
	m.Handler(okHandler()).ServeHTTP(w, r)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
