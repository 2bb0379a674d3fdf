package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/funcgroup/internal/config"
	"github.com/turtacn/funcgroup/internal/testutil"
)

func TestNewServer(t *testing.T) {
	t.Parallel()
	cfg := config.Default().Server
	cfg.Port = 9123
	s := NewServer(cfg, http.NewServeMux(), nil)

	assert.Equal(t, ":9123", s.Addr())
	assert.Equal(t, cfg.ReadTimeout, s.httpServer.ReadTimeout)
	assert.Equal(t, cfg.WriteTimeout, s.httpServer.WriteTimeout)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	log := testutil.NewMockLogger()
	s := NewServer(config.Default().Server, mux, log)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, s.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
	assert.True(t, log.HasMessage("info", "HTTP server listening"))
	assert.True(t, log.HasMessage("info", "HTTP server stopped"))
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	t.Parallel()
	s := NewServer(config.Default().Server, http.NewServeMux(), nil)
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestServer_StartListenFailure(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := config.Default().Server
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	s := NewServer(cfg, http.NewServeMux(), nil)
	s.httpServer.Addr = ln.Addr().String()

	err = s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
