// Command apiserver serves the functional group analysis API over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/funcgroup/internal/bootstrap"
	"github.com/turtacn/funcgroup/internal/config"
	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/funcgroup/internal/interfaces/cli"
	httpserver "github.com/turtacn/funcgroup/internal/interfaces/http"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: IFG_* environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cli.Version, cli.GitCommit, cli.BuildDate = version, commit, buildDate

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, httpPort int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	logger.Info("starting functional group API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.Int("port", cfg.Server.Port))

	comps, err := bootstrap.Build(cfg, logger, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer comps.Close()

	router, stopRouter := newRouter(cfg, comps, logger, version)
	defer stopRouter()
	srv := httpserver.NewServer(cfg.Server, router, logger)

	if configPath != "" {
		watchLogLevel(configPath, logger)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
		return err
	}
	return <-errCh
}

// watchLogLevel applies log.level changes from the config file without a
// restart.  Other settings need one.
func watchLogLevel(configPath string, logger logging.Logger) {
	setter, ok := logger.(logging.LevelSetter)
	if !ok {
		return
	}
	err := config.Watch(configPath,
		func(cfg *config.Config) {
			setter.SetLevel(cfg.Log.Level)
			logger.Info("configuration reloaded", logging.String("log_level", cfg.Log.Level.String()))
		},
		func(err error) {
			logger.Warn("ignoring invalid configuration change", logging.Err(err))
		})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}
