// Package main is the entry point for the daily motivation HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/http"
	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/handlers"
	"github.com/jsamuelsen/daily-motivation/internal/bootstrap"
	"github.com/jsamuelsen/daily-motivation/internal/platform/config"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
	"github.com/jsamuelsen/daily-motivation/internal/platform/telemetry"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
// Unset values are filled from the module's VCS stamp where possible.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the profile named by APP_ENVIRONMENT, "local" by default,
// and refuses to start on invalid settings.
func loadConfig() (*config.Config, error) {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
}

// run serves until ctx is canceled by a signal or the listener fails.
// Cleanup runs in reverse order of setup.
func run(ctx context.Context) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	build := handlers.NewBuildInfo(Version, Commit, BuildTime)
	logger.Info("starting service",
		slog.String("version", build.Version),
		slog.String("commit", build.Commit),
		slog.String("environment", cfg.App.Environment),
	)

	tel, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		err = errors.Join(err, tel.Shutdown(context.WithoutCancel(ctx)))
	}()

	stack, err := bootstrap.Build(cfg, logger, bootstrap.Options{})
	if err != nil {
		return fmt.Errorf("building application: %w", err)
	}
	defer func() {
		if closeErr := stack.Close(); closeErr != nil {
			logger.Error("closing storage", slog.Any("error", closeErr))
		}
	}()

	quote, err := stack.Service.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting motivation service: %w", err)
	}
	logger.Info("motivation service ready",
		slog.String("storage", string(stack.Service.StorageKind())),
		slog.Int("liked", len(stack.Service.GetCollection())),
		slog.String("quote_id", quote.ID),
	)

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:              logger,
		AppConfig:           &cfg.App,
		HealthHandler:       handlers.NewHealthHandler(stack.Health, build),
		QuoteHandler:        handlers.NewQuoteHandler(stack.Service),
		CollectionHandler:   handlers.NewCollectionHandler(stack.Service),
		NotificationHandler: handlers.NewNotificationHandler(stack.Feed),
		Timeout:             http.DefaultRequestTimeout,
	})

	return serve(ctx, logger, server, cfg.Server)
}

// serve blocks until ctx ends, then drains in-flight requests within the
// configured shutdown timeout.
func serve(ctx context.Context, logger *slog.Logger, server *http.Server, cfg config.ServerConfig) error {
	select {
	case err := <-server.Start():
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(drainCtx); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
