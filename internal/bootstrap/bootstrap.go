// Package bootstrap builds the motivation object graph from loaded
// configuration. Both the HTTP service and the CLI start from here.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/clients"
	"github.com/jsamuelsen/daily-motivation/internal/adapters/clients/acl"
	"github.com/jsamuelsen/daily-motivation/internal/adapters/flags"
	"github.com/jsamuelsen/daily-motivation/internal/adapters/notify"
	"github.com/jsamuelsen/daily-motivation/internal/adapters/storage/memory"
	"github.com/jsamuelsen/daily-motivation/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/daily-motivation/internal/app"
	"github.com/jsamuelsen/daily-motivation/internal/platform/config"
	"github.com/jsamuelsen/daily-motivation/internal/platform/telemetry"
	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

// Options adjusts Build for the calling binary.
type Options struct {
	// Registerer receives the motivation metrics. Nil uses the default registry.
	Registerer prometheus.Registerer

	// Notifiers receive notices in addition to the log and the feed.
	Notifiers []ports.Notifier

	// QuoteClient replaces the remote quote API client.
	QuoteClient ports.QuoteClient
}

// Stack is the wired application.
type Stack struct {
	Service    *app.MotivationService
	Negotiator *app.StorageNegotiator
	Feed       *notify.Feed
	Health     *ports.DefaultHealthRegistry
	Metrics    *telemetry.Collector
	Flags      *flags.Static
}

// Close releases the opened stores.
func (s *Stack) Close() error {
	return s.Negotiator.Close()
}

// Build wires the stack without touching storage or the network. Call
// Stack.Service.Start to negotiate storage and fetch the first quote.
func Build(cfg *config.Config, logger *slog.Logger, opts Options) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// 1. Metrics
	collector, err := telemetry.NewCollector(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	health := ports.NewHealthRegistry()

	// 2. Quote source (ACL over the resilient HTTP client)
	quoteClient := opts.QuoteClient
	if quoteClient == nil {
		remote, err := newRemoteQuoteClient(cfg, logger)
		if err != nil {
			return nil, err
		}

		if err := health.Register(remote); err != nil {
			return nil, fmt.Errorf("registering quote client health check: %w", err)
		}

		quoteClient = remote
	}

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		QuoteClient: quoteClient,
		Metrics:     collector,
		Logger:      logger,
	})

	// 3. Storage candidates, in priority order
	negotiator := app.NewStorageNegotiator(StorageConfig(cfg.Storage, logger))

	// 4. Notices go to the log, the feed, and any caller-provided notifiers
	feed := notify.NewFeed(cfg.Notify.FeedSize)
	notifiers := ports.Notifiers{notify.Log{}, feed}
	if cfg.Notify.Desktop {
		notifiers = append(notifiers, notify.NewDesktop(logger))
	}
	notifiers = append(notifiers, opts.Notifiers...)

	featureFlags := flags.NewStatic(cfg.Features)

	// 5. Application service
	svc := app.NewMotivationService(app.MotivationServiceConfig{
		Storage:       negotiator,
		Quotes:        quotes,
		CollectionKey: cfg.Storage.CollectionKey,
		Flags:         featureFlags,
		Notifier:      notifiers,
		Metrics:       collector,
		Logger:        logger,
	})

	if err := health.Register(svc.StorageHealth()); err != nil {
		return nil, fmt.Errorf("registering storage health check: %w", err)
	}

	return &Stack{
		Service:    svc,
		Negotiator: negotiator,
		Feed:       feed,
		Health:     health,
		Metrics:    collector,
		Flags:      featureFlags,
	}, nil
}

// StorageConfig maps the storage section onto negotiator candidates.
// Disabled candidates are left out.
func StorageConfig(cfg config.StorageConfig, logger *slog.Logger) app.StorageNegotiatorConfig {
	out := app.StorageNegotiatorConfig{Logger: logger}

	if cfg.Primary.Enabled {
		path, quota := cfg.Primary.Path, cfg.Primary.QuotaBytes
		out.Primary = func(ctx context.Context) (ports.KeyValueStore, error) {
			store, err := sqlite.Open(ctx, path, quota)
			if err != nil {
				return nil, err
			}
			return store, nil
		}
	}

	if cfg.Fallback.Enabled {
		out.Fallback = app.StaticStore(memory.New(cfg.Fallback.QuotaBytes))
	}

	return out
}

func newRemoteQuoteClient(cfg *config.Config, logger *slog.Logger) (*acl.QuoteClient, error) {
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating quote HTTP client: %w", err)
	}

	return acl.NewQuoteClient(acl.QuoteClientConfig{
		Client:      httpClient,
		ServiceName: cfg.Services.Quote.Name,
		Path:        cfg.Services.Quote.Path,
		Logger:      logger,
	}), nil
}
