// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

// Quote sources reported to metrics.
const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// QuoteService fetches the quote to display.
// It depends on port interfaces, not concrete implementations,
// following the Dependency Inversion Principle.
type QuoteService struct {
	quoteClient ports.QuoteClient
	metrics     ports.MotivationMetrics
	pick        func(n int) int
	logger      *slog.Logger
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	QuoteClient ports.QuoteClient

	// Metrics defaults to ports.NoopMetrics.
	Metrics ports.MotivationMetrics

	// Pick returns an index in [0, n). Defaults to a uniform random pick.
	Pick func(n int) int

	Logger *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
// Panics if QuoteClient is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.QuoteClient == nil {
		panic("app: QuoteServiceConfig.QuoteClient is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}

	pick := cfg.Pick
	if pick == nil {
		pick = rand.IntN
	}

	return &QuoteService{
		quoteClient: cfg.QuoteClient,
		metrics:     metrics,
		pick:        pick,
		logger:      logger.With(slog.String("component", "app.QuoteService")),
	}
}

// Fetch returns a quote from the remote API, or a local fallback quote when
// the call fails for any reason. It never returns an error.
func (s *QuoteService) Fetch(ctx context.Context) domain.Quote {
	s.logger.DebugContext(ctx, "fetching random quote")

	quote, err := s.quoteClient.GetRandomQuote(ctx)
	if err == nil {
		err = validQuote(quote)
	}

	if err == nil {
		s.metrics.QuoteFetched(SourceRemote)
		s.logger.InfoContext(ctx, "fetched random quote",
			slog.String("quote_id", quote.ID),
			slog.String("author", quote.Author),
		)

		return *quote
	}

	fallback := s.fallback()
	s.metrics.QuoteFetched(SourceFallback)
	s.logger.WarnContext(ctx, "quote API failed, showing a local quote",
		slog.String("quote_id", fallback.ID),
		slog.Any("error", err),
	)

	return fallback
}

func (s *QuoteService) fallback() domain.Quote {
	i := s.pick(len(fallbackQuotes))
	if i < 0 || i >= len(fallbackQuotes) {
		i = 0
	}

	return fallbackQuotes[i]
}

func validQuote(q *domain.Quote) error {
	if q == nil {
		return domain.NewUnavailableError("quote-service", "empty response")
	}

	return q.Validate()
}
