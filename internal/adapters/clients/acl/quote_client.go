package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/clients"
	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

// DefaultRandomPath is the quotable.io random quote endpoint.
const DefaultRandomPath = "/random"

// QuoteClientConfig contains configuration for the quote client.
type QuoteClientConfig struct {
	// Client is the HTTP client to use for requests.
	// The client's BaseURL should be set to the quote API endpoint.
	Client *clients.Client

	// ServiceName labels errors and the health check. Defaults to "quote-service".
	ServiceName string

	// Path is the random-quote endpoint relative to the base URL.
	Path string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// QuoteClient implements ports.QuoteClient against a remote quote API.
type QuoteClient struct {
	client      *clients.Client
	serviceName string
	path        string
	logger      *slog.Logger
}

// NewQuoteClient creates a new quote client adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("QuoteClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.ServiceName
	if name == "" {
		name = "quote-service"
	}

	path := cfg.Path
	if path == "" {
		path = DefaultRandomPath
	}

	return &QuoteClient{
		client:      cfg.Client,
		serviceName: name,
		path:        path,
		logger:      logger.With(slog.String("component", "acl.QuoteClient")),
	}
}

// GetRandomQuote fetches one quote from the provider.
// Implements ports.QuoteClient.
func (c *QuoteClient) GetRandomQuote(ctx context.Context) (*domain.Quote, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", c.path))

	resp, err := c.client.Get(ctx, c.path)
	if err != nil {
		return nil, MapHTTPError(nil, err, c.serviceName, "get random quote")
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", c.path),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		mapped := MapHTTPError(resp, nil, c.serviceName, "get random quote")
		c.logger.WarnContext(ctx, "quote API error",
			slog.Int("status_code", resp.StatusCode),
			slog.Any("error", mapped),
		)
		return nil, mapped
	}

	payload, err := decodeQuote(resp.Body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.serviceName, err.Error())
	}

	quote, err := translateQuote(payload)
	if err != nil {
		return nil, domain.NewUnavailableError(c.serviceName, fmt.Sprintf("incomplete quote: %v", err))
	}

	c.logger.Log(ctx, logging.LevelTrace, "translated external DTO to domain",
		slog.String("quote_id", quote.ID),
		slog.String("author", quote.Author))

	return quote, nil
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return c.serviceName
}

// Check reports the provider as unavailable while the circuit breaker is
// open and degraded while it is half-open. Quotes still come from the local
// set in both cases. It does not call the API so that health checks do not spend the
// provider's rate limit.
// Implements ports.HealthChecker.
func (c *QuoteClient) Check(_ context.Context) error {
	snap := c.client.CircuitSnapshot()

	switch snap.State {
	case clients.StateOpen:
		return fmt.Errorf("%w: circuit breaker open until %s",
			clients.ErrCircuitOpen, snap.ReopenAt.Format(time.RFC3339))
	case clients.StateHalfOpen:
		return fmt.Errorf("%w: circuit breaker half-open", ports.ErrDegraded)
	default:
		return nil
	}
}
