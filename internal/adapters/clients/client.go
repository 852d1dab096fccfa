package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/middleware"
	"github.com/jsamuelsen/daily-motivation/internal/platform/config"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/daily-motivation/internal/adapters/clients"

	defaultTimeout      = 5 * time.Second
	defaultJitterFactor = 0.25
	defaultUserAgent    = "daily-motivation/1"

	transportMaxIdleConns        = 100
	transportMaxIdleConnsPerHost = 10
	transportIdleConnTimeout     = 90 * time.Second
)

// Outcomes recorded on the request metrics.
const (
	outcomeOK          = "ok"
	outcomeFailed      = "error"
	outcomeCanceled    = "canceled"
	outcomeCircuitOpen = "circuit_open"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the quote provider root, e.g. "https://api.quotable.io".
	BaseURL string

	// ServiceName names the provider in logs, spans and metrics.
	ServiceName string

	// Timeout bounds one attempt. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// UserAgent defaults to defaultUserAgent.
	UserAgent string

	Logger *slog.Logger
}

// Client calls the quote provider. Each call passes the circuit breaker,
// then is sent up to Retry.MaxAttempts times with jittered exponential
// backoff. Request and correlation ids in the context are forwarded, and
// every call gets a client span and request metrics.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker

	tracer   trace.Tracer
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

// New validates cfg, fills its defaults and builds the client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	cb.OnStateChange(func(from, to State) {
		logger.Warn("quote api circuit changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of quote API calls, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	total, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Quote API calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(cfg.Transport),
		},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		cfg:         cfg,
		logger:      logger,
		cb:          cb,
		tracer:      otel.Tracer(instrumentationName),
		duration:    duration,
		total:       total,
	}, nil
}

// Get sends a GET for path below the base URL.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

// Do sends req. It returns ErrCircuitOpen without sending when the breaker
// is open, and a *RetryError when the last attempt failed. Any response
// below 500 is returned to the caller, who owns its body.
//
// Only requests without a body, or with GetBody set, can be retried safely.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.record(ctx, req.Method, 0, start, outcomeCircuitOpen)
		logger.WarnContext(ctx, "quote api call refused by open circuit")
		return nil, ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	c.setHeaders(ctx, req)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, attempts, err := c.send(ctx, req, logger)
	if err != nil {
		c.cb.RecordFailure()
		span.SetStatus(codes.Error, err.Error())

		outcome := outcomeFailed
		if ctx.Err() != nil {
			outcome = outcomeCanceled
		}
		c.record(ctx, req.Method, 0, start, outcome)

		logger.ErrorContext(ctx, "quote api call failed",
			slog.Int("attempts", attempts),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		return nil, &RetryError{Attempts: attempts, Last: err}
	}

	c.cb.RecordSuccess()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+resp.Status)
	}
	c.record(ctx, req.Method, resp.StatusCode, start, outcomeOK)

	logger.DebugContext(ctx, "quote api call completed",
		slog.Int("status", resp.StatusCode),
		slog.Int("attempts", attempts),
		slog.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// send runs the attempts and reports how many were made. Transport errors
// that are not retryable stop at once.
func (c *Client) send(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, int, error) {
	attempts := 0

	resp, err := backoff.Retry(ctx, func() (*http.Response, error) {
		attempts++

		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			if !isRetryableError(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			if closeErr := resp.Body.Close(); closeErr != nil {
				logger.DebugContext(ctx, "closing 5xx body", slog.Any("error", closeErr))
			}
			return nil, &StatusError{Status: resp.StatusCode}
		}

		return resp, nil
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.cfg.Retry.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.DebugContext(ctx, "retrying quote api call",
				slog.Int("attempt", attempts+1),
				slog.Duration("backoff", wait),
				slog.Any("error", err),
			)
		}),
	)

	return resp, attempts, err
}

// newBackOff builds the schedule for one call from the retry settings.
func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	jitter := c.cfg.Retry.JitterFactor
	if jitter <= 0 {
		jitter = defaultJitterFactor
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.Retry.InitialInterval
	b.MaxInterval = c.cfg.Retry.MaxInterval
	b.Multiplier = c.cfg.Retry.Multiplier
	b.RandomizationFactor = jitter
	b.Reset()

	return b
}

// CircuitSnapshot reports the breaker state for health checks.
func (c *Client) CircuitSnapshot() Snapshot {
	return c.cb.Snapshot()
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}
	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}
}

func (c *Client) buildURL(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) record(ctx context.Context, method string, status int, start time.Time, outcome string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", outcome),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	set := metric.WithAttributes(attrs...)
	c.duration.Record(ctx, time.Since(start).Seconds(), set)
	c.total.Add(ctx, 1, set)
}

// newTransport builds the pooled transport. Unset limits take the package
// defaults.
func newTransport(tc config.TransportConfig) *http.Transport {
	if tc.MaxIdleConns <= 0 {
		tc.MaxIdleConns = transportMaxIdleConns
	}
	if tc.MaxIdleConnsPerHost <= 0 {
		tc.MaxIdleConnsPerHost = transportMaxIdleConnsPerHost
	}
	if tc.IdleConnTimeout <= 0 {
		tc.IdleConnTimeout = transportIdleConnTimeout
	}

	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        tc.MaxIdleConns,
		MaxIdleConnsPerHost: tc.MaxIdleConnsPerHost,
		IdleConnTimeout:     tc.IdleConnTimeout,
	}
}

// isRetryableError reports whether a transport error is worth another
// attempt: timeouts and failed dials or reads are, caller cancellation is not.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
