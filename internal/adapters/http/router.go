package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/handlers"
	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/middleware"
	"github.com/jsamuelsen/daily-motivation/internal/platform/config"
	"github.com/jsamuelsen/daily-motivation/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler serves the displayed quote.
	QuoteHandler *handlers.QuoteHandler

	// CollectionHandler serves the liked quotes and storage renegotiation.
	CollectionHandler *handlers.CollectionHandler

	// NotificationHandler serves the notification feed.
	NotificationHandler *handlers.NotificationHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// metricsPath streams the Prometheus exposition and is left without a deadline.
const metricsPath = "/-/metrics"

// SetupRouter installs the middleware chain and every route on engine.
// Middleware order, outermost first: context logger, recovery, request and
// correlation ids, tracing, trace header and metrics, access log, deadline.
// Health routes live under /-/ and the API under /api/v1.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.ContextLogger(cfg.Logger),
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(),
		middleware.Logging(),
		middleware.Timeout(cfg.Timeout, metricsPath),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.Register(engine)
	}

	setupAPIRoutes(engine.Group("/api/v1"), cfg)
}

// setupAPIRoutes registers business API routes. Nil handlers are skipped.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(rg)
	}

	if cfg.CollectionHandler != nil {
		cfg.CollectionHandler.RegisterCollectionRoutes(rg)
	}

	if cfg.NotificationHandler != nil {
		cfg.NotificationHandler.RegisterNotificationRoutes(rg)
	}
}
