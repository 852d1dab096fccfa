package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

// internalPrefix groups the health and metrics endpoints.
const internalPrefix = "/-/"

// ContextLogger stores logger in the request context. Install it first so
// the id middleware enriches it.
func ContextLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger != nil {
			c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		}
		c.Next()
	}
}

// Logging writes one line per API request once it completes, at INFO, WARN
// for 4xx, or ERROR for 5xx. Health and metrics paths are not logged. On
// routes with an :id parameter the context logger is tagged with quote_id
// first, so handler and service lines carry it too.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, internalPrefix) {
			c.Next()
			return
		}

		if id := c.Param("id"); id != "" {
			c.Request = c.Request.WithContext(logging.WithQuoteID(c.Request.Context(), id))
		}

		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", max(c.Writer.Size(), 0)),
		}
		if c.FullPath() == "" {
			attrs = append(attrs, slog.String("path", c.Request.URL.Path))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		logging.FromContext(ctx).LogAttrs(ctx, levelFor(status), "request completed", attrs...)
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
