package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

// Timeout puts a deadline on each request's context, which the quote fetch
// and storage calls honour. A handler that returns past the deadline without
// having answered gets 503 TIMEOUT. Requests for the skip paths, and every
// request when timeout is not positive, run without a deadline.
func Timeout(timeout time.Duration, skip ...string) gin.HandlerFunc {
	if timeout <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	skipped := make(map[string]bool, len(skip))
	for _, path := range skip {
		skipped[path] = true
	}

	return func(c *gin.Context) {
		if skipped[c.Request.URL.Path] {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || answered(c) {
			return
		}

		logging.FromContext(ctx).WarnContext(ctx, "request deadline exceeded",
			slog.String("route", c.FullPath()),
			slog.Duration("timeout", timeout),
		)
		abortWithError(c, http.StatusServiceUnavailable, dto.ErrorCodeTimeout, "request timeout exceeded")
	}
}

// answered reports whether the handler wrote a body or chose a status, as
// the 204 collection endpoints do.
func answered(c *gin.Context) bool {
	return c.Writer.Written() || c.Writer.Status() != http.StatusOK
}
