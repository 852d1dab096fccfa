package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

// Recovery turns a handler panic into a 500 with the standard error envelope
// and logs it with the stack. http.ErrAbortHandler is re-raised so net/http
// can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}

			ctx := c.Request.Context()
			logging.FromContext(ctx).ErrorContext(ctx, "panic recovered",
				slog.Any("panic", r),
				slog.String("route", c.FullPath()),
				slog.String("stack", string(debug.Stack())),
			)

			abortWithError(c, http.StatusInternalServerError, dto.ErrorCodeInternal, "an internal error occurred")
		}()

		c.Next()
	}
}

// abortWithError ends the chain with the standard error envelope, adding the
// trace id when the request is traced. If a response is already on the wire
// only the chain is stopped.
func abortWithError(c *gin.Context, status int, code, message string) {
	if c.Writer.Written() {
		c.Abort()
		return
	}

	resp := dto.NewErrorResponse(code, message)
	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		resp = resp.WithTraceID(sc.TraceID().String())
	}

	c.AbortWithStatusJSON(status, resp)
}
