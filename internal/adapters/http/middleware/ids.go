// Package middleware holds the gin middleware in front of the motivation API.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

const (
	// HeaderRequestID carries the per-request id.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID carries an id shared by every request of one user
	// action. The quote client forwards it to the quote provider.
	HeaderCorrelationID = "X-Correlation-ID"

	// maxIDLength bounds ids accepted from callers.
	maxIDLength = 128
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	correlationIDKey
)

// RequestID tags each request with the caller's X-Request-ID, or a new UUID
// when the header is missing or unusable. The id is echoed in the response,
// stored in the request context, and added to the context logger.
func RequestID() gin.HandlerFunc {
	return idMiddleware(HeaderRequestID, func(ctx context.Context, id string) context.Context {
		return logging.WithRequestID(ContextWithRequestID(ctx, id), id)
	})
}

// CorrelationID does for X-Correlation-ID what RequestID does for X-Request-ID.
func CorrelationID() gin.HandlerFunc {
	return idMiddleware(HeaderCorrelationID, func(ctx context.Context, id string) context.Context {
		return logging.WithCorrelationID(ContextWithCorrelationID(ctx, id), id)
	})
}

func idMiddleware(header string, tag func(context.Context, string) context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if !usableID(id) {
			id = uuid.NewString()
		}

		c.Header(header, id)
		c.Request = c.Request.WithContext(tag(c.Request.Context(), id))

		c.Next()
	}
}

// usableID accepts short ids made of visible ASCII, so a caller cannot
// inject spaces or line breaks into log lines and forwarded headers.
func usableID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := range len(id) {
		if id[i] < '!' || id[i] > '~' {
			return false
		}
	}

	return true
}

// ContextWithRequestID stores a request id for RequestIDFromContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithCorrelationID stores a correlation id for CorrelationIDFromContext.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// RequestIDFromContext returns the request id, or "" when there is none.
func RequestIDFromContext(ctx context.Context) string {
	return idFrom(ctx, requestIDKey)
}

// CorrelationIDFromContext returns the correlation id, or "" when there is none.
func CorrelationIDFromContext(ctx context.Context) string {
	return idFrom(ctx, correlationIDKey)
}

func idFrom(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(key).(string)

	return id
}
