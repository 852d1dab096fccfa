package logging

import (
	"context"
	"log/slog"
)

// Attribute keys added to the context logger as a request moves through the
// HTTP adapter.
const (
	KeyRequestID     = "request_id"
	KeyCorrelationID = "correlation_id"
	KeyTraceID       = "trace_id"
	KeyQuoteID       = "quote_id"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the logger stored by WithContext, or the default
// logger when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}

	return defaultLogger
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With returns ctx carrying the context logger extended with attrs.
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}

	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}

	return WithContext(ctx, FromContext(ctx).With(args...))
}

// WithRequestID tags later log lines with the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return With(ctx, slog.String(KeyRequestID, id))
}

// WithCorrelationID tags later log lines with the correlation id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return With(ctx, slog.String(KeyCorrelationID, id))
}

// WithTraceID tags later log lines with the OpenTelemetry trace id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return With(ctx, slog.String(KeyTraceID, id))
}

// WithQuoteID tags later log lines with the quote a request acts on.
func WithQuoteID(ctx context.Context, id string) context.Context {
	return With(ctx, slog.String(KeyQuoteID, id))
}

// SetDefault replaces the fallback logger and slog's default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
