package telemetry

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/daily-motivation/internal/platform/telemetry"

// HeaderTraceID carries the request's trace id back to the caller, so a
// user report can be matched to its span and log lines.
const HeaderTraceID = "X-Trace-ID"

type serverInstruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

func newServerInstruments(meter metric.Meter) (*serverInstruments, error) {
	var (
		in   serverInstruments
		errs = make([]error, 3)
	)

	in.duration, errs[0] = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	in.total, errs[1] = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("HTTP requests by route and status"),
	)
	in.active, errs[2] = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP requests in flight"),
	)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &in, nil
}

// TracingMiddleware starts a server span per request and extracts incoming
// W3C trace context.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// Middleware echoes the trace id in HeaderTraceID, tags the context logger
// with it, and records request metrics on the global meter provider.
// Install it after TracingMiddleware so the request already has a span.
func Middleware() gin.HandlerFunc {
	return middlewareWith(otel.Meter(instrumentationName))
}

func middlewareWith(meter metric.Meter) gin.HandlerFunc {
	// Requests are still served when the instruments cannot be built.
	instruments, err := newServerInstruments(meter)
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			id := sc.TraceID().String()
			c.Header(HeaderTraceID, id)

			ctx = logging.WithTraceID(ctx, id)
			c.Request = c.Request.WithContext(ctx)
		}

		if instruments == nil {
			c.Next()
			return
		}

		method := attribute.String("http.method", c.Request.Method)
		route := attribute.String("http.route", c.FullPath())

		inFlight := metric.WithAttributes(method, route)
		instruments.active.Add(ctx, 1, inFlight)
		defer instruments.active.Add(ctx, -1, inFlight)

		start := time.Now()
		c.Next()

		done := metric.WithAttributes(method, route, attribute.Int("http.status_code", c.Writer.Status()))
		instruments.duration.Record(ctx, time.Since(start).Seconds(), done)
		instruments.total.Add(ctx, 1, done)
	}
}
