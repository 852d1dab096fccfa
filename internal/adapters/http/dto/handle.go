package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

// contextKeyTraceID lets middleware or tests pin the id echoed in error bodies.
const contextKeyTraceID = "trace_id"

// GetTraceID returns the id echoed in error responses: an explicit trace_id
// on the gin context, then the OpenTelemetry trace id, then X-Request-ID.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(contextKeyTraceID); ok {
		s, _ := v.(string)
		return s
	}

	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return c.GetHeader("X-Request-ID")
}

// MapDomainError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 Internal Server Error with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	switch {
	case err == nil:
		return http.StatusOK, nil

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsUnavailable(err):
		// Storage and upstream details stay in the logs.
		return http.StatusServiceUnavailable, NewErrorResponse(
			ErrorCodeUnavailable,
			"service temporarily unavailable",
		)

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// HandleError writes the error envelope for err. Server-side failures are
// logged with the request's context logger.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	if resp == nil {
		return
	}

	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			slog.Int("status", status),
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// HandleBindError writes a 400 for a BindAndValidate failure. Field errors
// are listed in details.
func HandleBindError(c *gin.Context, err error) {
	var resp *ErrorResponse
	if IsValidationError(err) {
		resp = NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", ValidationErrors(err))
	} else {
		resp = NewErrorResponse(ErrorCodeBadRequest, "request body must be a JSON object")
	}

	c.JSON(HTTPStatusFromCode(resp.Error.Code), resp.WithTraceID(GetTraceID(c)))
}
