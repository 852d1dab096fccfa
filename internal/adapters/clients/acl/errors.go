package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/clients"
	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// maxErrorBodyBytes caps how much of an error body is read for context.
const maxErrorBodyBytes = 4 << 10

// ErrorResponse is an error body from a quote provider. quotable.io sends
// statusCode/statusMessage; other providers send message or error.
type ErrorResponse struct {
	StatusCode    int    `json:"statusCode,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

// GetMessage returns the first non-empty message field.
func (e *ErrorResponse) GetMessage() string {
	return firstNonEmpty(e.StatusMessage, e.Message, e.Error)
}

// ParseErrorResponse attempts to parse an error response body.
// Returns nil if the body is empty or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBodyBytes)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError maps a failed provider call to a domain error. resp may be nil
// when clientErr is set. Every outcome wraps domain.ErrUnavailable: a quote
// provider failure is never the caller's fault.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	message := defaultMessageForStatus(resp.StatusCode, operation)
	if errResp := ParseErrorResponse(resp.Body); errResp != nil {
		message = errResp.GetMessage()
	}

	return domain.NewUnavailableError(serviceName, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, message))
}

func mapClientError(err error, serviceName, operation string) error {
	var statusErr *clients.StatusError
	var retryErr *clients.RetryError

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("circuit breaker open during %s", operation))

	case errors.As(err, &statusErr) && errors.As(err, &retryErr):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s: %s after %d attempt(s)", operation,
				defaultMessageForStatus(statusErr.Status, operation), retryErr.Attempts))

	default:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusNotFound:
		return "quote endpoint not found"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}
