// Package dto provides the request and response bodies of the HTTP API and
// the standard error envelope.
package dto

import "net/http"

// Codes carried in ErrorDetail.Code, with the status each is sent with.
const (
	ErrorCodeBadRequest  = "BAD_REQUEST"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeConflict    = "CONFLICT"
	ErrorCodeInternal    = "INTERNAL_ERROR"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeTimeout     = "TIMEOUT"
)

var codeStatus = map[string]int{
	ErrorCodeBadRequest:  http.StatusBadRequest,
	ErrorCodeValidation:  http.StatusBadRequest,
	ErrorCodeNotFound:    http.StatusNotFound,
	ErrorCodeConflict:    http.StatusConflict,
	ErrorCodeInternal:    http.StatusInternalServerError,
	ErrorCodeUnavailable: http.StatusServiceUnavailable,
	ErrorCodeTimeout:     http.StatusServiceUnavailable,
}

// ErrorResponse is the body of every failed /api/v1 call. TraceID matches
// the OpenTelemetry trace of the request when one was recorded.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail names what went wrong. Details maps request fields to their
// problems and is only set for VALIDATION_ERROR.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func NewErrorResponse(code, message string) *ErrorResponse {
	return NewErrorResponseWithDetails(code, message, nil)
}

func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// WithTraceID sets the trace id and returns e for chaining.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode returns the status for code. Unknown codes are 500.
func HTTPStatusFromCode(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
