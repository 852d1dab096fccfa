// Package clients is the resilient HTTP client behind the quote API adapter:
// retries with backoff, a circuit breaker, tracing and request metrics.
package clients

import (
	"errors"
	"fmt"
)

var (
	// ErrCircuitOpen means the breaker refused the call without sending it.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded matches every *RetryError.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError is a 5xx answer. The client retries it like a transport error.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d", e.Status)
}

// RetryError is returned by Do when the last attempt failed. Last is the
// failure of that attempt and is reachable through errors.As and errors.Is.
type RetryError struct {
	Attempts int
	Last     error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("%s after %d attempt(s): %v", ErrMaxRetriesExceeded, e.Attempts, e.Last)
}

func (e *RetryError) Is(target error) bool {
	return target == ErrMaxRetriesExceeded
}

func (e *RetryError) Unwrap() error {
	return e.Last
}
