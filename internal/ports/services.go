// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// QuoteClient fetches quotes from a remote quote API.
//
// Key considerations:
//   - Handle timeouts via context deadline
//   - Map external errors to domain errors
//   - Normalize the provider's field names to domain.Quote
type QuoteClient interface {
	// GetRandomQuote retrieves one random quote.
	// Returns domain.ErrUnavailable if the service is unreachable or answers
	// with something that is not a quote.
	GetRandomQuote(ctx context.Context) (*domain.Quote, error)
}

// KeyValueStore is a synchronous string key-value store, the shape of a
// browser's localStorage. The collection persists through it and the storage
// negotiator checks it.
//
// Example usage:
//
//	if err := store.SetItem(ctx, "__storage_test__", "test"); err != nil {
//	    // not writable, try the next candidate
//	}
//	_ = store.RemoveItem(ctx, "__storage_test__")
type KeyValueStore interface {
	// Name identifies the backend in logs and health checks.
	Name() string

	// GetItem returns the value stored under key.
	// found is false, with a nil error, when the key is absent.
	GetItem(ctx context.Context, key string) (value string, found bool, err error)

	// SetItem stores value under key, overwriting any prior value.
	// Returns an error wrapping domain.ErrQuotaExceeded when the store is full.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// Notifier delivers user-facing notices: a toast feed, a desktop notification,
// a CLI warning line. Implementations must not block for long; the caller
// holds the collection lock.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, n domain.Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n domain.Notification) {
	f(ctx, n)
}

// Notifiers fans a notice out to every non-nil notifier in order.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(ctx context.Context, n domain.Notification) {
	for _, notifier := range ns {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}
