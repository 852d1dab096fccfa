package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

// Write check sentinel. Written then removed on every candidate; never left behind.
const (
	sentinelKey   = "__storage_test__"
	sentinelValue = "test"
)

// StorageKind names the backend a StorageHandle is bound to.
type StorageKind string

const (
	// StorageNone means no backend passed its write check; the collection is memory-only.
	StorageNone StorageKind = "none"

	// StoragePrimary is the persistent store that survives restarts.
	StoragePrimary StorageKind = "primary"

	// StorageFallback is the volatile store that lasts for the process lifetime.
	StorageFallback StorageKind = "fallback"
)

// StorageHandle is the outcome of negotiation: a kind and, unless the kind is
// StorageNone, the store to read and write through.
type StorageHandle struct {
	kind  StorageKind
	store ports.KeyValueStore
}

// NullHandle returns the handle used when no store is usable.
func NullHandle() StorageHandle {
	return StorageHandle{kind: StorageNone}
}

// Kind returns the backend kind.
func (h StorageHandle) Kind() StorageKind {
	if h.store == nil {
		return StorageNone
	}
	return h.kind
}

// Store returns the bound store, or nil for the null handle.
func (h StorageHandle) Store() ports.KeyValueStore {
	return h.store
}

// IsNull reports whether persistence is disabled for this handle.
func (h StorageHandle) IsNull() bool {
	return h.store == nil
}

// StoreOpener lazily produces a store. An error counts as a failed write check.
type StoreOpener func(ctx context.Context) (ports.KeyValueStore, error)

// StaticStore wraps an already-open store as a StoreOpener.
func StaticStore(store ports.KeyValueStore) StoreOpener {
	return func(context.Context) (ports.KeyValueStore, error) {
		if store == nil {
			return nil, errors.New("store is not configured")
		}
		return store, nil
	}
}

// StorageNegotiatorConfig lists the candidates in priority order. A nil
// opener disables that candidate.
type StorageNegotiatorConfig struct {
	Primary  StoreOpener
	Fallback StoreOpener
	Logger   *slog.Logger
}

// StorageNegotiator picks the first store that accepts a write and a delete.
// Opened stores are cached so renegotiation checks them again without reopening.
type StorageNegotiator struct {
	candidates []candidate
	logger     *slog.Logger

	mu     sync.Mutex
	opened map[StorageKind]ports.KeyValueStore
}

type candidate struct {
	kind      StorageKind
	open      StoreOpener
	failLevel slog.Level
}

// NewStorageNegotiator creates a negotiator. Defaults logger to slog.Default() if nil.
func NewStorageNegotiator(cfg StorageNegotiatorConfig) *StorageNegotiator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var candidates []candidate
	if cfg.Primary != nil {
		candidates = append(candidates, candidate{kind: StoragePrimary, open: cfg.Primary, failLevel: slog.LevelWarn})
	}
	if cfg.Fallback != nil {
		candidates = append(candidates, candidate{kind: StorageFallback, open: cfg.Fallback, failLevel: slog.LevelError})
	}

	return &StorageNegotiator{
		candidates: candidates,
		logger:     logger.With(slog.String("component", "app.StorageNegotiator")),
		opened:     make(map[StorageKind]ports.KeyValueStore),
	}
}

// Acquire checks each candidate in order and returns a handle to the first
// that passes. Later candidates are not touched. Failures are logged and
// never returned; with no usable candidate the null handle comes back.
func (n *StorageNegotiator) Acquire(ctx context.Context) StorageHandle {
	for _, c := range n.candidates {
		store, err := n.storeFor(ctx, c)
		if err == nil {
			err = checkWritable(ctx, store)
		}

		if err != nil {
			n.logger.Log(ctx, c.failLevel, "storage candidate unavailable",
				slog.String("kind", string(c.kind)),
				slog.Any("error", err),
			)
			continue
		}

		n.logger.InfoContext(ctx, "storage negotiated",
			slog.String("kind", string(c.kind)),
			slog.String("backend", store.Name()),
		)

		return StorageHandle{kind: c.kind, store: store}
	}

	n.logger.ErrorContext(ctx, "no storage available, liked quotes will not persist")

	return NullHandle()
}

// Close closes every opened store that implements io.Closer.
func (n *StorageNegotiator) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var errs []error
	for kind, store := range n.opened {
		if closer, ok := store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s store: %w", kind, err))
			}
		}
		delete(n.opened, kind)
	}

	return errors.Join(errs...)
}

func (n *StorageNegotiator) storeFor(ctx context.Context, c candidate) (ports.KeyValueStore, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if store, ok := n.opened[c.kind]; ok {
		return store, nil
	}

	store, err := c.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", c.kind, err)
	}
	if store == nil {
		return nil, fmt.Errorf("opening %s store: no store returned", c.kind)
	}

	n.opened[c.kind] = store

	return store, nil
}

// checkWritable writes and removes the sentinel. If the write lands but the
// removal fails, the check fails; the sentinel may then remain until the next one.
func checkWritable(ctx context.Context, store ports.KeyValueStore) error {
	if err := store.SetItem(ctx, sentinelKey, sentinelValue); err != nil {
		return fmt.Errorf("sentinel write: %w", err)
	}

	if err := store.RemoveItem(ctx, sentinelKey); err != nil {
		return fmt.Errorf("sentinel cleanup: %w", err)
	}

	return nil
}
