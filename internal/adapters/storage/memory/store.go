// Package memory provides the fallback key-value store. Values live in the
// process and are gone when it exits, like a browser's session storage.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

const backendName = "memory"

// Store is a ports.KeyValueStore held in a map. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	items      map[string]string
	used       int64
	quotaBytes int64
}

// New returns an empty store. quotaBytes bounds the summed size of keys and
// values; zero or less disables the limit.
func New(quotaBytes int64) *Store {
	return &Store{
		items:      make(map[string]string),
		quotaBytes: quotaBytes,
	}
}

// Name implements ports.KeyValueStore and ports.HealthChecker.
func (s *Store) Name() string {
	return backendName
}

// GetItem implements ports.KeyValueStore.
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, domain.NewStorageError(backendName, "get", key, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	return value, ok, nil
}

// SetItem implements ports.KeyValueStore.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError(backendName, "set", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	size := entrySize(key, value)
	used := s.used
	if old, ok := s.items[key]; ok {
		used -= entrySize(key, old)
	}

	if s.quotaBytes > 0 && used+size > s.quotaBytes {
		return domain.NewStorageError(backendName, "set", key,
			fmt.Errorf("%w: %d byte limit", domain.ErrQuotaExceeded, s.quotaBytes))
	}

	s.items[key] = value
	s.used = used + size

	return nil
}

// RemoveItem implements ports.KeyValueStore.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError(backendName, "remove", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.items[key]; ok {
		s.used -= entrySize(key, old)
		delete(s.items, key)
	}

	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Check always reports degraded: the store works but nothing survives a restart.
// Implements ports.HealthChecker.
func (s *Store) Check(_ context.Context) error {
	return fmt.Errorf("%w: liked quotes are kept in memory only", ports.ErrDegraded)
}

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
