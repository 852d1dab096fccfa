package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/storage/memory"
	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/mocks"
	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

// workingStore returns a mock that accepts the write check.
func workingStore(t *testing.T, name string) *mocks.MockKeyValueStore {
	t.Helper()

	store := mocks.NewMockKeyValueStore(t)
	store.EXPECT().Name().Return(name).Maybe()
	store.EXPECT().SetItem(mock.Anything, sentinelKey, sentinelValue).Return(nil)
	store.EXPECT().RemoveItem(mock.Anything, sentinelKey).Return(nil)

	return store
}

func TestStorageNegotiator_Acquire(t *testing.T) {
	quotaErr := domain.NewStorageError("sqlite", "set", sentinelKey, domain.ErrQuotaExceeded)

	tests := []struct {
		name     string
		primary  func(t *testing.T) StoreOpener
		fallback func(t *testing.T) StoreOpener
		wantKind StorageKind
	}{
		{
			name: "primary wins and fallback is never opened",
			primary: func(t *testing.T) StoreOpener {
				return StaticStore(workingStore(t, "sqlite"))
			},
			fallback: func(t *testing.T) StoreOpener {
				return func(context.Context) (ports.KeyValueStore, error) {
					t.Fatal("fallback must not be opened when primary works")
					return nil, nil
				}
			},
			wantKind: StoragePrimary,
		},
		{
			name: "primary write fails, fallback chosen",
			primary: func(t *testing.T) StoreOpener {
				store := mocks.NewMockKeyValueStore(t)
				store.EXPECT().SetItem(mock.Anything, sentinelKey, sentinelValue).Return(quotaErr)
				return StaticStore(store)
			},
			fallback: func(t *testing.T) StoreOpener {
				return StaticStore(workingStore(t, "memory"))
			},
			wantKind: StorageFallback,
		},
		{
			name: "primary cleanup fails, fallback chosen",
			primary: func(t *testing.T) StoreOpener {
				store := mocks.NewMockKeyValueStore(t)
				store.EXPECT().SetItem(mock.Anything, sentinelKey, sentinelValue).Return(nil)
				store.EXPECT().RemoveItem(mock.Anything, sentinelKey).Return(errors.New("read-only"))
				return StaticStore(store)
			},
			fallback: func(t *testing.T) StoreOpener {
				return StaticStore(workingStore(t, "memory"))
			},
			wantKind: StorageFallback,
		},
		{
			name: "primary cannot be opened, fallback chosen",
			primary: func(*testing.T) StoreOpener {
				return func(context.Context) (ports.KeyValueStore, error) {
					return nil, errors.New("permission denied")
				}
			},
			fallback: func(t *testing.T) StoreOpener {
				return StaticStore(workingStore(t, "memory"))
			},
			wantKind: StorageFallback,
		},
		{
			name: "both fail, null handle",
			primary: func(t *testing.T) StoreOpener {
				store := mocks.NewMockKeyValueStore(t)
				store.EXPECT().SetItem(mock.Anything, sentinelKey, sentinelValue).Return(quotaErr)
				return StaticStore(store)
			},
			fallback: func(t *testing.T) StoreOpener {
				store := mocks.NewMockKeyValueStore(t)
				store.EXPECT().SetItem(mock.Anything, sentinelKey, sentinelValue).Return(errors.New("denied"))
				return StaticStore(store)
			},
			wantKind: StorageNone,
		},
		{
			name:     "no candidates configured",
			primary:  func(*testing.T) StoreOpener { return nil },
			fallback: func(*testing.T) StoreOpener { return nil },
			wantKind: StorageNone,
		},
		{
			name:    "nil store counts as a failed candidate",
			primary: func(*testing.T) StoreOpener { return StaticStore(nil) },
			fallback: func(t *testing.T) StoreOpener {
				return StaticStore(workingStore(t, "memory"))
			},
			wantKind: StorageFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			negotiator := NewStorageNegotiator(StorageNegotiatorConfig{
				Primary:  tt.primary(t),
				Fallback: tt.fallback(t),
				Logger:   discardLogger(),
			})

			handle := negotiator.Acquire(context.Background())

			assert.Equal(t, tt.wantKind, handle.Kind())
			assert.Equal(t, tt.wantKind == StorageNone, handle.IsNull())
		})
	}
}

func TestStorageNegotiator_CheckLeavesNoSentinel(t *testing.T) {
	store := memory.New(0)

	negotiator := NewStorageNegotiator(StorageNegotiatorConfig{
		Primary: StaticStore(store),
		Logger:  discardLogger(),
	})

	handle := negotiator.Acquire(context.Background())
	require.Equal(t, StoragePrimary, handle.Kind())
	assert.Same(t, store, handle.Store())

	_, found, err := store.GetItem(context.Background(), sentinelKey)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, store.Len())
}

func TestStorageNegotiator_ReusesOpenedStores(t *testing.T) {
	opens := 0
	store := memory.New(0)

	negotiator := NewStorageNegotiator(StorageNegotiatorConfig{
		Primary: func(context.Context) (ports.KeyValueStore, error) {
			opens++
			return store, nil
		},
		Logger: discardLogger(),
	})

	first := negotiator.Acquire(context.Background())
	second := negotiator.Acquire(context.Background())

	assert.Equal(t, 1, opens)
	assert.Same(t, first.Store(), second.Store())
}

func TestStorageNegotiator_RetriesOpenAfterFailure(t *testing.T) {
	opens := 0
	store := memory.New(0)

	negotiator := NewStorageNegotiator(StorageNegotiatorConfig{
		Primary: func(context.Context) (ports.KeyValueStore, error) {
			opens++
			if opens == 1 {
				return nil, errors.New("locked")
			}
			return store, nil
		},
		Logger: discardLogger(),
	})

	assert.True(t, negotiator.Acquire(context.Background()).IsNull())
	assert.Equal(t, StoragePrimary, negotiator.Acquire(context.Background()).Kind())
	assert.Equal(t, 2, opens)
}

type closingStore struct {
	*memory.Store
	closed bool
	err    error
}

func (c *closingStore) Close() error {
	c.closed = true
	return c.err
}

func TestStorageNegotiator_Close(t *testing.T) {
	primary := &closingStore{Store: memory.New(0), err: errors.New("disk gone")}

	negotiator := NewStorageNegotiator(StorageNegotiatorConfig{
		Primary: StaticStore(primary),
		Logger:  discardLogger(),
	})
	negotiator.Acquire(context.Background())

	err := negotiator.Close()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.True(t, primary.closed)

	// A second close has nothing left to close.
	assert.NoError(t, negotiator.Close())
}

func TestStorageHandle_Null(t *testing.T) {
	handle := NullHandle()

	assert.True(t, handle.IsNull())
	assert.Equal(t, StorageNone, handle.Kind())
	assert.Nil(t, handle.Store())

	var zero StorageHandle
	assert.Equal(t, StorageNone, zero.Kind())
}
