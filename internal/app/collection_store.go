package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

// DefaultCollectionKey is where the collection is persisted. The suffix is
// the schema version; an incompatible change moves to a new key.
const DefaultCollectionKey = "dailyMotivationLiked_v4"

// storedQuote is the persisted element shape.
type storedQuote struct {
	ID      string `json:"id"      validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
	Author  string `json:"author"  validate:"notblank"`
}

// SaveError reports that a mutation was applied in memory but could not be
// written to the store. Memory is not rolled back.
type SaveError struct {
	Err error
}

// Error implements the error interface.
func (e *SaveError) Error() string {
	return fmt.Sprintf("saving collection: %v", e.Err)
}

// Unwrap returns the storage failure.
func (e *SaveError) Unwrap() error {
	return e.Err
}

// IsSaveError reports whether err only signals a failed write.
func IsSaveError(err error) bool {
	var saveErr *SaveError
	return errors.As(err, &saveErr)
}

// CollectionStoreConfig configures a CollectionStore.
type CollectionStoreConfig struct {
	// Key is the storage key. Defaults to DefaultCollectionKey.
	Key string

	// Strict drops elements that fail validation and later duplicates of an id
	// while hydrating. Lenient mode keeps every JSON object as loaded.
	Strict bool

	Logger *slog.Logger
}

// CollectionStore owns the liked quotes and mirrors them into the bound store.
// It is not safe for concurrent use; MotivationService serializes access.
type CollectionStore struct {
	key      string
	strict   bool
	validate *validator.Validate
	logger   *slog.Logger

	items  []domain.Quote
	handle StorageHandle
}

// NewCollectionStore returns an empty store bound to the null handle.
func NewCollectionStore(cfg CollectionStoreConfig) *CollectionStore {
	key := cfg.Key
	if key == "" {
		key = DefaultCollectionKey
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank is registered on a fresh validator; registration only fails for an empty tag.
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &CollectionStore{
		key:      key,
		strict:   cfg.Strict,
		validate: v,
		logger:   logger.With(slog.String("component", "app.CollectionStore")),
		items:    []domain.Quote{},
		handle:   NullHandle(),
	}
}

// SetStrict switches hydrate validation mode.
func (s *CollectionStore) SetStrict(strict bool) {
	s.strict = strict
}

// Key returns the storage key.
func (s *CollectionStore) Key() string {
	return s.key
}

// Handle returns the bound storage handle.
func (s *CollectionStore) Handle() StorageHandle {
	return s.handle
}

// Hydrate binds handle, replaces the in-memory items with what the store
// holds, and returns a copy. Missing or empty data yields an empty collection.
// Unreadable or wrongly shaped data is deleted and yields an empty collection.
func (s *CollectionStore) Hydrate(ctx context.Context, handle StorageHandle) []domain.Quote {
	s.handle = handle
	s.items = s.load(ctx)

	return s.Items()
}

func (s *CollectionStore) load(ctx context.Context) []domain.Quote {
	if s.handle.IsNull() {
		return []domain.Quote{}
	}

	store := s.handle.Store()

	raw, found, err := store.GetItem(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "reading saved collection failed, starting empty",
			slog.String("backend", store.Name()),
			slog.Any("error", err),
		)
		s.discard(ctx)
		return []domain.Quote{}
	}

	if !found || raw == "" {
		s.logger.DebugContext(ctx, "no saved collection found")
		return []domain.Quote{}
	}

	var elements []json.RawMessage
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' || json.Unmarshal(trimmed, &elements) != nil {
		s.logger.WarnContext(ctx, "saved collection is not a JSON array, clearing",
			slog.String("backend", store.Name()),
			slog.Int("bytes", len(raw)),
		)
		s.discard(ctx)
		return []domain.Quote{}
	}

	items := make([]domain.Quote, 0, len(elements))
	seen := make(map[string]struct{}, len(elements))

	for i, element := range elements {
		stored, ok := decodeElement(element)
		if !ok {
			s.logger.WarnContext(ctx, "dropping saved element that is not an object", slog.Int("index", i))
			continue
		}

		if s.strict {
			if err := s.validate.Struct(stored); err != nil {
				s.logger.WarnContext(ctx, "dropping invalid saved quote",
					slog.Int("index", i),
					slog.String("quote_id", stored.ID),
					slog.Any("error", err),
				)
				continue
			}

			if _, dup := seen[stored.ID]; dup {
				s.logger.WarnContext(ctx, "dropping duplicate saved quote",
					slog.Int("index", i),
					slog.String("quote_id", stored.ID),
				)
				continue
			}
			seen[stored.ID] = struct{}{}
		}

		s.logger.Log(ctx, logging.LevelTrace, "hydrated quote", slog.String("quote_id", stored.ID))
		items = append(items, domain.Quote(stored))
	}

	s.logger.DebugContext(ctx, "loaded saved collection", slog.Int("count", len(items)))

	return items
}

func (s *CollectionStore) discard(ctx context.Context) {
	if err := s.handle.Store().RemoveItem(ctx, s.key); err != nil {
		s.logger.WarnContext(ctx, "removing unreadable collection failed", slog.Any("error", err))
	}
}

// decodeElement maps one JSON object onto storedQuote. String or numeric
// values are accepted for each field, and "_id" stands in for a missing "id".
// Anything that is not an object is rejected.
func decodeElement(raw json.RawMessage) (storedQuote, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return storedQuote{}, false
	}

	id := scalarString(fields["id"])
	if id == "" {
		id = scalarString(fields["_id"])
	}

	return storedQuote{
		ID:      id,
		Content: scalarString(fields["content"]),
		Author:  scalarString(fields["author"]),
	}, true
}

func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	// json.Number keeps the digits as written; a float64 would round ids
	// past 2^53.
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String()
	}

	return ""
}

// Persist overwrites the stored collection with the in-memory items. With the
// null handle it does nothing. An empty collection is written as [].
func (s *CollectionStore) Persist(ctx context.Context) error {
	if s.handle.IsNull() {
		return nil
	}

	stored := make([]storedQuote, len(s.items))
	for i, q := range s.items {
		stored[i] = storedQuote(q)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return &SaveError{Err: fmt.Errorf("encoding collection: %w", err)}
	}

	if err := s.handle.Store().SetItem(ctx, s.key, string(data)); err != nil {
		return &SaveError{Err: err}
	}

	s.logger.Log(ctx, logging.LevelTrace, "saved collection",
		slog.Int("count", len(s.items)),
		slog.Int("bytes", len(data)),
	)

	return nil
}

// Rebind points the store at handle and writes the in-memory items there.
func (s *CollectionStore) Rebind(ctx context.Context, handle StorageHandle) error {
	s.handle = handle
	return s.Persist(ctx)
}

// Add prepends quote and persists. A quote already present returns a
// ConflictError and an incomplete quote a ValidationError; neither changes
// anything. A *SaveError means the quote was added but not saved.
func (s *CollectionStore) Add(ctx context.Context, quote domain.Quote) error {
	if err := quote.Validate(); err != nil {
		return err
	}

	if s.Contains(quote.ID) {
		return domain.NewConflictError("quote", fmt.Sprintf("%q already in collection", quote.ID))
	}

	s.items = append([]domain.Quote{quote}, s.items...)

	return s.Persist(ctx)
}

// Remove drops the quote with id, if present, and persists either way.
func (s *CollectionStore) Remove(ctx context.Context, id string) error {
	kept := s.items[:0:0]
	for _, q := range s.items {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	s.items = kept

	return s.Persist(ctx)
}

// Clear empties the collection and persists.
func (s *CollectionStore) Clear(ctx context.Context) error {
	s.items = []domain.Quote{}
	return s.Persist(ctx)
}

// Contains reports whether a quote with id is in the collection.
func (s *CollectionStore) Contains(id string) bool {
	return domain.IndexOf(s.items, id) >= 0
}

// Items returns a copy of the collection, most recently liked first.
func (s *CollectionStore) Items() []domain.Quote {
	out := make([]domain.Quote, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of liked quotes.
func (s *CollectionStore) Len() int {
	return len(s.items)
}
