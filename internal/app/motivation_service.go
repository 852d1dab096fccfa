package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

// Feature flags read by MotivationService.
const (
	// FlagStrictCollectionValidation drops invalid and duplicate elements on hydrate.
	FlagStrictCollectionValidation = "strict-collection-validation"

	// FlagLatestQuoteWins discards fetch results overtaken by a newer request.
	FlagLatestQuoteWins = "latest-quote-wins"
)

// User-facing notice texts.
const (
	MsgStorageUnavailable = "Storage blocked: liked quotes won't persist after this session ends."
	MsgStorageDegraded    = "Using session storage: liked quotes last until the app closes."
	MsgSaveFailed         = "Save failed: your collection is kept in memory only."
	MsgStorageFull        = "Storage is full: new likes are kept in memory only."
	MsgStorageRestored    = "Persistent storage is back: liked quotes will be saved."
	MsgAdded              = "Added to your collection"
	MsgRemovedToggle      = "Removed from collection"
	MsgRemoved            = "Quote removed"
	MsgCleared            = "Collection cleared"
)

// ErrSuperseded is returned by FetchNewQuote when a newer fetch started
// before this one finished.
var ErrSuperseded = domain.NewConflictError("quote", "superseded by a newer request")

// StorageAcquirer negotiates a storage handle. Implemented by *StorageNegotiator.
type StorageAcquirer interface {
	Acquire(ctx context.Context) StorageHandle
}

// QuoteFetcher returns the next quote to show. Implemented by *QuoteService.
type QuoteFetcher interface {
	Fetch(ctx context.Context) domain.Quote
}

// MotivationServiceConfig wires the service.
type MotivationServiceConfig struct {
	Storage StorageAcquirer
	Quotes  QuoteFetcher

	// Collection defaults to a store using CollectionKey.
	Collection    *CollectionStore
	CollectionKey string

	// Flags defaults to every flag taking its default value.
	Flags ports.FeatureFlags

	// Notifier receives user-facing notices. Optional.
	Notifier ports.Notifier

	// Metrics defaults to ports.NoopMetrics.
	Metrics ports.MotivationMetrics

	Logger *slog.Logger
}

// MotivationService is what presentation layers talk to. It owns the liked
// collection, the negotiated storage, and the currently displayed quote.
// Safe for concurrent use: collection operations are serialized and quote
// fetches run outside the lock.
type MotivationService struct {
	storage  StorageAcquirer
	quotes   QuoteFetcher
	flags    ports.FeatureFlags
	notifier ports.Notifier
	metrics  ports.MotivationMetrics
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	collection *CollectionStore

	latest    atomic.Uint64
	currentMu sync.RWMutex
	current   *domain.Quote
}

// NewMotivationService creates the service. Panics if Storage or Quotes is nil.
func NewMotivationService(cfg MotivationServiceConfig) *MotivationService {
	if cfg.Storage == nil {
		panic("app: MotivationServiceConfig.Storage is required")
	}
	if cfg.Quotes == nil {
		panic("app: MotivationServiceConfig.Quotes is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	collection := cfg.Collection
	if collection == nil {
		collection = NewCollectionStore(CollectionStoreConfig{Key: cfg.CollectionKey, Logger: logger})
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = ports.Notifiers{}
	}

	return &MotivationService{
		storage:    cfg.Storage,
		quotes:     cfg.Quotes,
		flags:      cfg.Flags,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "app.MotivationService")),
		now:        time.Now,
		collection: collection,
	}
}

// Open negotiates storage and hydrates the collection without fetching a
// quote. Storage problems are reported through the notifier, not as errors.
func (s *MotivationService) Open(ctx context.Context) StorageKind {
	handle := s.acquire(ctx)
	items := s.hydrate(ctx, handle)
	s.opened(ctx, handle, len(items))

	s.logger.InfoContext(ctx, "collection opened",
		slog.String("storage", string(handle.Kind())),
		slog.Int("liked", len(items)),
	)

	return handle.Kind()
}

// Start is Open plus the first quote fetch, run concurrently with hydration.
func (s *MotivationService) Start(ctx context.Context) (domain.Quote, error) {
	handle := s.acquire(ctx)

	items, quote, err := both(ctx,
		func(ctx context.Context) ([]domain.Quote, error) {
			return s.hydrate(ctx, handle), nil
		},
		s.FetchNewQuote,
	)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("starting motivation service: %w", err)
	}

	s.opened(ctx, handle, len(items))

	s.logger.InfoContext(ctx, "motivation service started",
		slog.String("storage", string(handle.Kind())),
		slog.Int("liked", len(items)),
		slog.String("quote_id", quote.ID),
	)

	return quote, nil
}

func (s *MotivationService) acquire(ctx context.Context) StorageHandle {
	handle := s.storage.Acquire(ctx)
	s.metrics.StorageSelected(string(handle.Kind()))

	return handle
}

func (s *MotivationService) hydrate(ctx context.Context, handle StorageHandle) []domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collection.SetStrict(s.flagEnabled(ctx, FlagStrictCollectionValidation, false))

	return s.collection.Hydrate(ctx, handle)
}

func (s *MotivationService) opened(ctx context.Context, handle StorageHandle, liked int) {
	s.metrics.CollectionSize(liked)
	s.notifyStorage(ctx, handle.Kind(), false)
}

// GetCollection returns a copy of the liked quotes, most recent first.
func (s *MotivationService) GetCollection() []domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.collection.Items()
}

// StorageKind reports the backend the collection is saved to.
func (s *MotivationService) StorageKind() StorageKind {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.collection.Handle().Kind()
}

// ToggleLike removes quote from the collection if present, otherwise adds it.
// liked is the state after the call. A failed save is reported through the
// notifier and does not fail the call.
func (s *MotivationService) ToggleLike(ctx context.Context, quote domain.Quote) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection.Contains(quote.ID) {
		err := s.collection.Remove(ctx, quote.ID)
		return false, s.afterMutation(ctx, err, MsgRemovedToggle)
	}

	err := s.collection.Add(ctx, quote)
	if err != nil && !IsSaveError(err) {
		return false, err
	}

	return true, s.afterMutation(ctx, err, MsgAdded)
}

// RemoveFromCollection drops the quote with id. Absent ids are not an error.
func (s *MotivationService) RemoveFromCollection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.afterMutation(ctx, s.collection.Remove(ctx, id), MsgRemoved)
}

// ClearCollection empties the collection.
func (s *MotivationService) ClearCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.afterMutation(ctx, s.collection.Clear(ctx), MsgCleared)
}

// afterMutation reports the outcome of a collection change. Save failures
// become notices; anything else is returned.
func (s *MotivationService) afterMutation(ctx context.Context, err error, msg string) error {
	s.metrics.CollectionSize(s.collection.Len())

	if IsSaveError(err) {
		s.saveFailed(ctx, "saving collection failed", err)
		return nil
	}
	if err != nil {
		return err
	}

	s.notify(ctx, domain.NotificationCollectionUpdated, msg)

	return nil
}

// saveFailed reports a write the store refused. A store over its quota
// gets its own notice.
func (s *MotivationService) saveFailed(ctx context.Context, msg string, err error) {
	full := domain.IsQuotaExceeded(err)

	s.metrics.SaveFailed()
	s.logger.ErrorContext(ctx, msg, slog.Any("error", err), slog.Bool("quota_exceeded", full))

	notice := MsgSaveFailed
	if full {
		notice = MsgStorageFull
	}
	s.notify(ctx, domain.NotificationSaveFailed, notice)
}

// FetchNewQuote fetches a quote and makes it current. Every call takes a new
// request token; when a newer call has started by the time this one resolves,
// the result is dropped and ErrSuperseded returned. With the latest-quote-wins
// flag off, whichever call resolves last sets the current quote.
func (s *MotivationService) FetchNewQuote(ctx context.Context) (domain.Quote, error) {
	token := s.latest.Add(1)

	quote := s.quotes.Fetch(ctx)

	s.currentMu.Lock()
	defer s.currentMu.Unlock()

	if s.flagEnabled(ctx, FlagLatestQuoteWins, true) && token != s.latest.Load() {
		s.logger.DebugContext(ctx, "dropping superseded quote",
			slog.Uint64("token", token),
			slog.String("quote_id", quote.ID),
		)
		return domain.Quote{}, ErrSuperseded
	}

	s.current = &quote

	return quote, nil
}

// CurrentQuote returns the displayed quote, if one has been fetched.
func (s *MotivationService) CurrentQuote() (domain.Quote, bool) {
	s.currentMu.RLock()
	defer s.currentMu.RUnlock()

	if s.current == nil {
		return domain.Quote{}, false
	}

	return *s.current, true
}

// IsCurrentLiked reports whether the displayed quote is in the collection.
func (s *MotivationService) IsCurrentLiked() bool {
	quote, ok := s.CurrentQuote()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.collection.Contains(quote.ID)
}

// RenegotiateStorage checks the stores again. When the backend kind changes,
// the in-memory collection is written to the new backend and the matching
// notice is sent. Returns the kind in effect afterwards.
func (s *MotivationService) RenegotiateStorage(ctx context.Context) StorageKind {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.collection.Handle().Kind()
	handle := s.storage.Acquire(ctx)
	s.metrics.StorageSelected(string(handle.Kind()))

	if handle.Kind() == previous {
		s.logger.DebugContext(ctx, "storage unchanged", slog.String("storage", string(previous)))
		return previous
	}

	s.logger.InfoContext(ctx, "storage changed",
		slog.String("from", string(previous)),
		slog.String("to", string(handle.Kind())),
	)

	if err := s.collection.Rebind(ctx, handle); err != nil {
		s.saveFailed(ctx, "saving collection to new storage failed", err)
	}

	s.notifyStorage(ctx, handle.Kind(), previous != StoragePrimary)

	return handle.Kind()
}

func (s *MotivationService) notifyStorage(ctx context.Context, kind StorageKind, restored bool) {
	switch kind {
	case StorageNone:
		s.notify(ctx, domain.NotificationStorageUnavailable, MsgStorageUnavailable)
	case StorageFallback:
		s.notify(ctx, domain.NotificationStorageDegraded, MsgStorageDegraded)
	case StoragePrimary:
		if restored {
			s.notify(ctx, domain.NotificationStorageRestored, MsgStorageRestored)
		}
	}
}

func (s *MotivationService) notify(ctx context.Context, kind domain.NotificationKind, msg string) {
	s.notifier.Notify(ctx, domain.Notification{Kind: kind, Message: msg, At: s.now()})
}

func (s *MotivationService) flagEnabled(ctx context.Context, flag string, def bool) bool {
	if s.flags == nil {
		return def
	}

	return s.flags.IsEnabled(ctx, flag, def)
}

// StorageHealth returns a checker for the negotiated storage. Primary storage
// is healthy when its backend answers; fallback or no storage is degraded.
func (s *MotivationService) StorageHealth() ports.HealthChecker {
	return storageHealth{svc: s}
}

type storageHealth struct {
	svc *MotivationService
}

func (storageHealth) Name() string {
	return "storage"
}

func (h storageHealth) Check(ctx context.Context) error {
	h.svc.mu.Lock()
	handle := h.svc.collection.Handle()
	h.svc.mu.Unlock()

	switch handle.Kind() {
	case StorageNone:
		return fmt.Errorf("%w: no storage available, liked quotes live in memory", ports.ErrDegraded)
	case StorageFallback:
		return fmt.Errorf("%w: liked quotes are kept in volatile storage", ports.ErrDegraded)
	}

	checker, ok := handle.Store().(interface{ Check(context.Context) error })
	if !ok {
		return nil
	}

	if err := checker.Check(ctx); err != nil && !errors.Is(err, ports.ErrDegraded) {
		return fmt.Errorf("primary storage: %w", err)
	}

	return nil
}
