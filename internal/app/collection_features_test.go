package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"testing"

	"github.com/cucumber/godog"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/storage/memory"
	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// quoteClientFunc adapts a function to ports.QuoteClient.
type quoteClientFunc func(ctx context.Context) (*domain.Quote, error)

func (f quoteClientFunc) GetRandomQuote(ctx context.Context) (*domain.Quote, error) { return f(ctx) }

// collectionWorld holds one scenario's stores and service.
type collectionWorld struct {
	primary         *memory.Store
	fallback        *memory.Store
	primaryBlocked  bool
	fallbackBlocked bool
	remote          *domain.Quote
	notices         *noticeRecorder
	svc             *MotivationService
	current         domain.Quote
}

func newCollectionWorld() *collectionWorld {
	return &collectionWorld{
		primary:  memory.New(0),
		fallback: memory.New(0),
		notices:  &noticeRecorder{},
	}
}

// blocked returns a store too small to hold even the sentinel.
func blocked() *memory.Store {
	return memory.New(1)
}

func (w *collectionWorld) primaryStoreIs(state string) error {
	w.primaryBlocked = state == "blocked"
	return nil
}

func (w *collectionWorld) fallbackStoreIs(state string) error {
	w.fallbackBlocked = state == "blocked"
	return nil
}

func (w *collectionWorld) savedCollectionIs(raw string) error {
	return w.primary.SetItem(context.Background(), DefaultCollectionKey, raw)
}

func (w *collectionWorld) quoteAPIReturns(id, content, author string) error {
	w.remote = &domain.Quote{ID: id, Content: content, Author: author}
	return nil
}

func (w *collectionWorld) quoteAPIIsDown() error {
	w.remote = nil
	return nil
}

func (w *collectionWorld) appStarts() error {
	primary, fallback := w.primary, w.fallback
	if w.primaryBlocked {
		primary = blocked()
	}
	if w.fallbackBlocked {
		fallback = blocked()
	}

	quotes := NewQuoteService(QuoteServiceConfig{
		QuoteClient: quoteClientFunc(func(context.Context) (*domain.Quote, error) {
			if w.remote == nil {
				return nil, domain.NewUnavailableError("quote-service", "connection refused")
			}
			q := *w.remote
			return &q, nil
		}),
		Logger: discardLogger(),
	})

	w.svc = NewMotivationService(MotivationServiceConfig{
		Storage: NewStorageNegotiator(StorageNegotiatorConfig{
			Primary:  StaticStore(primary),
			Fallback: StaticStore(fallback),
			Logger:   discardLogger(),
		}),
		Quotes:   quotes,
		Notifier: w.notices,
		Logger:   discardLogger(),
	})

	current, err := w.svc.Start(context.Background())
	w.current = current
	return err
}

func (w *collectionWorld) appRestarts() error {
	// Session storage does not outlive the process.
	w.fallback = memory.New(0)
	return w.appStarts()
}

func (w *collectionWorld) storageShouldBe(kind string) error {
	if got := w.svc.StorageKind(); string(got) != kind {
		return fmt.Errorf("expected storage %q, got %q", kind, got)
	}
	return nil
}

func (w *collectionWorld) noticeShouldHaveBeenShown(kind string) error {
	if !slices.Contains(w.notices.kinds(), domain.NotificationKind(kind)) {
		return fmt.Errorf("no %q notice in %v", kind, w.notices.kinds())
	}
	return nil
}

func (w *collectionWorld) likeCurrentQuote() error {
	_, err := w.svc.ToggleLike(context.Background(), w.current)
	return err
}

func (w *collectionWorld) likeQuote(id, content, author string) error {
	_, err := w.svc.ToggleLike(context.Background(), domain.Quote{ID: id, Content: content, Author: author})
	return err
}

func (w *collectionWorld) clearCollection() error {
	return w.svc.ClearCollection(context.Background())
}

func (w *collectionWorld) collectionShouldContain(n int) error {
	if got := len(w.svc.GetCollection()); got != n {
		return fmt.Errorf("expected %d liked quotes, got %d", n, got)
	}
	return nil
}

func (w *collectionWorld) currentQuoteShouldBeLiked() error {
	if !w.svc.IsCurrentLiked() {
		return errors.New("current quote is not liked")
	}
	return nil
}

func (w *collectionWorld) currentQuoteShouldNotBeLiked() error {
	if w.svc.IsCurrentLiked() {
		return errors.New("current quote is liked")
	}
	return nil
}

func (w *collectionWorld) currentQuoteShouldBeFallback() error {
	if !IsFallbackQuote(w.current.ID) {
		return fmt.Errorf("quote %q is not a fallback quote", w.current.ID)
	}
	return nil
}

func (w *collectionWorld) savedCollectionShouldBeRemoved() error {
	_, found, err := w.primary.GetItem(context.Background(), DefaultCollectionKey)
	if err != nil {
		return err
	}
	if found {
		return errors.New("saved collection is still present")
	}
	return nil
}

func (w *collectionWorld) firstLikedShouldBe(id string) error {
	items := w.svc.GetCollection()
	if len(items) == 0 || items[0].ID != id {
		return fmt.Errorf("expected %q first, got %v", id, items)
	}
	return nil
}

// initializeCollectionScenario registers step definitions for each scenario.
func initializeCollectionScenario(ctx *godog.ScenarioContext) {
	w := newCollectionWorld()

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*w = *newCollectionWorld()
		return ctx, nil
	})

	ctx.Step(`^the primary store is (available|blocked)$`, w.primaryStoreIs)
	ctx.Step(`^the fallback store is (available|blocked)$`, w.fallbackStoreIs)
	ctx.Step(`^the saved collection is "([^"]*)"$`, w.savedCollectionIs)
	ctx.Step(`^the quote API returns quote "([^"]*)" "([^"]*)" by "([^"]*)"$`, w.quoteAPIReturns)
	ctx.Step(`^the quote API is down$`, w.quoteAPIIsDown)
	ctx.Step(`^the app starts$`, w.appStarts)
	ctx.Step(`^the app restarts$`, w.appRestarts)
	ctx.Step(`^the storage should be "([^"]*)"$`, w.storageShouldBe)
	ctx.Step(`^a "([^"]*)" notice should have been shown$`, w.noticeShouldHaveBeenShown)
	ctx.Step(`^I like the current quote$`, w.likeCurrentQuote)
	ctx.Step(`^I like the quote "([^"]*)" "([^"]*)" by "([^"]*)"$`, w.likeQuote)
	ctx.Step(`^I clear the collection$`, w.clearCollection)
	ctx.Step(`^the collection should contain (\d+) quotes?$`, w.collectionShouldContain)
	ctx.Step(`^the current quote should be liked$`, w.currentQuoteShouldBeLiked)
	ctx.Step(`^the current quote should not be liked$`, w.currentQuoteShouldNotBeLiked)
	ctx.Step(`^the current quote should be a fallback quote$`, w.currentQuoteShouldBeFallback)
	ctx.Step(`^the saved collection should be removed$`, w.savedCollectionShouldBeRemoved)
	ctx.Step(`^the first liked quote should be "([^"]*)"$`, w.firstLikedShouldBe)
}

// TestFeatures runs the GoDog BDD scenarios for the collection.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeCollectionScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
