// Package notify delivers collection and storage notices to the user: a
// bounded feed the HTTP API drains, desktop toasts, and the log.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// Feed keeps the most recent notices in arrival order. Once full, the oldest
// notice is dropped. Safe for concurrent use.
type Feed struct {
	mu    sync.Mutex
	items []domain.Notification
	size  int
	now   func() time.Time
}

// NewFeed returns a feed holding at most size notices (minimum 1).
func NewFeed(size int) *Feed {
	if size < 1 {
		size = 1
	}

	return &Feed{
		items: make([]domain.Notification, 0, size),
		size:  size,
		now:   time.Now,
	}
}

// Notify implements ports.Notifier.
func (f *Feed) Notify(_ context.Context, n domain.Notification) {
	if n.At.IsZero() {
		n.At = f.now()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == f.size {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Drain returns every pending notice, oldest first, and empties the feed.
func (f *Feed) Drain() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Notification, len(f.items))
	copy(out, f.items)
	f.items = f.items[:0]

	return out
}

// Len returns the number of pending notices.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
