package notify

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/beeep"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

const (
	desktopTitle = "Daily Motivation"

	// maxDesktopMessage keeps toasts within what notification daemons
	// display. Counted in runes.
	maxDesktopMessage = 240
)

// desktopNotify is swapped in tests.
var desktopNotify = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Desktop raises an OS notification for warnings. Confirmations such as
// "Added to your collection" stay in the feed.
type Desktop struct {
	logger *slog.Logger
}

// NewDesktop returns a desktop notifier. A nil logger uses slog.Default().
func NewDesktop(logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktop{logger: logger.With(slog.String("component", "notify.Desktop"))}
}

// Notify implements ports.Notifier. Delivery failures are logged and dropped.
func (d *Desktop) Notify(ctx context.Context, n domain.Notification) {
	if !n.IsWarning() {
		return
	}

	if err := desktopNotify(desktopTitle, truncate(strings.TrimSpace(n.Message), maxDesktopMessage)); err != nil {
		d.logger.Log(ctx, logging.LevelTrace, "desktop notification failed",
			slog.String("kind", string(n.Kind)),
			slog.Any("error", err),
		)
	}
}

// truncate cuts s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)

	return string(runes[:n]) + "..."
}
