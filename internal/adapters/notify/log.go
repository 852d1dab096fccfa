package notify

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
)

// Log writes notices to the context logger: warnings at WARN, confirmations at DEBUG.
type Log struct{}

// Notify implements ports.Notifier.
func (Log) Notify(ctx context.Context, n domain.Notification) {
	level := slog.LevelDebug
	if n.IsWarning() {
		level = slog.LevelWarn
	}

	logging.FromContext(ctx).Log(ctx, level, "notification",
		slog.String("kind", string(n.Kind)),
		slog.String("message", n.Message),
	)
}
