package app

import (
	"fmt"
	"strings"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// MsgEmptyCollection is shown instead of an empty listing.
const MsgEmptyCollection = "You haven't liked any quotes yet!"

// FormatCollection renders the liked quotes as plain text, one block per
// quote separated by a blank line, under a "Your Liked Quotes (n)" heading.
func FormatCollection(quotes []domain.Quote) string {
	if len(quotes) == 0 {
		return MsgEmptyCollection
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your Liked Quotes (%d)\n", len(quotes))

	for _, q := range quotes {
		fmt.Fprintf(&b, "\n• “%s”\n  - %s\n", q.Content, q.Author)
	}

	return b.String()
}
