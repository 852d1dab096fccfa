package app

import "github.com/jsamuelsen/daily-motivation/internal/domain"

// fallbackQuotes is shown when the quote API cannot be reached.
var fallbackQuotes = []domain.Quote{
	{
		ID:      "f1",
		Content: "The only way to do great work is to love what you do.",
		Author:  "Steve Jobs",
	},
	{
		ID:      "f2",
		Content: "Everything you’ve ever wanted is sitting on the other side of fear.",
		Author:  "George Addair",
	},
	{
		ID:      "f3",
		Content: "Success is not final, failure is not fatal: it is the courage to continue that counts.",
		Author:  "Winston Churchill",
	},
}

// IsFallbackQuote reports whether id belongs to the local set, so callers
// can mark a quote shown while the quote API was unreachable.
func IsFallbackQuote(id string) bool {
	return domain.IndexOf(fallbackQuotes, id) >= 0
}
