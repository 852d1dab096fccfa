// Package domain contains core business entities and rules.
package domain

import "strings"

// Quote is a motivational quotation. Identity is ID; Content and Author are
// display-only and never change after the quote is created.
type Quote struct {
	// ID is the unique identifier for this quote.
	ID string

	// Content is the text of the quote.
	Content string

	// Author is who said or wrote the quote.
	Author string
}

// Validate reports the first empty field as a ValidationError.
func (q Quote) Validate() error {
	switch {
	case strings.TrimSpace(q.ID) == "":
		return NewValidationError("id", "must not be empty")
	case strings.TrimSpace(q.Content) == "":
		return NewValidationError("content", "must not be empty")
	case strings.TrimSpace(q.Author) == "":
		return NewValidationError("author", "must not be empty")
	}

	return nil
}

// IndexOf returns the position of the quote with the given id, or -1.
func IndexOf(quotes []Quote, id string) int {
	for i := range quotes {
		if quotes[i].ID == id {
			return i
		}
	}

	return -1
}
