package dto

import (
	"time"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// QuoteResponse is a quote as returned by the API.
type QuoteResponse struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Author  string `json:"author"`

	// Offline marks a local quote shown because the quote API failed.
	Offline bool `json:"offline,omitempty"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{ID: q.ID, Content: q.Content, Author: q.Author}
}

// CurrentQuoteResponse is the displayed quote and whether it is liked.
type CurrentQuoteResponse struct {
	Quote QuoteResponse `json:"quote"`
	Liked bool          `json:"liked"`
}

// CollectionResponse lists the liked quotes, most recent first.
type CollectionResponse struct {
	Storage string          `json:"storage"`
	Count   int             `json:"count"`
	Quotes  []QuoteResponse `json:"quotes"`
}

// NewCollectionResponse converts the collection. Quotes is never null.
func NewCollectionResponse(storage string, quotes []domain.Quote) CollectionResponse {
	out := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = NewQuoteResponse(q)
	}

	return CollectionResponse{Storage: storage, Count: len(out), Quotes: out}
}

// ToggleLikeRequest is the body of POST /api/v1/collection/toggle.
type ToggleLikeRequest struct {
	ID      string `json:"id"      validate:"required,quoteid"`
	Content string `json:"content" validate:"required,notempty"`
	Author  string `json:"author"  validate:"required,notempty"`
}

// Quote converts the request to a domain quote.
func (r ToggleLikeRequest) Quote() domain.Quote {
	return domain.Quote{ID: r.ID, Content: r.Content, Author: r.Author}
}

// ToggleLikeResponse reports the like state after a toggle.
type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// StorageResponse reports the negotiated storage kind.
type StorageResponse struct {
	Storage string `json:"storage"`
}

// NotificationResponse is one user-facing notice.
type NotificationResponse struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Warning bool      `json:"warning"`
	At      time.Time `json:"at"`
}

// NotificationsResponse wraps drained notices.
type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

// NewNotificationsResponse converts notices. Notifications is never null.
func NewNotificationsResponse(ns []domain.Notification) NotificationsResponse {
	out := make([]NotificationResponse, len(ns))
	for i, n := range ns {
		out[i] = NotificationResponse{
			Kind:    string(n.Kind),
			Message: n.Message,
			Warning: n.IsWarning(),
			At:      n.At,
		}
	}

	return NotificationsResponse{Notifications: out}
}
