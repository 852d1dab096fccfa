package domain

import "time"

// NotificationKind classifies a user-facing notice.
type NotificationKind string

const (
	// NotificationStorageUnavailable: no store could be negotiated; likes live in memory only.
	NotificationStorageUnavailable NotificationKind = "storage_unavailable"

	// NotificationStorageDegraded: only the volatile fallback store is available.
	NotificationStorageDegraded NotificationKind = "storage_degraded"

	// NotificationSaveFailed: a write to the negotiated store failed after negotiation.
	NotificationSaveFailed NotificationKind = "save_failed"

	// NotificationStorageRestored: renegotiation found the persistent store again.
	NotificationStorageRestored NotificationKind = "storage_restored"

	// NotificationCollectionUpdated confirms a like, unlike, removal, or clear.
	NotificationCollectionUpdated NotificationKind = "collection_updated"
)

// Notification is a transient, human-readable notice for the user.
type Notification struct {
	Kind    NotificationKind
	Message string
	At      time.Time
}

// IsWarning reports whether the notice describes degraded persistence.
func (n Notification) IsWarning() bool {
	switch n.Kind {
	case NotificationStorageUnavailable, NotificationStorageDegraded, NotificationSaveFailed:
		return true
	default:
		return false
	}
}
