package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote_Validate(t *testing.T) {
	tests := []struct {
		name  string
		quote Quote
		field string
	}{
		{name: "valid", quote: Quote{ID: "a1", Content: "X", Author: "Y"}},
		{name: "missing id", quote: Quote{Content: "X", Author: "Y"}, field: "id"},
		{name: "blank content", quote: Quote{ID: "a1", Content: "  ", Author: "Y"}, field: "content"},
		{name: "missing author", quote: Quote{ID: "a1", Content: "X"}, field: "author"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quote.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestIndexOf(t *testing.T) {
	quotes := []Quote{{ID: "b"}, {ID: "a"}}

	assert.Equal(t, 0, IndexOf(quotes, "b"))
	assert.Equal(t, 1, IndexOf(quotes, "a"))
	assert.Equal(t, -1, IndexOf(quotes, "c"))
	assert.Equal(t, -1, IndexOf(nil, "a"))
}

func TestNotification_IsWarning(t *testing.T) {
	assert.True(t, Notification{Kind: NotificationStorageUnavailable}.IsWarning())
	assert.True(t, Notification{Kind: NotificationStorageDegraded}.IsWarning())
	assert.True(t, Notification{Kind: NotificationSaveFailed}.IsWarning())
	assert.False(t, Notification{Kind: NotificationCollectionUpdated}.IsWarning())
	assert.False(t, Notification{Kind: NotificationStorageRestored}.IsWarning())
}
