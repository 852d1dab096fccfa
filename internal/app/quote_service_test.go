package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/mocks"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingMetrics captures calls for assertions. Not safe for concurrent use.
type recordingMetrics struct {
	sources    []string
	sizes      []int
	kinds      []string
	saveFailed int
}

func (m *recordingMetrics) QuoteFetched(source string)  { m.sources = append(m.sources, source) }
func (m *recordingMetrics) CollectionSize(n int)        { m.sizes = append(m.sizes, n) }
func (m *recordingMetrics) StorageSelected(kind string) { m.kinds = append(m.kinds, kind) }
func (m *recordingMetrics) SaveFailed()                 { m.saveFailed++ }

func TestNewQuoteService_PanicsWithoutQuoteClient(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{
			QuoteClient: nil,
			Logger:      slog.Default(),
		})
	})
}

func TestNewQuoteService_DefaultsLogger(t *testing.T) {
	mockClient := mocks.NewMockQuoteClient(t)

	svc := NewQuoteService(QuoteServiceConfig{
		QuoteClient: mockClient,
		Logger:      nil, // Should default to slog.Default()
	})

	require.NotNil(t, svc)
}

func TestQuoteService_Fetch(t *testing.T) {
	remote := &domain.Quote{ID: "q-123", Content: "Test quote", Author: "Test Author"}

	tests := []struct {
		name       string
		setupMock  func(*mocks.MockQuoteClient)
		pick       int
		want       domain.Quote
		wantSource string
	}{
		{
			name: "success",
			setupMock: func(m *mocks.MockQuoteClient) {
				m.EXPECT().GetRandomQuote(mock.Anything).Return(remote, nil)
			},
			want:       *remote,
			wantSource: SourceRemote,
		},
		{
			name: "client returns unavailable error",
			setupMock: func(m *mocks.MockQuoteClient) {
				m.EXPECT().GetRandomQuote(mock.Anything).
					Return(nil, domain.NewUnavailableError("quote-service", "timeout"))
			},
			pick:       1,
			want:       fallbackQuotes[1],
			wantSource: SourceFallback,
		},
		{
			name: "client returns generic error",
			setupMock: func(m *mocks.MockQuoteClient) {
				m.EXPECT().GetRandomQuote(mock.Anything).Return(nil, errors.New("network error"))
			},
			pick:       2,
			want:       fallbackQuotes[2],
			wantSource: SourceFallback,
		},
		{
			name: "nil quote without error",
			setupMock: func(m *mocks.MockQuoteClient) {
				m.EXPECT().GetRandomQuote(mock.Anything).Return(nil, nil)
			},
			want:       fallbackQuotes[0],
			wantSource: SourceFallback,
		},
		{
			name: "incomplete quote",
			setupMock: func(m *mocks.MockQuoteClient) {
				m.EXPECT().GetRandomQuote(mock.Anything).
					Return(&domain.Quote{ID: "q-1", Content: "Text"}, nil)
			},
			want:       fallbackQuotes[0],
			wantSource: SourceFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := mocks.NewMockQuoteClient(t)
			tt.setupMock(mockClient)
			metrics := &recordingMetrics{}

			svc := NewQuoteService(QuoteServiceConfig{
				QuoteClient: mockClient,
				Metrics:     metrics,
				Pick:        func(int) int { return tt.pick },
				Logger:      discardLogger(),
			})

			got := svc.Fetch(context.Background())

			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{tt.wantSource}, metrics.sources)
		})
	}
}

func TestQuoteService_FallbackPickOutOfRange(t *testing.T) {
	mockClient := mocks.NewMockQuoteClient(t)
	mockClient.EXPECT().GetRandomQuote(mock.Anything).Return(nil, errors.New("down"))

	svc := NewQuoteService(QuoteServiceConfig{
		QuoteClient: mockClient,
		Pick:        func(n int) int { return n },
		Logger:      discardLogger(),
	})

	assert.Equal(t, fallbackQuotes[0], svc.Fetch(context.Background()))
}

func TestQuoteService_FallbackIsUniform(t *testing.T) {
	mockClient := mocks.NewMockQuoteClient(t)
	mockClient.EXPECT().GetRandomQuote(mock.Anything).Return(nil, errors.New("down"))

	svc := NewQuoteService(QuoteServiceConfig{
		QuoteClient: mockClient,
		Logger:      discardLogger(),
	})

	seen := make(map[string]int)
	for range 600 {
		q := svc.Fetch(context.Background())
		require.True(t, IsFallbackQuote(q.ID))
		seen[q.ID]++
	}

	assert.Len(t, seen, len(fallbackQuotes))
	for id, n := range seen {
		assert.Greater(t, n, 100, "fallback %s picked too rarely", id)
	}
}

func TestFallbackQuotes(t *testing.T) {
	require.Len(t, fallbackQuotes, 3)
	for _, q := range fallbackQuotes {
		assert.NoError(t, q.Validate())
		assert.True(t, IsFallbackQuote(q.ID))
	}
	assert.False(t, IsFallbackQuote("changed"))
}
