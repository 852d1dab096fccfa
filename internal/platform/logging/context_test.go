package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))

	return entry
}

func TestFromContext(t *testing.T) {
	stored := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		ctx  context.Context
		want *slog.Logger
	}{
		{name: "nil context", ctx: nil, want: defaultLogger},
		{name: "no logger", ctx: context.Background(), want: defaultLogger},
		{name: "stored logger", ctx: WithContext(context.Background(), stored), want: stored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, FromContext(tt.ctx))
		})
	}
}

func TestWithHelpers(t *testing.T) {
	tests := []struct {
		name string
		with func(context.Context, string) context.Context
		key  string
	}{
		{name: "request id", with: WithRequestID, key: KeyRequestID},
		{name: "correlation id", with: WithCorrelationID, key: KeyCorrelationID},
		{name: "trace id", with: WithTraceID, key: KeyTraceID},
		{name: "quote id", with: WithQuoteID, key: KeyQuoteID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := WithContext(context.Background(), jsonLogger(&buf))

			ctx = tt.with(ctx, "f2")
			FromContext(ctx).Info("toggled like")

			assert.Equal(t, "f2", lastEntry(t, &buf)[tt.key])
		})
	}
}

func TestWith_Accumulates(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), jsonLogger(&buf))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithCorrelationID(ctx, "corr-1")
	ctx = WithQuoteID(ctx, "f3")
	FromContext(ctx).Info("quote removed")

	entry := lastEntry(t, &buf)
	assert.Equal(t, "req-1", entry[KeyRequestID])
	assert.Equal(t, "corr-1", entry[KeyCorrelationID])
	assert.Equal(t, "f3", entry[KeyQuoteID])
}

func TestWith_NoAttrsKeepsContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, With(ctx))
}

func TestSetDefault(t *testing.T) {
	previous := defaultLogger
	previousSlog := slog.Default()
	t.Cleanup(func() {
		defaultLogger = previous
		slog.SetDefault(previousSlog)
	})

	var buf bytes.Buffer
	logger := jsonLogger(&buf)
	SetDefault(logger)

	assert.Same(t, logger, FromContext(context.Background()))

	slog.Info("collection opened")
	assert.Contains(t, buf.String(), "collection opened")
}
