package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-motivation/internal/app"
	"github.com/jsamuelsen/daily-motivation/internal/bootstrap"
	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

// countingQuoteClient always answers with the same quote.
type countingQuoteClient struct {
	calls atomic.Int32
}

func (c *countingQuoteClient) GetRandomQuote(context.Context) (*domain.Quote, error) {
	c.calls.Add(1)
	return &domain.Quote{ID: "q1", Content: "Keep going.", Author: "Anon"}, nil
}

// runCLI executes one invocation and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	return runCLIWith(t, &countingQuoteClient{}, stdin, args...)
}

func runCLIWith(t *testing.T, client ports.QuoteClient, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	s := newSession(&out, &errOut)
	s.options = bootstrap.Options{QuoteClient: client}

	cmd := newRootCmd(s)
	cmd.SetArgs(append([]string{"--config-dir", t.TempDir(), "--profile", "test"}, args...))
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	require.NoError(t, s.close())

	return out.String(), errOut.String(), err
}

func useDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "motivation.db")
	t.Setenv("APP_STORAGE_PRIMARY_PATH", path)

	return path
}

func TestQuote(t *testing.T) {
	useDatabase(t)

	out, _, err := runCLI(t, "", "quote")
	require.NoError(t, err)

	assert.Contains(t, out, "Keep going.")
	assert.Contains(t, out, "Anon")
	assert.NotContains(t, out, "liked")
	assert.NotContains(t, out, "offline")
}

type unreachableQuoteClient struct{}

func (unreachableQuoteClient) GetRandomQuote(context.Context) (*domain.Quote, error) {
	return nil, domain.ErrUnavailable
}

func TestQuoteOffline(t *testing.T) {
	useDatabase(t)

	out, _, err := runCLIWith(t, unreachableQuoteClient{}, "", "quote")
	require.NoError(t, err)

	assert.Contains(t, out, "offline")
}

func TestQuoteLikePersists(t *testing.T) {
	useDatabase(t)

	out, errOut, err := runCLI(t, "", "quote", "--like")
	require.NoError(t, err)
	assert.Contains(t, out, "liked")
	assert.Contains(t, errOut, app.MsgAdded)

	out, _, err = runCLI(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Your Liked Quotes (1)")
	assert.Contains(t, out, "Keep going.")

	// Liking an already liked quote keeps it.
	_, _, err = runCLI(t, "", "quote", "--like")
	require.NoError(t, err)

	out, _, err = runCLI(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Your Liked Quotes (1)")
}

func TestOnlyQuoteCallsQuoteAPI(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCalls int32
	}{
		{name: "quote", args: []string{"quote"}, wantCalls: 1},
		{name: "list", args: []string{"list"}},
		{name: "status", args: []string{"status"}},
		{name: "clear", args: []string{"clear", "--yes"}},
		{name: "remove", args: []string{"remove", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useDatabase(t)

			client := &countingQuoteClient{}
			_, _, err := runCLIWith(t, client, "", tt.args...)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCalls, client.calls.Load())
		})
	}
}

func TestListEmpty(t *testing.T) {
	useDatabase(t)

	out, _, err := runCLI(t, "", "list")
	require.NoError(t, err)

	assert.Contains(t, out, app.MsgEmptyCollection)
}

func TestRemove(t *testing.T) {
	useDatabase(t)

	_, _, err := runCLI(t, "", "quote", "--like")
	require.NoError(t, err)

	_, errOut, err := runCLI(t, "", "remove", "missing", "q1")
	require.NoError(t, err)
	assert.Contains(t, errOut, "missing is not in your collection")
	assert.Contains(t, errOut, app.MsgRemoved)

	out, _, err := runCLI(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, app.MsgEmptyCollection)
}

func TestRemoveRequiresID(t *testing.T) {
	useDatabase(t)

	_, _, err := runCLI(t, "", "remove")
	require.Error(t, err)
}

func TestClear(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		cleared bool
	}{
		{name: "declined", stdin: "n\n", args: []string{"clear"}},
		{name: "no answer", stdin: "", args: []string{"clear"}},
		{name: "confirmed", stdin: "yes\n", args: []string{"clear"}, cleared: true},
		{name: "flag skips prompt", args: []string{"clear", "--yes"}, cleared: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useDatabase(t)

			_, _, err := runCLI(t, "", "quote", "--like")
			require.NoError(t, err)

			_, _, err = runCLI(t, tt.stdin, tt.args...)
			require.NoError(t, err)

			out, _, err := runCLI(t, "", "list")
			require.NoError(t, err)

			if tt.cleared {
				assert.Contains(t, out, app.MsgEmptyCollection)
			} else {
				assert.Contains(t, out, "Your Liked Quotes (1)")
			}
		})
	}
}

func TestStatus(t *testing.T) {
	useDatabase(t)

	out, _, err := runCLI(t, "", "status")
	require.NoError(t, err)

	assert.Contains(t, out, "primary")
	assert.Contains(t, out, "storage: healthy")
	assert.Contains(t, out, "latest-quote-wins true")
}

func TestFallbackStorageWarns(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	t.Setenv("APP_STORAGE_PRIMARY_PATH", filepath.Join(blocker, "motivation.db"))

	out, errOut, err := runCLI(t, "", "status")
	require.NoError(t, err)

	assert.Contains(t, errOut, app.MsgStorageDegraded)
	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, "degraded")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" y ", true},
		{"\n", false},
		{"nope\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.want, confirm(strings.NewReader(tt.in), &out, "Sure?"))
			assert.Contains(t, out.String(), "Sure? [y/N]")
		})
	}
}
