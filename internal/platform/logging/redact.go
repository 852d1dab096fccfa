package logging

import (
	"context"
	"log/slog"
	"regexp"
	"slices"

	"github.com/m-mizutani/masq"
)

var (
	// credentialURL matches URLs with user:password userinfo.
	credentialURL = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://[^/\s@:]*:[^/\s@]*@`)

	// keyedURL matches URLs carrying a key or token in the query string, as
	// some quote providers require in services.quote.base_url.
	keyedURL = regexp.MustCompile(`(?i)^https?://\S*[?&](api[_-]?key|key|token|access[_-]?token)=`)

	// authValue matches Authorization header values.
	authValue = regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`)
)

// secretFields are attribute keys whose values never reach the log.
var secretFields = []string{
	"api_key", "apiKey", "apikey", "x-api-key",
	"authorization", "Authorization",
	"token", "access_token",
	"password", "cookie",
}

func redactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(secretFields)+4)
	for _, name := range secretFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(credentialURL),
		masq.WithRegex(keyedURL),
		masq.WithRegex(authValue),
	)
}

// newReplaceAttr returns a slog ReplaceAttr that redacts secrets. extra
// options are added to the defaults.
func newReplaceAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(redactOptions(), extra...)...)
}

// redacting applies replace to every attribute before next sees it. It
// covers handlers without a ReplaceAttr hook, such as the pretty console.
type redacting struct {
	next    slog.Handler
	replace func(groups []string, a slog.Attr) slog.Attr
	groups  []string
}

func (h redacting) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h redacting) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler signature
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.replace(h.groups, a))
		return true
	})

	return h.next.Handle(ctx, out)
}

func (h redacting) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.replace(h.groups, a)
	}

	return redacting{next: h.next.WithAttrs(clean), replace: h.replace, groups: h.groups}
}

func (h redacting) WithGroup(name string) slog.Handler {
	return redacting{
		next:    h.next.WithGroup(name),
		replace: h.replace,
		groups:  append(slices.Clip(h.groups), name),
	}
}
