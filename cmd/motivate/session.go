package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/daily-motivation/internal/bootstrap"
	"github.com/jsamuelsen/daily-motivation/internal/domain"
	"github.com/jsamuelsen/daily-motivation/internal/platform/config"
	"github.com/jsamuelsen/daily-motivation/internal/platform/logging"
	"github.com/jsamuelsen/daily-motivation/internal/ports"
)

// session holds what a single CLI invocation opens and must close.
type session struct {
	out    io.Writer
	errOut io.Writer

	configDir string
	profile   string
	verbose   bool

	// options is overridden in tests.
	options bootstrap.Options

	stack *bootstrap.Stack
}

func newSession(out, errOut io.Writer) *session {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	return &session{
		out:       out,
		errOut:    errOut,
		configDir: "configs",
		profile:   profile,
	}
}

// open loads configuration, wires the stack, and loads the collection.
// Only the quote command reaches the quote API.
func (s *session) open(ctx context.Context) error {
	cfg, err := config.LoadFrom(s.configDir, s.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Notices are printed, so the log stays quiet unless asked.
	level := "error"
	if s.verbose {
		level = "debug"
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   level,
		Format:  "pretty",
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	}, s.errOut)
	logging.SetDefault(logger)

	opts := s.options
	if opts.Registerer == nil {
		// One-shot process: nothing scrapes the default registry.
		opts.Registerer = prometheus.NewRegistry()
	}
	opts.Notifiers = append(opts.Notifiers, ports.NotifierFunc(s.printNotice))

	stack, err := bootstrap.Build(cfg, logger, opts)
	if err != nil {
		return err
	}
	s.stack = stack

	stack.Service.Open(ctx)

	return nil
}

// close releases the stack. Safe to call when open failed or never ran.
func (s *session) close() error {
	if s.stack == nil {
		return nil
	}

	stack := s.stack
	s.stack = nil

	return stack.Close()
}

func (s *session) printNotice(_ context.Context, n domain.Notification) {
	style := noticeStyle
	if n.IsWarning() {
		style = warningStyle
	}

	fmt.Fprintln(s.errOut, style.Render(n.Message))
}
