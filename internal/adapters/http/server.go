// Package http serves the motivation API with gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-motivation/internal/platform/config"
)

// ErrorCodeTooLarge answers a request body over server.max_request_size.
const ErrorCodeTooLarge = "PAYLOAD_TOO_LARGE"

// Server owns the gin engine and the listener it is served on.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	cfg    *config.ServerConfig
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New builds a server for cfg. Routes are added through Engine before Start.
func New(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(limitBody(cfg.MaxRequestSize))

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           engine,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Engine exposes the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfig {
	return s.cfg
}

// Start binds the listen address and serves in the background. A bind
// failure is delivered on the returned channel at once; a later serve
// failure arrives there too. The channel is closed when serving stops.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		errCh <- fmt.Errorf("listen on %s: %w", s.http.Addr, err)
		close(errCh)
		return errCh
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("serving motivation api",
		slog.String("addr", ln.Addr().String()),
		slog.Duration("read_timeout", s.cfg.ReadTimeout),
		slog.Duration("write_timeout", s.cfg.WriteTimeout),
		slog.Int64("max_request_size", s.cfg.MaxRequestSize),
	)

	go func() {
		defer close(errCh)

		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	return errCh
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("draining http server")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("http server stopped")

	return nil
}

// Addr is the bound address once Start has succeeded, which resolves port
// 0. Before that it is the configured address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

// limitBody rejects a declared oversize body with 413 and caps the rest, so
// a chunked upload fails when the handler reads past the limit.
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
				ErrorCodeTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", limit),
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
