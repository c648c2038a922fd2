// Package server exposes the split pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness check
//	POST /v1/hierarchy     build a hierarchy from pipeline options
//	POST /v1/split         split one span
//	POST /v1/split/batch   split many spans concurrently
//
// Request bodies are [pipeline.Options] fields plus "span" or "spans".
// Errors are returned as {"code", "message", "request_id"} with the status
// mapped from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/regroup/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 1 << 20
	DefaultTimeout      = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Config configures the HTTP server.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	Timeout      time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Server serves the split API backed by a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
}

// New creates a server. A nil logger falls back to the runner's logger.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{runner: runner, logger: logger, cfg: cfg}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/hierarchy", s.handleHierarchy)
		r.Post("/split", s.handleSplit)
		r.Post("/split/batch", s.handleBatch)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
