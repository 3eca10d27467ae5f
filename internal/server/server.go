// Package server exposes the conversion pipeline over HTTP.
//
// The API is a thin JSON layer over [pipeline.Runner]: the options a CLI
// invocation accepts arrive flat in the request body, and the pipeline
// result comes back as JSON. Routes:
//
//	POST /api/convert    convert a diagram between formats
//	POST /api/validate   validate a diagram and return the report
//	GET  /api/formats    list supported formats
//	GET  /healthz        liveness probe
//
// Errors use a stable envelope carrying the pipeline error code:
//
//	{"error": {"code": "FORMAT_NOT_FOUND", "message": "unknown format ..."}}
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/WhiteBite/diaflow/pkg/pipeline"
)

// Config holds the server dependencies.
type Config struct {
	Addr   string // listen address, defaults to :8080
	Runner *pipeline.Runner
	Logger *log.Logger
}

// Server serves the conversion API.
type Server struct {
	addr   string
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a Server. A nil logger discards output.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	return &Server{
		addr:   addr,
		runner: cfg.Runner,
		logger: logger,
	}
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Post("/validate", s.handleValidate)
		r.Get("/formats", s.handleFormats)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully. The
// returned error is ctx.Err() on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		// ListenAndServe returns ErrServerClosed on graceful shutdown;
		// only real failures go to the channel.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
