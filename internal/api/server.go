// Package api serves notebook generation over HTTP.
//
// # Routes
//
//	GET  /healthz          liveness and build version
//	GET  /v1/node-kinds    node kinds the server can build
//	GET  /v1/datasets      predefined datasets
//	GET  /v1/node-kinds/{kind}
//	POST /v1/notebooks     project in, ipynb out
//	POST /v1/graphs        project in, diagram out
//
// Project bodies are read according to their Content-Type: JSON
// (application/json), TOML (application/toml) or a scene script
// (application/x-dial-script). Notebook responses carry an X-Dial-Cache
// header set to "hit" or "miss".
//
// Failures are answered with a JSON body {"code": ..., "message": ...}
// whose code comes from [dialerrors.Classify].
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/notebook"
	"github.com/davafons/dial/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "127.0.0.1:8420"

	// MaxBodySize caps request bodies.
	MaxBodySize = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Server answers API requests with a shared [pipeline.Runner]. Plugins must
// not be loaded or unloaded while it is serving.
type Server struct {
	runner  *pipeline.Runner
	catalog *nodes.Catalog
	logger  *log.Logger
	router  chi.Router
}

// New creates a server. A nil runner generates from the built-in node
// library without caching, a nil catalog means the built-in node library
// and a nil logger discards output.
func New(runner *pipeline.Runner, catalog *nodes.Catalog, logger *log.Logger) *Server {
	if runner == nil {
		registry := notebook.NewRegistry()
		nodes.Install(nil, registry, nodes.Builtins()...)
		runner = pipeline.NewRunner(nil, nil, registry, logger)
	}
	if catalog == nil {
		catalog = nodes.NewCatalogWithBuiltins()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{runner: runner, catalog: catalog, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/node-kinds", s.handleNodeKinds)
		r.Get("/node-kinds/{kind}", s.handleNodeKind)
		r.Get("/datasets", s.handleDatasets)
		r.With(limitBody).Post("/notebooks", s.handleNotebook)
		r.With(limitBody).Post("/graphs", s.handleGraph)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound(r.URL.Path))
	})
	return r
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
