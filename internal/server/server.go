// Package server exposes the topology editor over HTTP.
//
// Every request loads the named draft from the draft store, applies one
// operation, and saves it back. A single mutex serializes load-modify-save,
// so concurrent clients never lose each other's edits. Submission takes a
// snapshot under the lock and talks to the Slice Manager outside it.
//
// # Routes
//
//	GET    /health
//	GET    /metrics
//	GET    /api/drafts
//	POST   /api/drafts
//	GET    /api/drafts/{draft}
//	DELETE /api/drafts/{draft}
//	PUT    /api/drafts/{draft}/import
//	POST   /api/drafts/{draft}/clear
//	POST   /api/drafts/{draft}/nodes
//	PATCH  /api/drafts/{draft}/nodes/{id}
//	DELETE /api/drafts/{draft}/nodes/{id}
//	POST   /api/drafts/{draft}/connections
//	DELETE /api/drafts/{draft}/connections/{id}
//	POST   /api/drafts/{draft}/generate
//	GET    /api/drafts/{draft}/validate
//	GET    /api/drafts/{draft}/payload
//	GET    /api/drafts/{draft}/render
//	POST   /api/drafts/{draft}/send
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/slicetopo/pkg/draft"
	"github.com/matzehuels/slicetopo/pkg/editor"
	"github.com/matzehuels/slicetopo/pkg/observability"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/slicemanager"
	"github.com/matzehuels/slicetopo/pkg/topology"
	"github.com/matzehuels/slicetopo/pkg/validate"
)

// Options configures a Server.
type Options struct {
	// Submitter posts to the Slice Manager. Nil disables /send.
	Submitter *slicemanager.Submitter

	// Rules configures validation for /validate.
	Rules validate.Options

	// Editor configures the interaction controller used for mutations.
	Editor editor.Options

	// Metrics, when set, is served on /metrics.
	Metrics *observability.Prometheus

	// Logger receives request errors. Nil means log.Default().
	Logger *log.Logger
}

// Server holds the HTTP handler dependencies.
type Server struct {
	mu     sync.Mutex
	drafts draft.Store
	opts   Options
	logger *log.Logger
}

// New creates a server over drafts.
func New(drafts draft.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	opts.Editor.Logger = opts.Logger
	return &Server{drafts: drafts, opts: opts, logger: opts.Logger}
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.HealthCheck)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Route("/api/drafts", func(r chi.Router) {
		r.Get("/", s.ListDrafts)
		r.Post("/", s.CreateDraft)

		r.Route("/{draft}", func(r chi.Router) {
			r.Get("/", s.GetDraft)
			r.Delete("/", s.DeleteDraft)
			r.Put("/import", s.ImportDraft)
			r.Post("/clear", s.ClearDraft)

			r.Post("/nodes", s.CreateNode)
			r.Patch("/nodes/{id}", s.UpdateNode)
			r.Delete("/nodes/{id}", s.DeleteNode)

			r.Post("/connections", s.CreateConnection)
			r.Delete("/connections/{id}", s.DeleteConnection)

			r.Post("/generate", s.Generate)
			r.Get("/validate", s.Validate)
			r.Get("/payload", s.Payload)
			r.Get("/render", s.Render)
			r.Post("/send", s.Send)
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "drafts", fmt.Sprintf("%T", s.drafts))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// load reads a draft into a fresh store. Callers hold s.mu.
func (s *Server) load(ctx context.Context, name string) (*topology.Store, error) {
	d, err := s.drafts.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	t, err := d.Topology()
	if err != nil {
		return nil, err
	}
	st := topology.New(t.Name)
	st.Load(t)
	return st, nil
}

// mutate runs fn on the named draft under the lock and saves the result.
func (s *Server) mutate(ctx context.Context, name string, fn func(st *topology.Store, ctl *editor.Controller) error) (draft.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx, name)
	if err != nil {
		return draft.Draft{}, err
	}
	if err := fn(st, editor.New(st, s.opts.Editor)); err != nil {
		return draft.Draft{}, err
	}
	return s.drafts.Save(ctx, name, serialize.Export(st.Snapshot(), time.Now()))
}

// snapshot returns a detached copy of the named draft.
func (s *Server) snapshot(ctx context.Context, name string) (topology.Topology, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx, name)
	if err != nil {
		return topology.Topology{}, err
	}
	return st.Snapshot(), nil
}
