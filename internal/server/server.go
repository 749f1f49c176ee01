// Package server exposes the catalog, the plan pipeline, and saved
// configurations over a JSON HTTP API built on chi.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stairbuilder/internal/config"
	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/pipeline"
	"github.com/matzehuels/stairbuilder/pkg/session"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// context is cancelled.
const shutdownTimeout = 10 * time.Second

// Options holds the server's dependencies.
type Options struct {
	Repo       *catalog.Repository
	Runner     *pipeline.Runner
	Sessions   session.Store
	SessionTTL time.Duration
	Logger     *log.Logger
}

// Server routes API requests to the catalog, runner, and session store.
type Server struct {
	repo       *catalog.Repository
	runner     *pipeline.Runner
	sessions   session.Store
	sessionTTL time.Duration
	logger     *log.Logger
	router     chi.Router
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	s := &Server{
		repo:       opts.Repo,
		runner:     opts.Runner,
		sessions:   opts.Sessions,
		sessionTTL: opts.SessionTTL,
		logger:     opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/models", func(r chi.Router) {
		r.Get("/", s.handleListModels)
		r.Post("/", s.handleAddModel)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetModel)
			r.Delete("/", s.handleDeleteModel)
			r.Get("/settings", s.handleModelSettings)
			r.Post("/plan", s.handlePlan)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handleListCategories)
		r.Post("/", s.handleAddCategory)
		r.Delete("/{id}", s.handleDeleteCategory)
	})

	r.Route("/textures", func(r chi.Router) {
		r.Get("/", s.handleListTextures)
		r.Get("/{id}/maps", s.handleTextureMaps)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/{id}", s.handleGetSession)
		r.Delete("/{id}", s.handleDeleteSession)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
