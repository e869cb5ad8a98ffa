// Package server implements the blockprint HTTP API.
//
// Routes:
//
//	GET    /api/health                          status and version
//	GET    /api/palettes                        palette names
//	POST   /api/preview                         render a blueprint from the body
//	POST   /api/blueprints                      store a blueprint, answer its id
//	GET    /api/blueprints/{id}                 stored record
//	DELETE /api/blueprints/{id}                 remove a record
//	GET    /api/blueprints/{id}/preview.{fmt}   render a stored blueprint
//	GET    /api/blueprints/{id}/live            websocket preview session
//
// Render endpoints take the query parameters width, height, density,
// palette, viz_type, grid, label and title. Errors are JSON objects of the
// form {"detail": "...", "code": "..."}.
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
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/blockprint/blockprint/pkg/pipeline"
	"github.com/blockprint/blockprint/pkg/store"
)

const (
	defaultMaxBody         = 1 << 20
	defaultShutdownTimeout = 10 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for requests and sessions.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
// "*" allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithShutdownTimeout bounds graceful shutdown in [Server.Run].
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// Server serves the HTTP API on top of a blueprint store.
type Server struct {
	store           *store.Store
	runner          *pipeline.Runner
	logger          *log.Logger
	origins         []string
	maxBody         int64
	shutdownTimeout time.Duration
	router          chi.Router
}

// New creates a server backed by st.
func New(st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:           st,
		logger:          log.NewWithOptions(io.Discard, log.Options{}),
		maxBody:         defaultMaxBody,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.runner = pipeline.NewRunner(s.logger)
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.corsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/palettes", s.handlePalettes)
		r.Post("/preview", s.handlePreview)

		r.Route("/blueprints", func(r chi.Router) {
			r.Post("/", s.handleCreateBlueprint)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetBlueprint)
				r.Delete("/", s.handleDeleteBlueprint)
				r.Get("/preview.{format}", s.handleBlueprintPreview)
				r.Get("/live", s.handleLive)
			})
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// corsHandler answers browser preflights for the configured origins. With no
// origins configured cross-origin requests get no CORS headers at all.
func (s *Server) corsHandler() func(http.Handler) http.Handler {
	if len(s.origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Total-Blocks", "Location"},
		MaxAge:         600,
	})
}
