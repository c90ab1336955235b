// Package api serves a resolved configuration snapshot over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nauticalab/dotcfg/internal/logger"
)

// Server represents the HTTP API server
type Server struct {
	router  *chi.Mux
	handler *Handler
	store   *Store
	logger  *logger.Logger
	addr    string
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Host      string
	Port      int
	Loader    Loader
	Logger    *logger.Logger
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
}

// NewServer creates a new API server and loads the first snapshot. A server
// whose initial load fails is not created.
func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	store := NewStore(cfg.Loader)
	if _, err := store.Reload(ctx); err != nil {
		return nil, err
	}

	handler := NewHandler(store, log, cfg.Version, cfg.GitCommit, cfg.BuildTime, cfg.GoVersion)

	router := chi.NewRouter()
	setupMiddleware(router, log)
	setupRoutes(router, handler)

	return &Server{
		router:  router,
		handler: handler,
		store:   store,
		logger:  log,
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures the middleware chain
func setupMiddleware(router *chi.Mux, log *logger.Logger) {
	router.Use(middleware.RequestID)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures the API routes
func setupRoutes(router *chi.Mux, handler *Handler) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.Health)
		r.Get("/version", handler.Version)

		r.Get("/config", handler.GetConfig)
		r.Get("/config/{path}", handler.GetValue)
		r.Post("/reload", handler.Reload)
	})
}

// requestLogger logs one line per request on the zerolog logger.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(ww, r.WithContext(log.WithContext(r.Context())))
		})
	}
}

// StartWithContext starts the HTTP server and shuts it down gracefully when
// ctx is cancelled.
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		s.logger.Info().Msg("server stopped gracefully")
		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}
