// Package server exposes the name parser over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/nameparse/internal/config"
	"github.com/sells-group/nameparse/internal/nameparse"
	"github.com/sells-group/nameparse/internal/store"
)

// Server serves the parse API. The parser is shared by all requests.
type Server struct {
	parser *nameparse.Parser
	store  store.Store
	cfg    config.ServerConfig
	router chi.Router
}

// New builds the router. st may be nil, which disables the run endpoints.
func New(p *nameparse.Parser, st store.Store, cfg config.ServerConfig) *Server {
	s := &Server{parser: p, store: st, cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	var limiter *rate.Limiter
	if s.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), max(s.cfg.RateBurst, 1))
	}

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(rateLimit(limiter))
		r.Get("/parse", s.parseOne)
		r.Post("/parse", s.parseMany)
		r.Get("/proper", s.proper)
		r.Get("/stats", s.stats)
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{id}", s.getRun)
	})

	return r
}

// ListenAndServe serves on cfg.Port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.Int("port", s.cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}
