// Package web provides the HTTP server and handlers for the staylist web UI.
package web

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/evcraddock/staylist/internal/listing"
	"github.com/evcraddock/staylist/internal/logging"
	"github.com/evcraddock/staylist/internal/metrics"
	"github.com/evcraddock/staylist/internal/view"
)

//go:embed static/*
var staticFS embed.FS

// PageCache stores rendered pages. *cache.Pages satisfies it.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, page []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Options configures optional server collaborators.
type Options struct {
	// Pages caches rendered detail pages when non-nil.
	Pages    PageCache
	CacheTTL time.Duration

	// APIRate limits /api requests per second; zero or less disables the limit.
	APIRate  float64
	APIBurst int

	// APIToken enables write endpoints when non-empty.
	APIToken string

	// Registry is served at /metrics when non-nil.
	Registry *prometheus.Registry
}

// Server is the web UI HTTP server.
type Server struct {
	repo    *listing.Repository
	views   *view.Renderer
	pages   PageCache
	ttl     time.Duration
	limiter *rate.Limiter
	token   string
	router  *chi.Mux
}

// NewServer creates a web server over the given database.
func NewServer(db *sql.DB, opts Options) (*Server, error) {
	views, err := view.New()
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if opts.APIRate > 0 {
		limit = rate.Limit(opts.APIRate)
	}
	burst := opts.APIBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		repo:    listing.NewRepository(db),
		views:   views,
		pages:   opts.Pages,
		ttl:     opts.CacheTTL,
		limiter: rate.NewLimiter(limit, burst),
		token:   opts.APIToken,
		router:  chi.NewRouter(),
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	r := s.router
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(logging.RequestLogger)
	r.Use(metrics.Middleware)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleList)
	r.Get("/property/{name}", s.handleDetail)
	r.Get(listing.BookingPath, s.handleBooking)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/properties", s.apiListProperties)
		r.Get("/properties/{name}", s.apiGetProperty)
		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Post("/properties", s.apiUpsertProperty)
			r.Delete("/properties/{name}", s.apiDeleteProperty)
		})
	})

	if opts.Registry != nil {
		r.Handle("/metrics", metrics.Handler(opts.Registry))
	}

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	return serve(ctx, &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}, "web UI")
}

// ServeMetrics serves the registry alone on addr until ctx is cancelled.
func ServeMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	return serve(ctx, &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, "metrics")
}

func serve(ctx context.Context, srv *http.Server, name string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msgf("%s listening", name)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s server: %w", name, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down %s server: %w", name, err)
		}
		return nil
	}
}
