// Package web exposes the query/export service as a JSON HTTP API for an
// external presentation layer.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aquaticfungi/pubdb/internal/browse"
	"github.com/aquaticfungi/pubdb/internal/export"
)

// Options configures a Server.
type Options struct {
	PageSize       int     // default page size when the request names none
	ExportBaseName string  // prefix of export filenames
	RateLimit      float64 // requests per second per client
	RateBurst      int
	TrustedProxies []string // CIDRs allowed to set X-Real-IP / X-Forwarded-For
}

// Server is the HTTP adapter over a browse.Service.
type Server struct {
	service *browse.Service
	opts    Options
	now     func() time.Time
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server with middleware and routes installed.
func NewServer(service *browse.Service, opts Options) *Server {
	if opts.PageSize < 1 {
		opts.PageSize = 10
	}
	if opts.ExportBaseName == "" {
		opts.ExportBaseName = export.DefaultBaseName
	}
	s := &Server{
		service: service,
		opts:    opts,
		now:     time.Now,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(trustedRealIP(s.opts.TrustedProxies))
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if s.opts.RateLimit > 0 {
		limiter := newRateLimiter(s.opts.RateLimit, s.opts.RateBurst)
		s.router.Use(limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/publications", s.handleListPublications)
		r.Get("/publications/{id}", s.handleGetPublication)
		r.Get("/years", s.handleYears)
		r.Get("/stats", s.handleStats)
		r.Get("/export", s.handleExport)
	})
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("Starting server", "addr", addr, "store", s.service.Path())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
