// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Request deadlines are set per route group by the domain handlers, since
    uploads need a longer one than everything else.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yomira-toon/internal/admin"
	"github.com/taibuivan/yomira-toon/internal/core/chapter"
	"github.com/taibuivan/yomira-toon/internal/core/series"
	"github.com/taibuivan/yomira-toon/internal/platform/config"
	"github.com/taibuivan/yomira-toon/internal/platform/constants"
	"github.com/taibuivan/yomira-toon/internal/platform/middleware"
	"github.com/taibuivan/yomira-toon/internal/storage"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness serves /health and answers 200 while the process is up.
	Liveness http.HandlerFunc

	// Readiness serves /ready and answers 200 only when postgres and redis respond.
	Readiness http.HandlerFunc

	// Admin handles administrator login.
	Admin *admin.Handler

	// Series handles the series catalogue.
	Series *series.Handler

	// Chapter handles chapters, page uploads and reading.
	Chapter *chapter.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := newRouter(context, cfg, log, verifier, h)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func newRouter(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Stored Page Images
	// Only the local backend serves bytes itself; S3 references point at the bucket.
	if cfg.UsesLocalStorage() {
		prefix := storage.PublicPrefix(cfg.UploadPublicPrefix)
		r.Handle(prefix+"/chapters/*", staticFiles(prefix, cfg.UploadDir))
	}

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/admin", h.Admin.RegisterRoutes)
		api.Route("/chapters", h.Chapter.RegisterRoutes)
		api.Route("/series", func(seriesRouter chi.Router) {
			h.Series.RegisterRoutes(seriesRouter)
			seriesRouter.Route("/{id}/chapters", h.Chapter.RegisterSeriesRoutes)
		})
	})

	return r
}

// staticFiles serves dir under prefix. Directories answer 404 instead of a listing.
func staticFiles(prefix, dir string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		name := strings.TrimPrefix(request.URL.Path, prefix)
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name))))
		if err != nil || info.IsDir() {
			http.NotFound(writer, request)
			return
		}

		writer.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		files.ServeHTTP(writer, request)
	})
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
