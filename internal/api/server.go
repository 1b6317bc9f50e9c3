// Package api provides the REST API server for the entries service.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/entries-server/internal/api/common"
	v1 "github.com/stacklok/entries-server/internal/api/v1"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/pkg/versions"
)

// ServerOption configures the entries API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares  []func(http.Handler) http.Handler
	routerOpts   []v1.RouterOption
	apiMountPath string
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithRouterOptions passes options to the v1 router
func WithRouterOptions(opts ...v1.RouterOption) ServerOption {
	return func(cfg *serverConfig) {
		cfg.routerOpts = append(cfg.routerOpts, opts...)
	}
}

// WithMountPath sets where the v1 API is mounted, "/api/v1" by default
func WithMountPath(path string) ServerOption {
	return func(cfg *serverConfig) {
		if path != "" {
			cfg.apiMountPath = path
		}
	}
}

// NewServer creates and configures the HTTP router with the given service and options
func NewServer(svc service.EntryService, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		middlewares:  []func(http.Handler) http.Handler{},
		apiMountPath: "/api/v1",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()

	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	// Mount health check routes directly at root
	r.Mount("/", HealthRouter(svc))

	r.Mount(cfg.apiMountPath, v1.Router(svc, cfg.routerOpts...))

	return r
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.EntryService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)

	return r
}

// healthHandler handles GET /health
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, ProbeResponse{Status: "healthy"}, http.StatusOK)
}

// readinessHandler handles GET /readiness
func readinessHandler(svc service.EntryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed",
				"error", err,
				"request_id", middleware.GetReqID(r.Context()))
			common.WriteJSON(w, ProbeResponse{Status: "not_ready", Error: err.Error()},
				http.StatusServiceUnavailable)
			return
		}
		common.WriteJSON(w, ProbeResponse{Status: "ready"}, http.StatusOK)
	}
}

// versionHandler handles GET /version
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, VersionResponse{
		Service:     serviceName,
		VersionInfo: versions.GetVersionInfo(),
	}, http.StatusOK)
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
