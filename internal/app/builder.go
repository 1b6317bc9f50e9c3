package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/api"
	v1 "github.com/stacklok/entries-server/internal/api/v1"
	"github.com/stacklok/entries-server/internal/app/storage"
	"github.com/stacklok/entries-server/internal/auth"
	"github.com/stacklok/entries-server/internal/authz"
	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/entries"
	"github.com/stacklok/entries-server/internal/service/factory"
	"github.com/stacklok/entries-server/internal/telemetry"
)

const (
	defaultHTTPAddress  = ":8080"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 45 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	// metricsPath serves the Prometheus scrape endpoint, outside authentication
	metricsPath = "/metrics"

	instrumentationName = "github.com/stacklok/entries-server"
)

// EntriesAppOptions is a function that configures the entries app builder
type EntriesAppOptions func(*entriesAppConfig) error

// entriesAppConfig collects the inputs of NewEntriesApp. It supports
// dependency injection for testing while providing sensible defaults for
// production.
type entriesAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	storageFactory storage.Factory
	entryService   service.EntryService
	authMiddleware func(http.Handler) http.Handler

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Telemetry components
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...EntriesAppOptions) (*entriesAppConfig, error) {
	cfg := &entriesAppConfig{
		address:      defaultHTTPAddress,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
		idleTimeout:  defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.requestTimeout == 0 && cfg.config != nil {
		cfg.requestTimeout = cfg.config.Server.GetRequestTimeout()
	}

	return cfg, nil
}

// NewEntriesApp assembles the storage, the entry service and the HTTP server
func NewEntriesApp(
	ctx context.Context,
	opts ...EntriesAppOptions,
) (*EntriesApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	// Single decision point for memory vs database storage
	if cfg.storageFactory == nil {
		var storageOpts []storage.Option
		if cfg.tracerProvider != nil {
			storageOpts = append(storageOpts, storage.WithTracer(cfg.tracerProvider.Tracer(instrumentationName)))
		}
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config, storageOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	// Ensure cleanup happens on error
	var cleanupNeeded = true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	stores, err := cfg.storageFactory.CreateStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create stores: %w", err)
	}

	svc, err := buildServiceComponents(ctx, cfg, stores)
	if err != nil {
		return nil, fmt.Errorf("failed to build service components: %w", err)
	}

	if cfg.authMiddleware == nil {
		cfg.authMiddleware, err = auth.NewAuthMiddleware(cfg.config.Auth, auth.DefaultValidatorFactory)
		if err != nil {
			return nil, fmt.Errorf("failed to build auth middleware: %w", err)
		}
	}

	httpServer, err := buildHTTPServer(ctx, cfg, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	// Cleanup is now handled by the app
	cleanupNeeded = false

	storageFactory := cfg.storageFactory
	cancelFunc := func() {
		storageFactory.Cleanup()
		cancel()
	}

	return &EntriesApp{
		config: cfg.config,
		components: &AppComponents{
			EntryService: svc,
			Stores:       stores,
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout overrides the configured per-request timeout
func WithRequestTimeout(d time.Duration) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithEntryService allows injecting a prebuilt entry service (for testing)
func WithEntryService(svc service.EntryService) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		cfg.entryService = svc
		return nil
	}
}

// WithAuthMiddleware replaces the middleware built from the auth configuration
func WithAuthMiddleware(mw func(http.Handler) http.Handler) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		cfg.authMiddleware = mw
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider for HTTP, service
// and store spans
func WithTracerProvider(tp trace.TracerProvider) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for HTTP and entry metrics
func WithMeterProvider(mp metric.MeterProvider) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithMetricsHandler exposes a Prometheus scrape handler at /metrics
func WithMetricsHandler(h http.Handler) EntriesAppOptions {
	return func(cfg *entriesAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

// buildServiceComponents builds the entry service on top of the stores
func buildServiceComponents(
	ctx context.Context,
	b *entriesAppConfig,
	stores *factory.Stores,
) (service.EntryService, error) {
	if b.entryService != nil {
		return b.entryService, nil
	}

	slog.Info("Initializing service components")

	var opts []entries.Option
	if b.tracerProvider != nil {
		opts = append(opts, entries.WithTracer(b.tracerProvider.Tracer(instrumentationName)))
	}
	if b.meterProvider != nil {
		metrics, err := telemetry.NewEntryMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create entry metrics: %w", err)
		}
		if metrics != nil {
			opts = append(opts, entries.WithMetrics(metrics))
			slog.Info("Entry metrics enabled")
		}
	}

	svc, err := factory.NewEntryService(ctx, b.config, stores, opts...)
	if err != nil {
		return nil, err
	}

	slog.Info("Service components initialized successfully",
		"collections", len(b.config.Collections),
		"sites", len(b.config.Sites))
	return svc, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *entriesAppConfig,
	svc service.EntryService,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	middlewares := b.middlewares
	if middlewares == nil {
		middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Instrumentation goes first to capture requests rejected by auth
	if b.tracerProvider != nil || b.meterProvider != nil {
		instrumentation, err := telemetry.NewHTTPInstrumentation(b.tracerProvider, b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP instrumentation: %w", err)
		}
		middlewares = append([]func(http.Handler) http.Handler{instrumentation.Middleware}, middlewares...)
		slog.Info("HTTP instrumentation enabled")
	}

	var scopeMapping []config.ScopeMappingEntry
	if b.config != nil {
		scopeMapping = b.config.Authz.GetScopeMapping()
	}
	if b.authMiddleware != nil {
		middlewares = append(middlewares, b.authMiddleware)
	}
	middlewares = append(middlewares, authz.ScopeMiddleware(scopeMapping))

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(middlewares...),
		api.WithRouterOptions(v1.WithScopeMapping(scopeMapping)),
	}
	if b.config != nil {
		serverOpts = append(serverOpts, api.WithMountPath(b.config.Server.GetBasePath()))
	}

	var handler http.Handler = api.NewServer(svc, serverOpts...)
	if b.metricsHandler != nil {
		root := chi.NewRouter()
		root.Handle(metricsPath, b.metricsHandler)
		root.Mount("/", handler)
		handler = root
		slog.Info("Prometheus metrics exposed", "path", metricsPath)
	}

	server := &http.Server{
		Addr:         b.address,
		Handler:      handler,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
