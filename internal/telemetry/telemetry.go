package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry owns the tracer and meter providers of the process.
type Telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	registry       *prometheus.Registry
}

// Option is a function that configures the telemetry setup
type Option func(*telemetryOptions)

type telemetryOptions struct {
	config *Config
}

// WithTelemetryConfig sets the telemetry configuration
func WithTelemetryConfig(cfg *Config) Option {
	return func(o *telemetryOptions) {
		o.config = cfg
	}
}

// New creates the providers described by the configuration. A nil or
// disabled configuration yields no-op providers. Callers must call Shutdown.
func New(ctx context.Context, opts ...Option) (*Telemetry, error) {
	o := &telemetryOptions{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.config

	if cfg == nil || !cfg.Enabled {
		slog.Debug("Telemetry disabled")
		cfg = &Config{}
	} else {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
		}
		slog.Info("Initializing telemetry",
			"service_name", cfg.GetServiceName(),
			"service_version", cfg.GetServiceVersion(),
		)
	}

	var res *resource.Resource
	if cfg.tracingEnabled() || cfg.metricsEnabled() {
		var err error
		if res, err = newResource(ctx, cfg); err != nil {
			return nil, err
		}
	}

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	meters, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		if sdkTP, ok := tp.(*sdktrace.TracerProvider); ok {
			_ = sdkTP.Shutdown(ctx)
		}
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}

	return &Telemetry{
		tracerProvider: tp,
		meterProvider:  meters.provider,
		registry:       meters.registry,
	}, nil
}

// TracerProvider returns the configured tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the configured meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// Tracer returns a named tracer from the tracer provider
func (t *Telemetry) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return t.tracerProvider.Tracer(name, opts...)
}

// MetricsHandler returns the Prometheus scrape handler, nil when the
// Prometheus reader is not enabled.
func (t *Telemetry) MetricsHandler() http.Handler {
	if t.registry == nil {
		return nil
	}
	return prometheusHandler(t.registry)
}

// Shutdown flushes and stops the SDK providers. It is safe to call more than once.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down telemetry")

	var errs []error
	if tp, ok := t.tracerProvider.(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	if mp, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.Shutdown(ctx); err != nil && !errors.Is(err, sdkmetric.ErrReaderShutdown) {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
