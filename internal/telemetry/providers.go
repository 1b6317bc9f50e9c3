package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// newResource describes this process to the collector
func newResource(ctx context.Context, cfg *Config) (*resource.Resource, error) {
	// resource.New instead of resource.Default avoids schema URL conflicts
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.GetServiceName()),
			semconv.ServiceVersion(cfg.GetServiceVersion()),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// newTracerProvider returns an SDK provider exporting over OTLP/HTTP, or a
// no-op provider when tracing is disabled.
func newTracerProvider(ctx context.Context, cfg *Config, res *resource.Resource) (trace.TracerProvider, error) {
	if !cfg.tracingEnabled() {
		slog.Info("Tracing disabled, using no-op tracer provider")
		return tracenoop.NewTracerProvider(), nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.GetEndpoint())}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	sampling := cfg.Tracing.GetSampling()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampling))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.Insecure {
		slog.Warn("Tracing configured with insecure connection, telemetry data is sent over unencrypted HTTP")
	}
	slog.Info("Tracing initialized",
		"endpoint", cfg.GetEndpoint(),
		"sampling_ratio", sampling,
	)
	return tp, nil
}

// meterSetup is the meter provider plus the Prometheus registry it feeds, if any
type meterSetup struct {
	provider metric.MeterProvider
	registry *prometheus.Registry
}

// newMeterProvider returns an SDK provider with an OTLP periodic reader
// and an optional Prometheus reader, or a no-op provider when metrics are
// disabled.
func newMeterProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*meterSetup, error) {
	if !cfg.metricsEnabled() {
		slog.Info("Metrics disabled, using no-op meter provider")
		return &meterSetup{provider: metricnoop.NewMeterProvider()}, nil
	}

	setup := &meterSetup{}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if !cfg.Metrics.DisableOTLP {
		exporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.GetEndpoint())}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}
		exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Metrics.GetInterval())),
		))
	}

	if cfg.Metrics.Prometheus {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		reader, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(reader))
		setup.registry = registry
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	setup.provider = mp

	slog.Info("Metrics initialized",
		"endpoint", cfg.GetEndpoint(),
		"otlp", !cfg.Metrics.DisableOTLP,
		"prometheus", cfg.Metrics.Prometheus,
		"interval", cfg.Metrics.GetInterval().String(),
	)
	return setup, nil
}

// prometheusHandler serves the registry in the Prometheus exposition format
func prometheusHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		Registry:          registry,
		EnableOpenMetrics: true,
	})
}
