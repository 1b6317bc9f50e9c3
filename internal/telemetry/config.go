// Package telemetry provides OpenTelemetry instrumentation for the entries server.
// Traces and metrics are exported over OTLP/HTTP; metrics can additionally be
// scraped in Prometheus format.
package telemetry

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultServiceName is the default service name for telemetry
	DefaultServiceName = "entries-api"

	// DefaultEndpoint is the default OTLP endpoint for telemetry
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling is the default trace sampling rate (5%)
	DefaultSampling = 0.05

	// DefaultMetricsInterval is the default OTLP metric export interval
	DefaultMetricsInterval = 60 * time.Second

	// minMetricsInterval is the shortest accepted export interval
	minMetricsInterval = time.Second
)

// Config represents the root telemetry configuration
type Config struct {
	// Enabled controls whether telemetry is enabled globally.
	// When false, no telemetry providers are initialized.
	Enabled bool `yaml:"enabled"`

	// ServiceName defaults to "entries-api"
	ServiceName string `yaml:"serviceName,omitempty"`

	// ServiceVersion defaults to the application version
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the OTLP/HTTP collector as "host:port".
	// The /v1/traces and /v1/metrics paths are appended by the exporters.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure allows plain HTTP to the collector
	Insecure bool `yaml:"insecure,omitempty"`

	// Headers are sent with every export request, e.g. collector API keys
	Headers map[string]string `yaml:"headers,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig defines tracing-specific configuration
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is the ratio of traces kept, from 0.0 to 1.0.
	// Unset means DefaultSampling; an explicit 0 drops every trace.
	Sampling *float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig defines metrics-specific configuration
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// Interval is the OTLP export interval as a Go duration, e.g. "30s"
	Interval string `yaml:"interval,omitempty"`

	// Prometheus exposes the metrics on the server's /metrics endpoint
	Prometheus bool `yaml:"prometheus,omitempty"`

	// DisableOTLP turns off the push exporter, leaving only Prometheus
	DisableOTLP bool `yaml:"disableOtlp,omitempty"`
}

// GetServiceName returns the service name, using default if not specified
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the service version, using "unknown" if not specified
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns the endpoint, using default if not specified
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// GetSampling returns the sampling ratio, DefaultSampling when unset
func (c *TracingConfig) GetSampling() float64 {
	if c == nil || c.Sampling == nil {
		return DefaultSampling
	}
	return *c.Sampling
}

// GetInterval returns the export interval, DefaultMetricsInterval when unset
// or unparsable. Validate reports unparsable values.
func (c *MetricsConfig) GetInterval() time.Duration {
	if c == nil || c.Interval == "" {
		return DefaultMetricsInterval
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return DefaultMetricsInterval
	}
	return d
}

// tracingEnabled reports whether traces are exported
func (c *Config) tracingEnabled() bool {
	return c != nil && c.Enabled && c.Tracing != nil && c.Tracing.Enabled
}

// metricsEnabled reports whether any metrics reader is configured
func (c *Config) metricsEnabled() bool {
	return c != nil && c.Enabled && c.Metrics != nil && c.Metrics.Enabled &&
		(c.Metrics.Prometheus || !c.Metrics.DisableOTLP)
}

// Validate validates the telemetry configuration
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	for name := range c.Headers {
		if name == "" {
			errs = append(errs, errors.New("headers: empty header name"))
			break
		}
	}
	return errors.Join(errs...)
}

// Validate validates the tracing configuration
func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled || c.Sampling == nil {
		return nil
	}
	if s := *c.Sampling; s < 0 || s > 1.0 {
		return fmt.Errorf("sampling must be between 0.0 and 1.0, got %f", s)
	}
	return nil
}

// Validate validates the metrics configuration
func (c *MetricsConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.DisableOTLP && !c.Prometheus {
		return errors.New("disableOtlp requires prometheus to be enabled")
	}
	if c.Interval == "" {
		return nil
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", c.Interval, err)
	}
	if d < minMetricsInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minMetricsInterval, d)
	}
	return nil
}
