// Package telemetry provides OpenTelemetry instrumentation for the entries server.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// EntryMetricsMeterName is the name used for the entry lifecycle metrics meter
	EntryMetricsMeterName = "github.com/stacklok/entries-server/entries"
)

// Operation outcomes recorded by EntryMetrics
const (
	OutcomeSuccess  = "success"
	OutcomeDenied   = "denied"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// EntryMetrics holds the OpenTelemetry instruments for entry lifecycle operations
type EntryMetrics struct {
	operationsTotal   metric.Int64Counter
	operationDuration metric.Float64Histogram
	entriesTotal      metric.Int64Gauge
}

// NewEntryMetrics creates a new EntryMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewEntryMetrics(provider metric.MeterProvider) (*EntryMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(EntryMetricsMeterName)

	operationsTotal, err := meter.Int64Counter(
		"entries_operations_total",
		metric.WithDescription("Number of entry lifecycle operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram(
		"entries_operation_duration_seconds",
		metric.WithDescription("Duration of entry lifecycle operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5),
	)
	if err != nil {
		return nil, err
	}

	entriesTotal, err := meter.Int64Gauge(
		"entries_collection_entries_total",
		metric.WithDescription("Number of entries in a collection as seen by the last listing"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &EntryMetrics{
		operationsTotal:   operationsTotal,
		operationDuration: operationDuration,
		entriesTotal:      entriesTotal,
	}, nil
}

// RecordOperation records one operation on a collection with its outcome
func (m *EntryMetrics) RecordOperation(
	ctx context.Context,
	operation, collection, outcome string,
	duration time.Duration,
) {
	if m == nil || m.operationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("collection", collection),
		attribute.String("outcome", outcome),
	)

	m.operationsTotal.Add(ctx, 1, attrs)
	m.operationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordEntriesTotal records the total number of entries of an unfiltered listing
func (m *EntryMetrics) RecordEntriesTotal(ctx context.Context, collection string, count int64) {
	if m == nil || m.entriesTotal == nil {
		return
	}

	m.entriesTotal.Record(ctx, count, metric.WithAttributes(attribute.String("collection", collection)))
}
