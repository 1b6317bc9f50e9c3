package database

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/otel"
)

// ServiceTracerName is the name used for the database store tracer
const ServiceTracerName = "github.com/stacklok/entries-server/service/db"

// Tables reported as db.collection.name on store spans.
const (
	tableEntries       = "entries"
	tableRevisions     = "revisions"
	tableStructures    = "structures"
	tableWorkingCopies = "working_copies"
	tableSearch        = "entry_search"
)

const (
	attrDBOperation  = attribute.Key("db.operation.name")
	attrDBCollection = attribute.Key("db.collection.name")
)

// dbSpan starts a client span named component.operation. It carries
// db.system, db.operation.name and, for a non-empty table, db.collection.name.
func dbSpan(
	ctx context.Context,
	tracer trace.Tracer,
	component, table, operation string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{semconv.DBSystemPostgreSQL, attrDBOperation.String(operation)}
	if table != "" {
		attrs = append(attrs, attrDBCollection.String(table))
	}
	opts = append([]trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	}, opts...)
	return otel.StartSpan(ctx, tracer, component+"."+operation, opts...)
}

func (s *Store) startSpan(
	ctx context.Context, table, operation string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	return dbSpan(ctx, s.tracer, "dbStore", table, operation, opts...)
}

func (idx *SearchIndex) startSpan(
	ctx context.Context, operation string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	return dbSpan(ctx, idx.tracer, "dbSearch", tableSearch, operation, opts...)
}
