package entries

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/otel"
	"github.com/stacklok/entries-server/internal/service"
)

const (
	// ServiceTracerName is the name used for the entry service tracer
	ServiceTracerName = "github.com/stacklok/entries-server/service/entries"
)

// startSpan starts a new span for an entry operation.
// If the tracer is nil, it returns a no-op span from the context.
func (s *entryService) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.StartSpan(ctx, s.tracer, name, opts...)
}

// userAttributes tags the span with the acting user and collection
func userAttributes(span trace.Span, user *service.ActingUser, c *service.Collection) {
	if user != nil {
		span.SetAttributes(otel.AttrUserID.String(user.ID))
	}
	if c != nil {
		span.SetAttributes(
			otel.AttrCollection.String(c.Handle),
			otel.AttrRevisions.Bool(c.Revisions),
		)
	}
}
