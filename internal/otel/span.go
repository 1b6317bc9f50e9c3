// Package otel provides the span helpers shared by the entry service and its
// stores.
package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/service"
)

// Attribute keys used across the entry service, stores and HTTP layer.
const (
	AttrCollection  = attribute.Key("entries.collection")
	AttrSite        = attribute.Key("entries.site")
	AttrEntryID     = attribute.Key("entries.entry_id")
	AttrBlueprint   = attribute.Key("entries.blueprint")
	AttrUserID      = attribute.Key("entries.user_id")
	AttrRevisions   = attribute.Key("entries.revisions")
	AttrHasSearch   = attribute.Key("entries.has_search")
	AttrPage        = attribute.Key("pagination.page")
	AttrPageSize    = attribute.Key("pagination.limit")
	AttrResultCount = attribute.Key("result.count")
	AttrOutcome     = attribute.Key("entries.outcome")
)

// outcomes maps the errors an editor can cause to a short outcome name. These
// are answered with 4xx and do not mark the span as failed.
var outcomes = []struct {
	err  error
	name string
}{
	{service.ErrValidationFailed, "validation_failed"},
	{service.ErrAuthorizationDenied, "unauthorized"},
	{service.ErrEntryNotFound, "entry_not_found"},
	{service.ErrCollectionNotFound, "collection_not_found"},
	{service.ErrSiteNotFound, "site_not_found"},
	{service.ErrRevisionNotFound, "revision_not_found"},
	{service.ErrWorkingCopyNotFound, "working_copy_not_found"},
	{service.ErrRevisionsDisabled, "revisions_disabled"},
}

// StartSpan starts a span on tracer, or returns the span already in ctx when
// tracer is nil.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// Outcome returns the outcome name of an editor-caused error, or "" for
// anything else.
func Outcome(err error) string {
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.name
		}
	}
	return ""
}

// RecordError annotates span with err. Editor-caused errors only set the
// outcome attribute. Other errors are recorded as exception events and set a
// generic error status, keeping queries and connection details out of the
// status description.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	if outcome := Outcome(err); outcome != "" {
		span.SetAttributes(AttrOutcome.String(outcome))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}
