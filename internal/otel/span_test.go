package otel

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/service"
)

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, trace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestStartSpan(t *testing.T) {
	t.Parallel()

	t.Run("nil tracer keeps the span in context", func(t *testing.T) {
		t.Parallel()
		exporter, tp := newTestTracerProvider(t)
		parentCtx, parent := tp.Tracer("entries").Start(context.Background(), "http.request")

		ctx, span := StartSpan(parentCtx, nil, "entryService.ListEntries")
		assert.Equal(t, parentCtx, ctx)
		assert.Equal(t, parent.SpanContext(), span.SpanContext())
		parent.End()

		require.Len(t, exporter.GetSpans(), 1)
	})

	t.Run("nil tracer without parent is a no-op", func(t *testing.T) {
		t.Parallel()
		_, span := StartSpan(context.Background(), nil, "entryService.ListEntries")
		assert.False(t, span.SpanContext().IsValid())
		assert.NotPanics(t, func() { span.End() })
	})

	t.Run("tracer records name and attributes", func(t *testing.T) {
		t.Parallel()
		exporter, tp := newTestTracerProvider(t)
		_, span := StartSpan(context.Background(), tp.Tracer("entries"), "entryService.StoreEntry",
			trace.WithAttributes(AttrCollection.String("blog"), AttrSite.String("default")))
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "entryService.StoreEntry", spans[0].Name)
		assert.Contains(t, spans[0].Attributes, AttrCollection.String("blog"))
		assert.Contains(t, spans[0].Attributes, AttrSite.String("default"))
	})
}

func TestRecordError_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantEvent  bool
	}{
		{name: "nil error leaves span untouched", err: nil, wantStatus: codes.Unset},
		{name: "store failure", err: errors.New("connection reset"), wantStatus: codes.Error, wantEvent: true},
		{name: "wrapped store failure", err: fmt.Errorf("save entry: %w", errors.New("deadlock")), wantStatus: codes.Error, wantEvent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			exporter, tp := newTestTracerProvider(t)
			_, span := tp.Tracer("entries").Start(context.Background(), "dbStore.SaveEntry")
			RecordError(span, tt.err)
			span.End()

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status.Code)
			if !tt.wantEvent {
				assert.Empty(t, spans[0].Events)
				return
			}
			assert.Equal(t, "operation failed", spans[0].Status.Description)
			require.Len(t, spans[0].Events, 1)
			assert.Equal(t, "exception", spans[0].Events[0].Name)
		})
	}

	assert.NotPanics(t, func() { RecordError(nil, errors.New("x")) })
}

func TestRecordError_EditorOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{name: "validation", err: &service.ValidationError{Fields: map[string][]string{"slug": {"taken"}}}, outcome: "validation_failed"},
		{name: "wrapped not found", err: fmt.Errorf("find: %w", service.ErrEntryNotFound), outcome: "entry_not_found"},
		{name: "unauthorized", err: service.ErrAuthorizationDenied, outcome: "unauthorized"},
		{name: "revisions disabled", err: service.ErrRevisionsDisabled, outcome: "revisions_disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)
			_, span := tp.Tracer("test-tracer").Start(context.Background(), "entryService.UpdateEntry")
			RecordError(span, tt.err)
			span.End()

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Unset, spans[0].Status.Code)
			assert.Empty(t, spans[0].Events)
			assert.Contains(t, spans[0].Attributes, AttrOutcome.String(tt.outcome))
		})
	}
}

func TestOutcome_UnknownError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Outcome(errors.New("connection reset")))
	assert.Empty(t, Outcome(nil))
}
