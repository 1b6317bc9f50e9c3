package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func newTestMeterProvider(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

// newInstrumentedRouter mounts the instrumentation in front of a router with
// one entries route answering with status
func newInstrumentedRouter(t *testing.T, h *HTTPInstrumentation, status int) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Use(h.Middleware)
	r.Get("/collections/{collection}/entries/{entry}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
	return r
}

func TestHTTPInstrumentation_PassThrough(t *testing.T) {
	t.Parallel()

	h, err := NewHTTPInstrumentation(nil, nil)
	require.NoError(t, err)

	var nilInstrumentation *HTTPInstrumentation
	for _, inst := range []*HTTPInstrumentation{h, nilInstrumentation} {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.Header().Set("X-Custom", "value")
			w.WriteHeader(http.StatusCreated)
		})

		rr := httptest.NewRecorder()
		inst.Middleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/entries", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "value", rr.Header().Get("X-Custom"))
	}
}

func TestHTTPInstrumentation_Spans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		path       string
		wantName   string
		wantStatus codes.Code
	}{
		{
			name:       "success uses route pattern",
			status:     http.StatusOK,
			path:       "/collections/blog/entries/e1",
			wantName:   "GET /collections/{collection}/entries/{entry}",
			wantStatus: codes.Ok,
		},
		{
			name:       "client error",
			status:     http.StatusUnprocessableEntity,
			path:       "/collections/blog/entries/e1",
			wantName:   "GET /collections/{collection}/entries/{entry}",
			wantStatus: codes.Error,
		},
		{
			name:       "unmatched route",
			status:     http.StatusOK,
			path:       "/nowhere",
			wantName:   "GET " + unknownRoute,
			wantStatus: codes.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			exporter, tp := newTestTracerProvider(t)
			h, err := NewHTTPInstrumentation(tp, nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			newInstrumentedRouter(t, h, tt.status).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantName, spans[0].Name)
			assert.Equal(t, tt.wantStatus, spans[0].Status.Code)
		})
	}
}

func TestHTTPInstrumentation_SpanAttributes(t *testing.T) {
	t.Parallel()
	exporter, tp := newTestTracerProvider(t)
	h, err := NewHTTPInstrumentation(tp, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/collections/blog/entries/e1", nil)
	req.Header.Set("User-Agent", "cp/1.0")
	rr := httptest.NewRecorder()
	newInstrumentedRouter(t, h, http.StatusOK).ServeHTTP(rr, req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "GET", attrs[string(semconv.HTTPRequestMethodKey)])
	assert.Equal(t, "/collections/blog/entries/e1", attrs[string(semconv.URLPathKey)])
	assert.Equal(t, "/collections/{collection}/entries/{entry}", attrs[string(semconv.HTTPRouteKey)])
	assert.Equal(t, int64(200), attrs[string(semconv.HTTPResponseStatusCodeKey)])
	assert.Equal(t, "cp/1.0", attrs[string(semconv.UserAgentOriginalKey)])
	assert.Equal(t, "blog", attrs["entries.collection"])
}

func TestHTTPInstrumentation_PropagatesParent(t *testing.T) {
	t.Parallel()
	exporter, tp := newTestTracerProvider(t)
	h, err := NewHTTPInstrumentation(tp, nil)
	require.NoError(t, err)
	h.propagator = propagation.TraceContext{}

	req := httptest.NewRequest(http.MethodGet, "/collections/blog/entries/e1", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	newInstrumentedRouter(t, h, http.StatusOK).ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent.SpanID().String())
}

func TestHTTPInstrumentation_Metrics(t *testing.T) {
	t.Parallel()
	reader, mp := newTestMeterProvider(t)
	h, err := NewHTTPInstrumentation(nil, mp)
	require.NoError(t, err)

	router := newInstrumentedRouter(t, h, http.StatusOK)
	for range 3 {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/collections/blog/entries/e1", nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	got := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			got[m.Name] = m
		}
	}

	counter, ok := got["entries_http_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected sum data type")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(3), counter.DataPoints[0].Value)

	route, ok := counter.DataPoints[0].Attributes.Value("route")
	require.True(t, ok)
	assert.Equal(t, "/collections/{collection}/entries/{entry}", route.AsString())

	active, ok := got["entries_http_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected up-down counter data type")
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(0), active.DataPoints[0].Value)

	_, ok = got["entries_http_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok, "expected histogram data type")
}
