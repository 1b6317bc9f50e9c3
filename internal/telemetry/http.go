package telemetry

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	entriesotel "github.com/stacklok/entries-server/internal/otel"
)

const (
	// HTTPInstrumentationName names the HTTP tracer and meter
	HTTPInstrumentationName = "github.com/stacklok/entries-server/http"

	// unknownRoute replaces unmatched paths to keep attribute cardinality bounded
	unknownRoute = "unknown_route"
)

// HTTPInstrumentation traces requests and records request metrics.
type HTTPInstrumentation struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator

	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewHTTPInstrumentation creates the instrumentation. Either provider may be
// nil, which disables that half.
func NewHTTPInstrumentation(tp trace.TracerProvider, mp metric.MeterProvider) (*HTTPInstrumentation, error) {
	h := &HTTPInstrumentation{}
	if tp != nil {
		h.tracer = tp.Tracer(HTTPInstrumentationName)
		h.propagator = otel.GetTextMapPropagator()
	}
	if mp == nil {
		return h, nil
	}

	meter := mp.Meter(HTTPInstrumentationName)
	var err error
	if h.requestDuration, err = meter.Float64Histogram(
		"entries_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}
	if h.requestsTotal, err = meter.Int64Counter(
		"entries_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	if h.activeRequests, err = meter.Int64UpDownCounter(
		"entries_http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create active request counter: %w", err)
	}
	return h, nil
}

// Middleware wraps next with the configured tracing and metrics
func (h *HTTPInstrumentation) Middleware(next http.Handler) http.Handler {
	if h == nil || (h.tracer == nil && h.requestsTotal == nil) {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// r.Context() may be cancelled once ServeHTTP returns
		ctx := r.Context()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		var span trace.Span
		if h.tracer != nil {
			ctx = h.propagator.Extract(ctx, propagation.HeaderCarrier(r.Header))
			ctx, span = h.tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
					semconv.UserAgentOriginal(r.UserAgent()),
				),
			)
			defer span.End()
			r = r.WithContext(ctx)
		}

		if h.activeRequests != nil {
			h.activeRequests.Add(ctx, 1)
		}
		next.ServeHTTP(ww, r)
		if h.activeRequests != nil {
			h.activeRequests.Add(ctx, -1)
		}

		// chi fills the route pattern and URL params during routing
		route := routePattern(r)
		status := ww.Status()
		collection := chi.URLParam(r, "collection")

		if span != nil {
			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCode(status),
			)
			if collection != "" {
				span.SetAttributes(entriesotel.AttrCollection.String(collection))
			}
			if status >= http.StatusBadRequest {
				span.SetStatus(codes.Error, http.StatusText(status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		}

		if h.requestsTotal != nil {
			attrs := metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("route", route),
				attribute.String("status_code", strconv.Itoa(status)),
			)
			h.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
			h.requestsTotal.Add(ctx, 1, attrs)
		}
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unknownRoute
}
