package tracing

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/gateway/pkg/telemetry/logging"
)

// Propagator returns the global text map propagator, W3C Trace Context
// and Baggage once a Tracer is enabled.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// Extract extracts trace context from HTTP headers and returns a context
// carrying it. If no trace context is found the original context is
// returned.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Middleware returns an HTTP middleware starting a server span for each
// request received on interface iface. The span continues the trace of an
// incoming traceparent header, and its trace id is added to the logging
// context.
func (t *Tracer) Middleware(iface string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := Extract(r.Context(), r.Header)
			ctx, span := t.Start(ctx, "HTTP "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String(AttrHTTPMethod, r.Method),
					attribute.String(AttrURLPath, r.URL.Path),
				),
				NewAttributeBuilder().WithInterface(iface).Build(),
			)
			defer span.End()

			if id := TraceID(ctx); id != "" {
				ctx = logging.WithTraceID(ctx, id)
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			span.SetAttributes(attribute.Int(AttrHTTPStatusCode, status))
		})
	}
}
