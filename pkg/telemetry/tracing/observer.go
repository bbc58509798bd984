package tracing

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/gateway/pkg/gateway"
)

// Observer returns a gateway.Observer adding a span for each top level
// function of an api. The spans are children of the span in the context
// of the execution context, normally the one started by StartAPI. When the
// api root completes, its result is recorded on that span.
func (t *Tracer) Observer() gateway.Observer {
	return &observer{tracer: t}
}

type observer struct {
	tracer *Tracer
}

func (o *observer) ObserveFunction(ec *gateway.ExecutionContext, fn gateway.Function, r gateway.Result, elapsed time.Duration) {
	switch ec.Depth() {
	case 0:
		span := trace.SpanFromContext(ec.Context())
		account := ""
		if a := ec.Account(); a != nil {
			account = a.Username()
		}
		NewAttributeBuilder().WithRequest(ec.RequestID(), account).Apply(span)
		SetResult(span, r)

	case 1:
		// observers run after the function, so the span is backdated
		end := time.Now()
		_, span := o.tracer.Start(ec.Context(), "function "+fn.Name(),
			trace.WithTimestamp(end.Add(-elapsed)),
			NewAttributeBuilder().WithFunction(fn).Build(),
		)
		SetResult(span, r)
		span.End(trace.WithTimestamp(end))
	}
}
