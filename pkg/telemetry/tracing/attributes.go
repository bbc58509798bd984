package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/gateway/pkg/gateway"
)

// Attribute keys. Gateway specific keys use the "mercator.*" namespace.
const (
	AttrInterface   = "mercator.interface"
	AttrAPI         = "mercator.api.name"
	AttrContextRoot = "mercator.api.context_root"
	AttrRequestID   = "mercator.request_id"
	AttrAccount     = "mercator.account"

	AttrFunctionName = "mercator.function.name"
	AttrFunctionID   = "mercator.function.id"

	AttrResultStatus  = "mercator.result.status"
	AttrResultMessage = "mercator.result.message"

	AttrErrorMessage = "error.message"

	AttrHTTPMethod     = "http.request.method"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrURLPath        = "url.path"
)

// SetResult records r on span. A failed result sets the span status to
// Error, a succeeded one to Ok. A stopped result leaves the status unset.
func SetResult(span trace.Span, r gateway.Result) {
	attrs := []attribute.KeyValue{attribute.String(AttrResultStatus, r.Status().String())}
	if msg := r.Message(); msg != "" {
		attrs = append(attrs, attribute.String(AttrResultMessage, msg))
	}
	span.SetAttributes(attrs...)

	switch {
	case r.IsSucceeded():
		span.SetStatus(codes.Ok, "")
	case r.IsFailed():
		span.SetStatus(codes.Error, r.Root().Message())
	}
}

// AddEvent adds a named event to the span with optional attributes.
//
//	AddEvent(span, "catalog_miss", attribute.String("path", r.URL.Path))
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 6),
	}
}

// WithInterface adds the interface alias.
func (ab *AttributeBuilder) WithInterface(alias string) *AttributeBuilder {
	if alias != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrInterface, alias))
	}
	return ab
}

// WithAPI adds the api name and context root.
func (ab *AttributeBuilder) WithAPI(name, contextRoot string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrAPI, name))
	if contextRoot != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrContextRoot, contextRoot))
	}
	return ab
}

// WithRequest adds the request id and, when known, the account name.
func (ab *AttributeBuilder) WithRequest(requestID, account string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrRequestID, requestID))
	if account != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrAccount, account))
	}
	return ab
}

// WithFunction adds the function name and id.
func (ab *AttributeBuilder) WithFunction(fn gateway.Function) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrFunctionName, fn.Name()),
		attribute.String(AttrFunctionID, fn.ID()),
	)
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value any) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
