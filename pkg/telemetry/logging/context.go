package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// APIKey is the context key for the name of the api serving a request.
	APIKey contextKey = "api"

	// InterfaceKey is the context key for the interface alias a request
	// arrived on.
	InterfaceKey contextKey = "interface"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"
)

// contextKeys is the order fields are added by FromContext.
var contextKeys = []contextKey{RequestIDKey, InterfaceKey, APIKey, TraceIDKey}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return get(ctx, RequestIDKey)
}

// WithAPI adds the api name to the context.
func WithAPI(ctx context.Context, api string) context.Context {
	return context.WithValue(ctx, APIKey, api)
}

// GetAPI retrieves the api name from the context.
func GetAPI(ctx context.Context) string {
	return get(ctx, APIKey)
}

// WithInterface adds the interface alias to the context.
func WithInterface(ctx context.Context, alias string) context.Context {
	return context.WithValue(ctx, InterfaceKey, alias)
}

// GetInterface retrieves the interface alias from the context.
func GetInterface(ctx context.Context) string {
	return get(ctx, InterfaceKey)
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	return get(ctx, TraceIDKey)
}

func get(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// Fields returns the logging fields stored in ctx as key-value pairs.
func Fields(ctx context.Context) []any {
	var fields []any
	for _, key := range contextKeys {
		if v := get(ctx, key); v != "" {
			fields = append(fields, string(key), v)
		}
	}
	return fields
}

// FromContext returns logger with the fields stored in ctx. A nil logger
// uses slog.Default().
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if fields := Fields(ctx); len(fields) > 0 {
		return logger.With(fields...)
	}
	return logger
}
