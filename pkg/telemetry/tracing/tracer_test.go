package tracing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/gateway/pkg/config"
	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/gateway/functions"
	"mercator-hq/gateway/pkg/message"
	"mercator-hq/gateway/pkg/telemetry/logging"
	"mercator-hq/gateway/pkg/transport"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return newWithProvider(&config.TracingConfig{Enabled: true}, provider), sr
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.TracingConfig
		wantErr     bool
		wantEnabled bool
	}{
		{name: "nil config", wantErr: true},
		{
			name:   "disabled",
			config: &config.TracingConfig{Enabled: false, ServiceName: "test"},
		},
		{
			name: "unknown sampler",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Endpoint: "localhost:4317",
			},
			wantErr: true,
		},
		{
			name: "ratio out of range",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerRatio,
				SampleRatio: 1.5,
				Endpoint:    "localhost:4317",
			},
			wantErr: true,
		},
		{
			name: "enabled",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerAlways,
				Endpoint:    "localhost:4317",
				ServiceName: "test",
				Insecure:    true,
				Timeout:     time.Second,
			},
			wantEnabled: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tracer.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.wantEnabled)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = tracer.Shutdown(ctx)
		})
	}
}

func TestNew_DisabledIsNoop(t *testing.T) {
	tracer, err := New(&config.TracingConfig{}, "test")
	if err != nil {
		t.Fatal(err)
	}
	ctx, span := tracer.Start(context.Background(), "op")
	defer span.End()
	if span.IsRecording() {
		t.Error("noop span is recording")
	}
	if TraceID(ctx) != "" || SpanContext(ctx).IsValid() {
		t.Errorf("TraceID() = %q, want empty", TraceID(ctx))
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{strategy: SamplerAlways},
		{strategy: SamplerNever},
		{strategy: SamplerRatio, ratio: 0.25},
		{strategy: "", ratio: 1},
		{strategy: SamplerRatio, ratio: -0.1, wantErr: true},
		{strategy: "probabilistic", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			s, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s == nil {
				t.Error("createSampler() = nil")
			}
		})
	}
}

func TestTracer_Observer(t *testing.T) {
	tracer, sr := newRecordingTracer(t)

	root := gateway.NewTryFunctions("shop",
		functions.NewContinue("check"),
		functions.NewFail("deny", "closed"),
	)
	root.AddOnError(functions.NewFail("recover", "recovery failed"))
	api := gateway.NewAPI("shop", "/shop", root)

	ctx, apiSpan := tracer.StartAPI(context.Background(), "public", api.Name(), api.ContextRoot())
	r := httptest.NewRequest(http.MethodGet, "/shop", nil)
	ec, err := gateway.NewExecutionContext(transport.FromRequest("public", r), message.NewRequest(r, 0), message.NewResponse(),
		gateway.WithContext(ctx),
		gateway.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		gateway.WithObserver(tracer.Observer()))
	if err != nil {
		t.Fatal(err)
	}
	res, err := ec.ExecuteAPI(api)
	if err != nil {
		t.Fatal(err)
	}
	apiSpan.End()
	if !res.IsFailed() {
		t.Fatalf("result = %v, want failed", res)
	}

	spans := sr.Ended()
	if len(spans) != 4 {
		t.Fatalf("ended spans = %d, want 4", len(spans))
	}
	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range spans {
		byName[s.Name()] = s
	}

	shop := byName["api shop"]
	if shop == nil {
		t.Fatal("missing api span")
	}
	if v, _ := attr(shop, AttrResultStatus); v.AsString() != "failed" {
		t.Errorf("api result status = %q", v.AsString())
	}
	if v, _ := attr(shop, AttrInterface); v.AsString() != "public" {
		t.Errorf("api interface = %q", v.AsString())
	}
	if shop.Status().Code != codes.Error || shop.Status().Description != "recovery failed" {
		t.Errorf("api status = %+v", shop.Status())
	}

	tests := []struct {
		name string
		code codes.Code
	}{
		{name: "function check", code: codes.Ok},
		{name: "function deny", code: codes.Error},
		{name: "function recover", code: codes.Error},
	}
	for _, tt := range tests {
		s := byName[tt.name]
		if s == nil {
			t.Errorf("missing span %q", tt.name)
			continue
		}
		if s.Parent().SpanID() != shop.SpanContext().SpanID() {
			t.Errorf("%s is not a child of the api span", tt.name)
		}
		if s.Status().Code != tt.code {
			t.Errorf("%s status = %v, want %v", tt.name, s.Status().Code, tt.code)
		}
		if s.EndTime().Before(s.StartTime()) {
			t.Errorf("%s ends before it starts", tt.name)
		}
	}
}

func TestTracer_Middleware(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer, sr := newRecordingTracer(t)

	var traceID string
	handler := tracer.Middleware("public")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = logging.GetTraceID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/shop/cart", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if traceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("logging trace id = %q", traceID)
	}
	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if got := spans[0].Parent().SpanID().String(); got != "00f067aa0ba902b7" {
		t.Errorf("parent span = %s", got)
	}
	if v, _ := attr(spans[0], AttrHTTPStatusCode); v.AsInt64() != http.StatusTeapot {
		t.Errorf("status attribute = %d", v.AsInt64())
	}
	if v, _ := attr(spans[0], AttrURLPath); v.AsString() != "/shop/cart" {
		t.Errorf("path attribute = %q", v.AsString())
	}
}

func TestSetError(t *testing.T) {
	tracer, sr := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "op")
	SetError(span, nil)
	SetError(span, errors.New("exploded"))
	span.End()

	s := sr.Ended()[0]
	if s.Status().Code != codes.Error || s.Status().Description != "exploded" {
		t.Errorf("status = %+v", s.Status())
	}
	if len(s.Events()) != 1 {
		t.Errorf("events = %d, want the recorded error", len(s.Events()))
	}
}

func TestAttributeBuilder(t *testing.T) {
	attrs := NewAttributeBuilder().
		WithInterface("").
		WithAPI("shop", "").
		WithRequest("req-1", "").
		WithCustom("n", 3).
		WithCustom("d", time.Second).
		Attributes()

	want := map[string]string{
		AttrAPI:       "shop",
		AttrRequestID: "req-1",
		"n":           "3",
		"d":           "1s",
	}
	if len(attrs) != len(want) {
		t.Fatalf("attributes = %v", attrs)
	}
	for _, kv := range attrs {
		if got := kv.Value.Emit(); got != want[string(kv.Key)] {
			t.Errorf("%s = %q, want %q", kv.Key, got, want[string(kv.Key)])
		}
	}
}
