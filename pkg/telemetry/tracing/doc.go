// Package tracing provides OpenTelemetry tracing for the gateway.
//
// Spans are exported over OTLP gRPC. A traced request produces:
//
//	HTTP GET                  server span, one per request
//	└── api shop              the api execution
//	    ├── function auth     one span per top level function
//	    └── function respond
//
// Incoming W3C traceparent headers are honoured, so the gateway joins the
// trace of its caller. Every sampler respects the sampling decision of the
// parent.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version.Version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	handler = tracer.Middleware("public")(handler)
//
//	ctx, span := tracer.StartAPI(r.Context(), "public", api.Name(), api.ContextRoot())
//	defer span.End()
//	ec, err := gateway.NewExecutionContext(t, req, resp,
//		gateway.WithContext(ctx),
//		gateway.WithObserver(tracer.Observer()))
//
// When tracing is disabled New returns a tracer backed by the noop
// provider.
package tracing
