// Package telemetry groups the observability packages of the gateway.
//
// # Components
//
//   - logging: slog logger construction, credential redaction and
//     request scoped context fields
//   - metrics: Prometheus request and function outcome metrics
//   - tracing: OpenTelemetry spans per api execution and function
//   - health: liveness and readiness endpoints
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// The collector and the tracer observe function executions through
// gateway.WithObserver; the server wires both for every request.
package telemetry
