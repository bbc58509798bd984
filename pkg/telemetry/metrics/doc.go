// Package metrics provides Prometheus metrics collection for the gateway.
//
// # Metrics Categories
//
//   - Request Metrics: request count, duration and in-flight requests per interface
//   - Function Metrics: function executions and durations per api
//   - Catalog Metrics: number of apis and definition reloads
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// record every function executed by an execution context
//	ec, err := gateway.NewExecutionContext(t, req, resp, gateway.WithObserver(collector))
//
//	// record the request once the response is sent
//	collector.RecordRequest("public", "shop", "succeeded", 200, time.Since(start))
//
//	// expose the metrics
//	router.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// Function labels come from api definitions, which reload at runtime. The
// collector caps distinct api and function pairs with a CardinalityLimiter;
// executions beyond the cap are recorded under the function label "other".
//
// # Thread Safety
//
// All collector methods are safe for concurrent use.
package metrics
