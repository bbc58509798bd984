package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/gateway/pkg/config"
)

// FunctionMetrics tracks policy function executions.
//
// Metrics:
//   - <ns>_<sub>_function_executions_total{api, function, status}
//   - <ns>_<sub>_function_duration_seconds{api, function}
type FunctionMetrics struct {
	executionsTotal   *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
}

// NewFunctionMetrics creates and registers function metrics with the provided registry.
func NewFunctionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *FunctionMetrics {
	fm := &FunctionMetrics{
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "function_executions_total",
				Help:      "Total number of function executions by result status",
			},
			[]string{"api", "function", "status"},
		),

		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "function_duration_seconds",
				Help:      "Duration of function executions in seconds",
				// Functions run in memory; most finish well below a millisecond
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to 262ms
			},
			[]string{"api", "function"},
		),
	}

	registry.MustRegister(
		fm.executionsTotal,
		fm.executionDuration,
	)

	return fm
}

// RecordExecution records one function execution.
//
//	fm.RecordExecution("shop", "authenticate", "stopped", 40*time.Microsecond)
func (fm *FunctionMetrics) RecordExecution(api, function, status string, duration time.Duration) {
	fm.executionsTotal.WithLabelValues(api, function, status).Inc()
	fm.executionDuration.WithLabelValues(api, function).Observe(duration.Seconds())
}
