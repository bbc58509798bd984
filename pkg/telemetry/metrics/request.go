package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/gateway/pkg/config"
)

// RequestMetrics tracks requests served by the gateway interfaces.
//
// Metrics:
//   - <ns>_<sub>_requests_total{interface, api, outcome, code}
//   - <ns>_<sub>_request_duration_seconds{interface, api}
//   - <ns>_<sub>_requests_in_flight{interface}
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of requests by interface, api, outcome and status code",
			},
			[]string{"interface", "api", "outcome", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of requests in seconds, from dispatch to response",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"interface", "api"},
		),

		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
			[]string{"interface"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.inFlight,
	)

	return rm
}

// RecordRequest records a completed request.
func (rm *RequestMetrics) RecordRequest(iface, api, outcome, code string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(iface, api, outcome, code).Inc()
	rm.requestDuration.WithLabelValues(iface, api).Observe(duration.Seconds())
}

// Started increments the in-flight gauge and returns its decrement.
func (rm *RequestMetrics) Started(iface string) func() {
	g := rm.inFlight.WithLabelValues(iface)
	g.Inc()
	return g.Dec
}
