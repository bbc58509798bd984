package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/gateway/pkg/config"
)

// CatalogMetrics tracks the api catalog.
//
// Metrics:
//   - <ns>_<sub>_apis: number of apis served
//   - <ns>_<sub>_catalog_reloads_total{result}: reload attempts
type CatalogMetrics struct {
	apis    prometheus.Gauge
	reloads *prometheus.CounterVec
}

// NewCatalogMetrics creates and registers catalog metrics with the provided registry.
func NewCatalogMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CatalogMetrics {
	cm := &CatalogMetrics{
		apis: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "apis",
				Help:      "Number of apis in the catalog",
			},
		),

		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_reloads_total",
				Help:      "Total number of api definition reloads by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(cm.apis, cm.reloads)
	return cm
}

// SetAPIs sets the number of apis.
func (cm *CatalogMetrics) SetAPIs(n int) {
	cm.apis.Set(float64(n))
}

// RecordReload records a reload attempt.
func (cm *CatalogMetrics) RecordReload(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	cm.reloads.WithLabelValues(result).Inc()
}
