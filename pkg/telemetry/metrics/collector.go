package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/gateway/pkg/config"
	"mercator-hq/gateway/pkg/gateway"
)

// OtherLabel replaces a function name once the cardinality limit is
// reached.
const OtherLabel = "other"

// DefaultMaxCardinality bounds the distinct api and function label pairs.
const DefaultMaxCardinality = 10000

// Collector owns the gateway's Prometheus metrics. A collector created
// from a disabled configuration records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requests  *RequestMetrics
	functions *FunctionMetrics
	catalog   *CatalogMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering its metrics with registry.
// A nil registry creates a new one.
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "mercator",
//		Subsystem: "gateway",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		requests:           NewRequestMetrics(cfg, registry),
		functions:          NewFunctionMetrics(cfg, registry),
		catalog:            NewCatalogMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(DefaultMaxCardinality),
	}
}

// Enabled reports whether the collector records metrics.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// RecordRequest records a completed request. outcome is the status of
// the api result, or "not_found" when no api matched.
func (c *Collector) RecordRequest(iface, api, outcome string, code int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requests.RecordRequest(iface, api, outcome, strconv.Itoa(code), duration)
}

// RequestStarted increments the in-flight gauge of iface and returns the
// function decrementing it.
func (c *Collector) RequestStarted(iface string) func() {
	if !c.config.Enabled {
		return func() {}
	}
	return c.requests.Started(iface)
}

// RecordFunction records one function execution.
func (c *Collector) RecordFunction(api, function, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	if !c.cardinalityLimiter.Allow(api + "\x00" + function) {
		function = OtherLabel
	}
	c.functions.RecordExecution(api, function, status, duration)
}

// ObserveFunction implements gateway.Observer.
func (c *Collector) ObserveFunction(ec *gateway.ExecutionContext, fn gateway.Function, r gateway.Result, elapsed time.Duration) {
	api := ""
	if a := ec.API(); a != nil {
		api = a.Name()
	}
	c.RecordFunction(api, fn.Name(), r.Status().String(), elapsed)
}

// SetAPIs sets the number of apis in the catalog.
func (c *Collector) SetAPIs(n int) {
	if !c.config.Enabled {
		return
	}
	c.catalog.SetAPIs(n)
}

// RecordReload records a catalog reload attempt.
func (c *Collector) RecordReload(err error) {
	if !c.config.Enabled {
		return
	}
	c.catalog.RecordReload(err == nil)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	_, exists := cl.current[labelSet]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
