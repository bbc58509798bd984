package config

import (
	"os"
	"time"
)

// Default values for configuration fields.
const (
	// Gateway defaults
	DefaultClusterName = "mercator"

	// Interface defaults
	DefaultInterfaceAlias  = "default"
	DefaultListenAddress   = "127.0.0.1:8443"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 10485760 // 10MB

	// TLS defaults
	DefaultTLSMinVersion      = "1.2"
	DefaultTLSReloadInterval  = 5 * time.Minute
	DefaultMTLSClientAuthType = "verify_if_given"

	// API defaults
	DefaultAPIsDir      = "apis"
	DefaultAPIsDebounce = 250 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "mercator"
	DefaultMetricsSubsystem   = "gateway"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "mercator-gateway"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultHealthEnabled      = true
	DefaultLivenessPath       = "/health"
	DefaultReadinessPath      = "/ready"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultDurationBuckets are the histogram buckets, in seconds, used when
// none are configured.
var DefaultDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := seeded()
	ApplyDefaults(cfg)
	return cfg
}

// seeded returns a configuration whose boolean flags hold their defaults.
func seeded() *Config {
	return &Config{
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Health:  HealthConfig{Enabled: DefaultHealthEnabled},
		},
	}
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Gateway defaults
	if cfg.Gateway.ClusterName == "" {
		cfg.Gateway.ClusterName = DefaultClusterName
	}
	if cfg.Gateway.NodeName == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.Gateway.NodeName = host
		}
	}

	// Interface defaults
	if len(cfg.Interfaces) == 0 {
		cfg.Interfaces = []InterfaceConfig{{Alias: DefaultInterfaceAlias}}
	}
	for i := range cfg.Interfaces {
		applyInterfaceDefaults(&cfg.Interfaces[i])
	}

	// API defaults
	if cfg.APIs.Dir == "" {
		cfg.APIs.Dir = DefaultAPIsDir
	}
	if cfg.APIs.Debounce == 0 {
		cfg.APIs.Debounce = DefaultAPIsDebounce
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyInterfaceDefaults(iface *InterfaceConfig) {
	if iface.ListenAddress == "" {
		iface.ListenAddress = DefaultListenAddress
	}
	if iface.ReadTimeout == 0 {
		iface.ReadTimeout = DefaultReadTimeout
	}
	if iface.WriteTimeout == 0 {
		iface.WriteTimeout = DefaultWriteTimeout
	}
	if iface.IdleTimeout == 0 {
		iface.IdleTimeout = DefaultIdleTimeout
	}
	if iface.ShutdownTimeout == 0 {
		iface.ShutdownTimeout = DefaultShutdownTimeout
	}
	if iface.MaxHeaderBytes == 0 {
		iface.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if iface.MaxBodyBytes == 0 {
		iface.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// TLS defaults only matter for enabled TLS, but keeping them set
	// makes the rendered configuration explicit.
	if iface.TLS.MinVersion == "" {
		iface.TLS.MinVersion = DefaultTLSMinVersion
	}
	if iface.TLS.ReloadInterval == 0 {
		iface.TLS.ReloadInterval = DefaultTLSReloadInterval
	}
	if iface.TLS.MTLS.ClientAuthType == "" {
		iface.TLS.MTLS.ClientAuthType = DefaultMTLSClientAuthType
	}
}

// applyTelemetryDefaults applies defaults to telemetry configuration.
// Enabled flags are left alone: a zero bool cannot be told apart from an
// explicit false, so LoadConfig and Default seed them before decoding.
func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	m := &t.Metrics
	if m.Path == "" {
		m.Path = DefaultMetricsPath
	}
	if m.Namespace == "" {
		m.Namespace = DefaultMetricsNamespace
	}
	if m.Subsystem == "" {
		m.Subsystem = DefaultMetricsSubsystem
	}
	if len(m.DurationBuckets) == 0 {
		m.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	tr := &t.Tracing
	if tr.Sampler == "" {
		tr.Sampler = DefaultTracingSampler
	}
	if tr.SampleRatio == 0 {
		tr.SampleRatio = DefaultTracingSampleRatio
	}
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultTracingServiceName
	}
	if tr.Timeout == 0 {
		tr.Timeout = DefaultTracingTimeout
	}

	h := &t.Health
	if h.LivenessPath == "" {
		h.LivenessPath = DefaultLivenessPath
	}
	if h.ReadinessPath == "" {
		h.ReadinessPath = DefaultReadinessPath
	}
	if h.CheckTimeout == 0 {
		h.CheckTimeout = DefaultHealthCheckTimeout
	}
}
