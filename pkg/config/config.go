package config

import "time"

// Config is the root configuration of the gateway.
type Config struct {
	// Gateway identifies this gateway node.
	Gateway GatewayConfig `yaml:"gateway"`

	// Interfaces are the HTTP listeners. Each interface has its own
	// server, address, timeouts and TLS settings. The interface alias is
	// visible to policies as ${transport.interfacealias}.
	Interfaces []InterfaceConfig `yaml:"interfaces" validate:"dive"`

	// APIs configures where api definitions are loaded from.
	APIs APIsConfig `yaml:"apis"`

	// Credentials configures the credential store used by basic
	// authentication with verification enabled.
	Credentials CredentialsConfig `yaml:"credentials"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GatewayConfig identifies the gateway node.
type GatewayConfig struct {
	// ClusterName is the name of the gateway cluster.
	// Default: "mercator"
	ClusterName string `yaml:"cluster_name"`

	// NodeName is the name of this node within the cluster.
	// Default: the host name
	NodeName string `yaml:"node_name"`
}

// InterfaceConfig configures one HTTP listener.
type InterfaceConfig struct {
	// Alias names the interface.
	// Example: "public", "internal"
	Alias string `yaml:"alias" validate:"required"`

	// ListenAddress is the "host:port" to listen on.
	// Default: "127.0.0.1:8443"
	ListenAddress string `yaml:"listen_address" validate:"required,hostname_port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"min=0"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"min=0"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout" validate:"min=0"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes" validate:"min=0,max=10485760"`

	// MaxBodyBytes limits the request body read into the request message.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes" validate:"min=0"`

	// TLS configures transport security for the interface.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS settings of an interface.
type TLSConfig struct {
	// Enabled serves the interface over TLS.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the PEM certificate chain. Required when enabled.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the PEM private key. Required when enabled.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version.
	// Options: "1.2", "1.3"
	// Default: "1.2"
	MinVersion string `yaml:"min_version" validate:"omitempty,oneof=1.2 1.3"`

	// CipherSuites restricts TLS 1.2 cipher suites. Empty uses Go's
	// defaults.
	CipherSuites []string `yaml:"cipher_suites"`

	// ReloadInterval is how often the certificate files are checked for
	// changes. Zero disables reloading.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval" validate:"min=0"`

	// MTLS configures client certificate authentication.
	MTLS MTLSConfig `yaml:"mtls"`
}

// MTLSConfig configures client certificates of an interface.
type MTLSConfig struct {
	// Enabled requests client certificates.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ClientCAFile is the PEM bundle client certificates are verified
	// against.
	ClientCAFile string `yaml:"client_ca_file"`

	// ClientAuthType controls how client certificates are handled.
	// Options: "require", "request", "verify_if_given"
	// Default: "verify_if_given"
	ClientAuthType string `yaml:"client_auth_type" validate:"omitempty,oneof=require request verify_if_given"`
}

// APIsConfig configures the api definition directory.
type APIsConfig struct {
	// Dir holds the api definition files (*.yaml, *.yml).
	// Default: "apis"
	Dir string `yaml:"dir"`

	// Watch reloads definitions when files in Dir change.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period after the last change before a reload.
	// Default: 250ms
	Debounce time.Duration `yaml:"debounce" validate:"min=0"`
}

// CredentialsConfig configures the credential store.
type CredentialsConfig struct {
	// File is a YAML file of username to bcrypt hash entries. Empty
	// disables password verification.
	File string `yaml:"file"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format" validate:"oneof=json text"`

	// AddSource includes file and line in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactKeys are attribute keys whose values are replaced in logs, in
	// addition to the built-in credential keys.
	RedactKeys []string `yaml:"redact_keys"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled serves metrics on every interface.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "mercator"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem.
	// Default: "gateway"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are the histogram buckets for request and function
	// durations, in seconds.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing settings.
type TracingConfig struct {
	// Enabled exports spans of api and function executions.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler" validate:"omitempty,oneof=always never ratio"`

	// SampleRatio is the fraction of traces sampled by the ratio sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio" validate:"min=0,max=1"`

	// Endpoint is the OTLP gRPC collector address.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name of exported spans.
	// Default: "mercator-gateway"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds a single export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
}

// HealthConfig contains health endpoint settings.
type HealthConfig struct {
	// Enabled serves the health endpoints on every interface.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the liveness endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the readiness endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds a single readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout" validate:"min=0"`
}

// Interface returns the interface with the given alias.
func (c *Config) Interface(alias string) (*InterfaceConfig, bool) {
	for i := range c.Interfaces {
		if c.Interfaces[i].Alias == alias {
			return &c.Interfaces[i], true
		}
	}
	return nil, false
}
