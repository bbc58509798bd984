package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "GATEWAY_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration without applying defaults. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := seeded()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention GATEWAY_SECTION_FIELD (e.g., GATEWAY_APIS_DIR).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Gateway overrides
	envString("CLUSTER_NAME", &cfg.Gateway.ClusterName)
	envString("NODE_NAME", &cfg.Gateway.NodeName)

	// Interface overrides, addressed by alias
	for i := range cfg.Interfaces {
		applyInterfaceEnvOverrides(&cfg.Interfaces[i])
	}

	// API overrides
	envString("APIS_DIR", &cfg.APIs.Dir)
	envBool("APIS_WATCH", &cfg.APIs.Watch)
	envDuration("APIS_DEBOUNCE", &cfg.APIs.Debounce)

	// Credential overrides
	envString("CREDENTIALS_FILE", &cfg.Credentials.File)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
	envBool("TELEMETRY_HEALTH_ENABLED", &cfg.Telemetry.Health.Enabled)
}

// applyInterfaceEnvOverrides applies overrides of the form
// GATEWAY_INTERFACES_<ALIAS>_<FIELD>, where ALIAS is the uppercase alias
// with '-' and '.' replaced by '_'.
func applyInterfaceEnvOverrides(iface *InterfaceConfig) {
	prefix := "INTERFACES_" + envName(iface.Alias) + "_"

	envString(prefix+"LISTEN_ADDRESS", &iface.ListenAddress)
	envDuration(prefix+"READ_TIMEOUT", &iface.ReadTimeout)
	envDuration(prefix+"WRITE_TIMEOUT", &iface.WriteTimeout)
	envDuration(prefix+"IDLE_TIMEOUT", &iface.IdleTimeout)
	envBool(prefix+"TLS_ENABLED", &iface.TLS.Enabled)
	envString(prefix+"TLS_CERT_FILE", &iface.TLS.CertFile)
	envString(prefix+"TLS_KEY_FILE", &iface.TLS.KeyFile)
	envBool(prefix+"TLS_MTLS_ENABLED", &iface.TLS.MTLS.Enabled)
	envString(prefix+"TLS_MTLS_CLIENT_CA_FILE", &iface.TLS.MTLS.ClientCAFile)
}

func envName(alias string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(alias))
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
