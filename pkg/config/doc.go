// Package config provides configuration management for the gateway.
//
// Configuration is read from a YAML file, completed with defaults,
// optionally overridden from the environment and validated before use.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("gateway.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("gateway.yaml")
//
// A minimal file only needs the interfaces it serves:
//
//	interfaces:
//	  - alias: public
//	    listen_address: "0.0.0.0:8443"
//	    tls:
//	      enabled: true
//	      cert_file: /etc/gateway/tls.crt
//	      key_file: /etc/gateway/tls.key
//	apis:
//	  dir: /etc/gateway/apis
//	  watch: true
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GATEWAY_SECTION_FIELD:
//
//   - GATEWAY_APIS_DIR overrides apis.dir
//   - GATEWAY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - GATEWAY_INTERFACES_PUBLIC_LISTEN_ADDRESS overrides listen_address of
//     the interface with alias "public"
//
// Environment variables always take precedence over file-based configuration.
//
// # Validation
//
// Validate collects every problem into a single ValidationError. Single
// field rules (required values, host:port addresses, enumerations, ranges)
// are struct tags checked with go-playground/validator; rules that span
// fields, such as unique interface aliases or TLS files required by an
// enabled TLS block, are checked in code.
//
// # Singleton
//
// Initialize, GetConfig and MustGetConfig give the command line entry
// points a process-wide configuration. Library code takes a *Config.
package config
