package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "interfaces[0].listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Has reports whether a field error exists for field.
func (e ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
//
// Per-field rules are struct tags checked with go-playground/validator;
// rules spanning several fields are checked here.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateTags(cfg)...)
	errs = append(errs, validateInterfaces(cfg.Interfaces)...)
	errs = append(errs, validateAPIs(&cfg.APIs)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateTags runs the struct tag rules.
func validateTags(cfg *Config) []FieldError {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "config", Message: err.Error()}}
	}

	errs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, FieldError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
			Message: tagMessage(fe),
		})
	}
	return errs
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is required"
	case "hostname_port":
		return fmt.Sprintf("invalid address %q: must be host:port", fe.Value())
	case "oneof":
		return fmt.Sprintf("invalid value %q: must be one of %s", fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

// validateInterfaces checks uniqueness and TLS file requirements.
func validateInterfaces(ifaces []InterfaceConfig) []FieldError {
	var errs []FieldError

	if len(ifaces) == 0 {
		errs = append(errs, FieldError{
			Field:   "interfaces",
			Message: "at least one interface is required",
		})
	}

	aliases := make(map[string]int)
	addrs := make(map[string]int)
	for i, iface := range ifaces {
		field := fmt.Sprintf("interfaces[%d]", i)

		if iface.Alias != "" {
			if j, ok := aliases[iface.Alias]; ok {
				errs = append(errs, FieldError{
					Field:   field + ".alias",
					Message: fmt.Sprintf("alias %q already used by interfaces[%d]", iface.Alias, j),
				})
			} else {
				aliases[iface.Alias] = i
			}
		}
		if iface.ListenAddress != "" {
			if j, ok := addrs[iface.ListenAddress]; ok {
				errs = append(errs, FieldError{
					Field:   field + ".listen_address",
					Message: fmt.Sprintf("address %q already used by interfaces[%d]", iface.ListenAddress, j),
				})
			} else {
				addrs[iface.ListenAddress] = i
			}
		}

		errs = append(errs, validateTLS(field+".tls", &iface.TLS)...)
	}

	return errs
}

// validateTLS checks the files required by enabled TLS and mTLS.
func validateTLS(field string, cfg *TLSConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled {
		if cfg.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   field + ".cert_file",
				Message: "certificate file is required when TLS is enabled",
			})
		}
		if cfg.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   field + ".key_file",
				Message: "key file is required when TLS is enabled",
			})
		}
	}

	if cfg.MTLS.Enabled {
		if !cfg.Enabled {
			errs = append(errs, FieldError{
				Field:   field + ".mtls.enabled",
				Message: "mTLS requires TLS to be enabled",
			})
		}
		if cfg.MTLS.ClientCAFile == "" && cfg.MTLS.ClientAuthType != "request" {
			errs = append(errs, FieldError{
				Field:   field + ".mtls.client_ca_file",
				Message: "client CA file is required to verify client certificates",
			})
		}
	}

	return errs
}

// validateAPIs validates the api definition settings.
func validateAPIs(cfg *APIsConfig) []FieldError {
	var errs []FieldError

	if cfg.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "apis.dir",
			Message: "api definition directory is required",
		})
	}

	return errs
}

// validateTelemetry validates endpoint paths and tracing settings.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	paths := make(map[string]string)
	checkPath := func(field, path string) {
		if path == "" {
			errs = append(errs, FieldError{Field: field, Message: "path is required"})
			return
		}
		if path[0] != '/' {
			errs = append(errs, FieldError{Field: field, Message: "path must start with /"})
			return
		}
		if other, ok := paths[path]; ok {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("path %q already used by %s", path, other)})
			return
		}
		paths[path] = field
	}

	if cfg.Metrics.Enabled {
		checkPath("telemetry.metrics.path", cfg.Metrics.Path)
	}
	if cfg.Health.Enabled {
		checkPath("telemetry.health.liveness_path", cfg.Health.LivenessPath)
		checkPath("telemetry.health.readiness_path", cfg.Health.ReadinessPath)
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}

	for i, b := range cfg.Metrics.DurationBuckets {
		if b <= 0 || (i > 0 && b <= cfg.Metrics.DurationBuckets[i-1]) {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.duration_buckets",
				Message: "buckets must be positive and increasing",
			})
			break
		}
	}

	return errs
}
