package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"mercator-hq/gateway/pkg/config"
)

// Client authentication modes of config.MTLSConfig.
const (
	ClientAuthRequire       = "require"
	ClientAuthRequest       = "request"
	ClientAuthVerifyIfGiven = "verify_if_given"
)

// ServerConfig builds the tls.Config of an interface. The certificate is
// served through the returned reloader; the caller starts it to pick up
// renewed files. Both results are nil when TLS is disabled.
func ServerConfig(cfg config.TLSConfig, logger *slog.Logger) (*tls.Config, *CertificateReloader, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, nil, errors.New("cert_file and key_file are required when TLS is enabled")
	}

	minVersion, err := parseTLSVersion(cfg.MinVersion)
	if err != nil {
		return nil, nil, err
	}
	suites, err := parseCipherSuites(cfg.CipherSuites)
	if err != nil {
		return nil, nil, err
	}

	reloader := NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval, logger)
	if err := reloader.Load(); err != nil {
		return nil, nil, err
	}

	// #nosec G402 - MinVersion is 1.2 or 1.3
	tlsConfig := &tls.Config{
		GetCertificate: reloader.GetCertificateFunc(),
		MinVersion:     minVersion,
		CipherSuites:   suites,
	}

	if cfg.MTLS.Enabled {
		if err := configureMTLS(tlsConfig, cfg.MTLS); err != nil {
			return nil, nil, fmt.Errorf("failed to configure mTLS: %w", err)
		}
	}

	return tlsConfig, reloader, nil
}

func parseTLSVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q (valid: 1.2, 1.3)", v)
	}
}

// parseCipherSuites returns nil for an empty list, which selects Go's
// defaults. TLS 1.3 suites are not configurable and are ignored.
func parseCipherSuites(names []string) ([]uint16, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var suites []uint16
	for _, name := range names {
		id, ok := cipherSuites[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unsupported cipher suite %q (valid: %s)", name, strings.Join(CipherSuiteNames(), ", "))
		}
		if id != 0 {
			suites = append(suites, id)
		}
	}
	return suites, nil
}

// CipherSuiteNames returns the accepted cipher suite names, sorted.
func CipherSuiteNames() []string {
	names := make([]string, 0, len(cipherSuites))
	for name := range cipherSuites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Only AEAD suites are accepted. TLS 1.3 names map to zero.
var cipherSuites = map[string]uint16{
	"TLS_AES_128_GCM_SHA256":       0,
	"TLS_AES_256_GCM_SHA384":       0,
	"TLS_CHACHA20_POLY1305_SHA256": 0,

	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305":    tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305":  tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
}

func configureMTLS(tlsConfig *tls.Config, cfg config.MTLSConfig) error {
	tlsConfig.ClientAuth = parseClientAuthType(cfg.ClientAuthType)

	if cfg.ClientCAFile == "" {
		if tlsConfig.ClientAuth != tls.RequestClientCert {
			return errors.New("client_ca_file is required to verify client certificates")
		}
		return nil
	}

	pool, err := LoadCertPool(cfg.ClientCAFile)
	if err != nil {
		return err
	}
	tlsConfig.ClientCAs = pool
	return nil
}

// LoadCertPool reads a PEM bundle into a certificate pool.
func LoadCertPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}

// parseClientAuthType maps the configured mode. "request" asks for a
// certificate without verifying it; functions can still inspect it.
func parseClientAuthType(mode string) tls.ClientAuthType {
	switch mode {
	case ClientAuthRequire:
		return tls.RequireAndVerifyClientCert
	case ClientAuthRequest:
		return tls.RequestClientCert
	default:
		return tls.VerifyClientCertIfGiven
	}
}
