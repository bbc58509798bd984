// Package certificate provides immutable views of X.509 certificates,
// their distinguished names and public keys, as exposed to policy
// templates.
//
// Values are computed once at construction. A Certificate never holds a
// live handle to a keystore or TLS session and is safe to share between
// goroutines.
package certificate

import (
	"crypto/md5" // #nosec G501 - fingerprint only, not used for integrity
	"crypto/sha1" // #nosec G505 - fingerprint only, not used for integrity
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNoCertificate is returned when PEM input holds no certificate block.
var ErrNoCertificate = errors.New("certificate: no certificate found")

// Certificate is an immutable view of an X.509 certificate.
type Certificate struct {
	cert    *x509.Certificate
	subject Name
	issuer  Name
	key     PublicKey
	md5     string
	sha1    string
	sha256  string
}

// New wraps c. It returns nil when c is nil.
func New(c *x509.Certificate) *Certificate {
	if c == nil {
		return nil
	}
	md5sum := md5.Sum(c.Raw)   // #nosec G401
	sha1sum := sha1.Sum(c.Raw) // #nosec G401
	sha256sum := sha256.Sum256(c.Raw)
	return &Certificate{
		cert:    c,
		subject: Name{name: c.Subject},
		issuer:  Name{name: c.Issuer},
		key:     newPublicKey(c),
		md5:     hex.EncodeToString(md5sum[:]),
		sha1:    hex.EncodeToString(sha1sum[:]),
		sha256:  hex.EncodeToString(sha256sum[:]),
	}
}

// Chain wraps every certificate of certs, preserving order.
func Chain(certs []*x509.Certificate) []*Certificate {
	if len(certs) == 0 {
		return nil
	}
	out := make([]*Certificate, 0, len(certs))
	for _, c := range certs {
		if c == nil {
			continue
		}
		out = append(out, New(c))
	}
	return out
}

// Parse parses a single DER encoded certificate.
func Parse(der []byte) (*Certificate, error) {
	c, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	return New(c), nil
}

// ParsePEM parses every CERTIFICATE block in data. Other block types are
// skipped.
func ParsePEM(data []byte) ([]*Certificate, error) {
	var out []*Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := Parse(block.Bytes)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, ErrNoCertificate
	}
	return out, nil
}

// LoadFile reads the PEM encoded certificates stored at path.
func LoadFile(path string) ([]*Certificate, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate file %s: %w", path, err)
	}
	certs, err := ParsePEM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return certs, nil
}

// X509 returns the underlying certificate.
func (c *Certificate) X509() *x509.Certificate { return c.cert }

func (c *Certificate) Subject() Name          { return c.subject }
func (c *Certificate) Issuer() Name           { return c.issuer }
func (c *Certificate) PublicKey() PublicKey   { return c.key }
func (c *Certificate) NotBefore() time.Time   { return c.cert.NotBefore }
func (c *Certificate) NotAfter() time.Time    { return c.cert.NotAfter }
func (c *Certificate) Version() int           { return c.cert.Version }
func (c *Certificate) MD5() string            { return c.md5 }
func (c *Certificate) SHA1() string           { return c.sha1 }
func (c *Certificate) SHA256() string         { return c.sha256 }
func (c *Certificate) DNSNames() []string     { return c.cert.DNSNames }
func (c *Certificate) SignatureAlgorithm() string {
	return c.cert.SignatureAlgorithm.String()
}

// SerialNumber returns the serial number in lower case hex.
func (c *Certificate) SerialNumber() string {
	if c.cert.SerialNumber == nil {
		return ""
	}
	return fmt.Sprintf("%x", c.cert.SerialNumber)
}

// PEM returns the PEM encoding of the certificate.
func (c *Certificate) PEM() string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.cert.Raw}))
}

// String returns the subject distinguished name.
func (c *Certificate) String() string {
	return c.subject.DN()
}

// ValidAt reports an error when t falls outside the validity window.
func (c *Certificate) ValidAt(t time.Time) error {
	if t.Before(c.cert.NotBefore) {
		return fmt.Errorf("certificate is not yet valid (valid from %s)", c.cert.NotBefore.Format(time.RFC3339))
	}
	if t.After(c.cert.NotAfter) {
		return fmt.Errorf("certificate expired on %s", c.cert.NotAfter.Format(time.RFC3339))
	}
	return nil
}

// DaysUntilExpiry returns the whole days between now and NotAfter.
func (c *Certificate) DaysUntilExpiry(now time.Time) int {
	return int(c.cert.NotAfter.Sub(now).Hours() / 24)
}
