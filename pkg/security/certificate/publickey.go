package certificate

import (
	"crypto/dsa" // #nosec G505 - read-only inspection of legacy keys
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
)

// PublicKey describes the subject public key of a certificate.
type PublicKey struct {
	algorithm string
	size      int
}

func newPublicKey(c *x509.Certificate) PublicKey {
	switch k := c.PublicKey.(type) {
	case *rsa.PublicKey:
		return PublicKey{algorithm: "RSA", size: k.N.BitLen()}
	case *ecdsa.PublicKey:
		return PublicKey{algorithm: "ECDSA", size: k.Curve.Params().BitSize}
	case ed25519.PublicKey:
		return PublicKey{algorithm: "Ed25519", size: 256}
	case *dsa.PublicKey: //nolint:staticcheck
		return PublicKey{algorithm: "DSA", size: k.Y.BitLen()}
	default:
		return PublicKey{algorithm: "UNKNOWN", size: -1}
	}
}

// Algorithm returns the key algorithm name, or "UNKNOWN".
func (k PublicKey) Algorithm() string { return k.algorithm }

// Size returns the key length in bits, or -1 when unknown.
func (k PublicKey) Size() int { return k.size }

func (k PublicKey) String() string { return k.algorithm }
