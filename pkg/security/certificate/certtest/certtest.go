// Package certtest generates throwaway certificates for tests.
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Options controls the generated certificate.
type Options struct {
	Subject   pkix.Name
	DNSNames  []string
	NotBefore time.Time
	NotAfter  time.Time
	Serial    int64
	// RSABits selects an RSA key of that size; zero selects ECDSA P-256.
	RSABits int
	// Email and UID are added to the subject as extra attributes.
	Email string
	UID   string
	// Parent signs the certificate; nil makes it self-signed.
	Parent *Pair
}

// Pair is a generated certificate with its private key.
type Pair struct {
	Cert    *x509.Certificate
	Key     any
	CertPEM []byte
	KeyPEM  []byte
}

// Generate returns a certificate built from opts. It fails the test on
// error.
func Generate(t testing.TB, opts Options) *Pair {
	t.Helper()

	var (
		pub any
		key any
		err error
	)
	if opts.RSABits > 0 {
		k, kerr := rsa.GenerateKey(rand.Reader, opts.RSABits)
		if kerr != nil {
			t.Fatalf("generate key: %v", kerr)
		}
		pub, key = &k.PublicKey, k
	} else {
		k, kerr := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if kerr != nil {
			t.Fatalf("generate key: %v", kerr)
		}
		pub, key = &k.PublicKey, k
	}

	if opts.NotBefore.IsZero() {
		opts.NotBefore = time.Now().Add(-time.Hour)
	}
	if opts.NotAfter.IsZero() {
		opts.NotAfter = time.Now().Add(24 * time.Hour)
	}
	if opts.Serial == 0 {
		opts.Serial = 1
	}
	subject := opts.Subject
	if opts.Email != "" {
		subject.ExtraNames = append(subject.ExtraNames, pkix.AttributeTypeAndValue{
			Type:  asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1},
			Value: opts.Email,
		})
	}
	if opts.UID != "" {
		subject.ExtraNames = append(subject.ExtraNames, pkix.AttributeTypeAndValue{
			Type:  asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 1},
			Value: opts.UID,
		})
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(opts.Serial),
		Subject:               subject,
		NotBefore:             opts.NotBefore,
		NotAfter:              opts.NotAfter,
		DNSNames:              opts.DNSNames,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  opts.Parent == nil,
	}

	parent, signer := tmpl, key
	if opts.Parent != nil {
		parent, signer = opts.Parent.Cert, opts.Parent.Key
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signer)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}

	return &Pair{
		Cert:    cert,
		Key:     key,
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
	}
}

// WriteFiles stores the pair as cert.pem and key.pem in dir and returns
// both paths.
func (p *Pair) WriteFiles(t testing.TB, dir string) (certFile, keyFile string) {
	t.Helper()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	if err := os.WriteFile(certFile, p.CertPEM, 0o600); err != nil {
		t.Fatalf("write certificate: %v", err)
	}
	if err := os.WriteFile(keyFile, p.KeyPEM, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return certFile, keyFile
}
