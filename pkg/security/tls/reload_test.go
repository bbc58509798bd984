package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mercator-hq/gateway/pkg/security/certificate/certtest"
)

func leafCN(t *testing.T, cert *tls.Certificate) string {
	t.Helper()
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}
	return leaf.Subject.CommonName
}

func TestNewCertificateReloader_DefaultInterval(t *testing.T) {
	r := NewCertificateReloader("c.pem", "k.pem", 0, nil)
	if r.interval != DefaultReloadInterval {
		t.Errorf("interval = %v, want %v", r.interval, DefaultReloadInterval)
	}
	if r.GetCertificate() != nil {
		t.Error("certificate loaded before Load")
	}
	if _, err := r.GetCertificateFunc()(nil); err == nil {
		t.Error("GetCertificateFunc() before Load returned no error")
	}
	if err := r.Check(context.Background()); err == nil {
		t.Error("Check() before Load returned no error")
	}
}

func TestCertificateReloader_Load(t *testing.T) {
	certFile, keyFile, _ := writeServerPair(t)
	other := certtest.Generate(t, certtest.Options{})
	_, otherKey := other.WriteFiles(t, t.TempDir())

	tests := []struct {
		name    string
		cert    string
		key     string
		wantErr bool
	}{
		{name: "valid", cert: certFile, key: keyFile},
		{name: "missing", cert: filepath.Join(t.TempDir(), "none.pem"), key: keyFile, wantErr: true},
		{name: "key mismatch", cert: certFile, key: otherKey, wantErr: true},
		{name: "not pem", cert: keyFile, key: keyFile, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCertificateReloader(tt.cert, tt.key, time.Minute, discardLogger())
			err := r.Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if err := r.Check(context.Background()); err != nil {
					t.Errorf("Check() error = %v", err)
				}
			}
		})
	}
}

func TestCertificateReloader_ExpiredIsRejected(t *testing.T) {
	now := time.Now()
	pair := certtest.Generate(t, certtest.Options{NotBefore: now.Add(-48 * time.Hour), NotAfter: now.Add(-time.Hour)})
	certFile, keyFile := pair.WriteFiles(t, t.TempDir())

	if err := NewCertificateReloader(certFile, keyFile, time.Minute, discardLogger()).Load(); err == nil {
		t.Error("Load() accepted an expired certificate")
	}
}

func TestCertificateReloader_ReloadOnFileChange(t *testing.T) {
	certFile, keyFile, _ := writeServerPair(t)
	r := NewCertificateReloader(certFile, keyFile, 20*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := leafCN(t, r.GetCertificate()); got != "gateway.test" {
		t.Fatalf("CN = %q", got)
	}

	renewed := certtest.Generate(t, certtest.Options{Subject: pkix.Name{CommonName: "renewed.test"}})
	if err := os.WriteFile(certFile, renewed.CertPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, renewed.KeyPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	for _, f := range []string{certFile, keyFile} {
		if err := os.Chtimes(f, later, later); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for leafCN(t, r.GetCertificate()) != "renewed.test" {
		if time.Now().After(deadline) {
			t.Fatal("certificate was not reloaded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCertificateReloader_BrokenRenewalKeepsCertificate(t *testing.T) {
	certFile, keyFile, _ := writeServerPair(t)
	r := NewCertificateReloader(certFile, keyFile, time.Minute, discardLogger())
	if err := r.Load(); err != nil {
		t.Fatal(err)
	}
	before := r.GetCertificate()

	if err := os.WriteFile(certFile, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := r.reload(); err == nil {
		t.Fatal("reload() of a broken file succeeded")
	}
	if r.GetCertificate() != before {
		t.Error("broken renewal replaced the certificate")
	}
}

func TestCertificateReloader_ConcurrentAccess(t *testing.T) {
	certFile, keyFile, _ := writeServerPair(t)
	r := NewCertificateReloader(certFile, keyFile, time.Minute, discardLogger())
	if err := r.Load(); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if r.GetCertificate() == nil {
					t.Error("nil certificate")
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			_ = r.reload()
		}()
	}
	wg.Wait()
}
