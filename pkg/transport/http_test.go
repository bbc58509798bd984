package transport

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/gateway/pkg/security/certificate/certtest"
)

func TestFromRequest_PlainHTTP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://api.example.com:8080/orders/7?expand=lines&tag=a&tag=b", nil)
	tr := FromRequest("public", r)

	if tr.InterfaceAlias() != "public" {
		t.Errorf("InterfaceAlias() = %q", tr.InterfaceAlias())
	}
	if tr.IsSecure() || tr.Security() != nil {
		t.Error("plain request reported as secure")
	}
	if !tr.IsHTTP() || tr.HTTP() == nil {
		t.Fatal("HTTP() = nil")
	}
	if !tr.IsHTTP11() || tr.IsHTTP10() || tr.IsHTTP20() || tr.IsHTTP09() {
		t.Errorf("protocol flags wrong for %s", r.Proto)
	}
	if tr.RequestMethod() != http.MethodGet {
		t.Errorf("RequestMethod() = %q", tr.RequestMethod())
	}
	if tr.ResponseStatusCode() != http.StatusOK {
		t.Errorf("default ResponseStatusCode() = %d", tr.ResponseStatusCode())
	}
	tr.SetResponseStatusCode(http.StatusTeapot)
	if tr.ResponseStatusCode() != http.StatusTeapot {
		t.Errorf("ResponseStatusCode() = %d after set", tr.ResponseStatusCode())
	}

	u := tr.RequestURL()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"scheme", u.Scheme(), "http"},
		{"host", u.Host(), "api.example.com"},
		{"port", u.Port(), 8080},
		{"path", u.Path(), "/orders/7"},
		{"query", u.Query(), "expand=lines&tag=a&tag=b"},
		{"parameter", u.QueryParameter("expand"), "lines"},
		{"missing parameter", u.QueryParameter("nope"), ""},
		{"parameter values", len(u.QueryParameterValues("tag")), 2},
		{"string", u.String(), "http://api.example.com:8080/orders/7?expand=lines&tag=a&tag=b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestFromRequest_DefaultPorts(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "example.com"
	if got := FromRequest("a", r).RequestURL().Port(); got != 80 {
		t.Errorf("http default port = %d, want 80", got)
	}

	r.TLS = &tls.ConnectionState{}
	if got := FromRequest("a", r).RequestURL().Port(); got != 443 {
		t.Errorf("https default port = %d, want 443", got)
	}
}

func TestFromRequest_TLS(t *testing.T) {
	client := certtest.Generate(t, certtest.Options{Subject: pkix.Name{CommonName: "client"}})
	server := certtest.Generate(t, certtest.Options{Subject: pkix.Name{CommonName: "gateway"}})

	r := httptest.NewRequest(http.MethodPost, "https://gateway.local/", nil)
	r.TLS = &tls.ConnectionState{
		Version:          tls.VersionTLS13,
		CipherSuite:      tls.TLS_AES_128_GCM_SHA256,
		PeerCertificates: []*x509.Certificate{client.Cert},
	}

	local := LocalChain(&tls.Certificate{Certificate: [][]byte{server.Cert.Raw}})
	tr := FromRequest("secure", r, WithLocalCertificates(local))

	if !tr.IsSecure() {
		t.Fatal("IsSecure() = false")
	}
	sec := tr.Security()
	if sec.Protocol() != "TLS 1.3" {
		t.Errorf("Protocol() = %q", sec.Protocol())
	}
	if sec.CipherSuite() != "TLS_AES_128_GCM_SHA256" {
		t.Errorf("CipherSuite() = %q", sec.CipherSuite())
	}
	if c := sec.RemoteCertificate(); c == nil || c.Subject().CN() != "client" {
		t.Errorf("RemoteCertificate() = %v", c)
	}
	if n := len(sec.RemoteCertificateChain()); n != 1 {
		t.Errorf("len(RemoteCertificateChain()) = %d", n)
	}
	if c := sec.LocalCertificate(); c == nil || c.Subject().CN() != "gateway" {
		t.Errorf("LocalCertificate() = %v", c)
	}
}

func TestSecurity_NoPeerCertificate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "https://gateway.local/", nil)
	r.TLS = &tls.ConnectionState{Version: tls.VersionTLS12}
	sec := FromRequest("secure", r).Security()

	if sec.RemoteCertificate() != nil {
		t.Error("RemoteCertificate() should be nil without peer certificates")
	}
	if sec.LocalCertificate() != nil {
		t.Error("LocalCertificate() should be nil without configured chain")
	}
	if chain := sec.LocalCertificateChain(); len(chain) != 0 {
		t.Errorf("LocalCertificateChain() = %v, want empty", chain)
	}
}
