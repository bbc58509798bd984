package resolve

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/gateway/pkg/identity"
	"mercator-hq/gateway/pkg/message"
	"mercator-hq/gateway/pkg/security/certificate"
	"mercator-hq/gateway/pkg/security/certificate/certtest"
	"mercator-hq/gateway/pkg/transport"
)

type fixture struct {
	transport *transport.HTTP
	request   *message.HTTP
	client    *certificate.Certificate
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := certtest.Generate(t, certtest.Options{
		Subject: pkix.Name{CommonName: "Test Root", Organization: []string{"Mercator"}},
	})
	leaf := certtest.Generate(t, certtest.Options{
		Subject: pkix.Name{
			CommonName:         "client.example.com",
			Country:            []string{"NL"},
			OrganizationalUnit: []string{"Payments"},
		},
		DNSNames: []string{"client.example.com", "alt.example.com"},
		Email:    "ops@example.com",
		Serial:   255,
		Parent:   root,
	})

	r := httptest.NewRequest(http.MethodPost, "https://api.example.com/shop/orders?id=42&tag=a&tag=b", strings.NewReader(`{"order":{"id":42,"lines":[{"sku":"A1"},{"sku":"B2"}]}}`))
	r.Header.Add("Accept", "application/json")
	r.Header.Add("X-Tag", "first")
	r.Header.Add("X-Tag", "second")
	r.TLS = &tls.ConnectionState{
		Version:          tls.VersionTLS13,
		CipherSuite:      tls.TLS_AES_256_GCM_SHA384,
		PeerCertificates: []*x509.Certificate{leaf.Cert, root.Cert},
	}

	return fixture{
		transport: transport.FromRequest("public", r),
		request:   message.NewRequest(r, 0),
		client:    certificate.New(leaf.Cert),
	}
}

func TestTransport(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		path string
		want string
	}{
		{"interfaceAlias", "public"},
		{"isSecure", "true"},
		{"ishttp", "true"},
		{"http.request.method", "POST"},
		{"HTTP.Request.Method", "POST"},
		{"http.request.url.scheme", "https"},
		{"http.request.url.host", "api.example.com"},
		{"http.request.url.port", "443"},
		{"http.request.url.path", "/shop/orders"},
		{"http.request.url.query", "id=42&tag=a&tag=b"},
		{"http.request.url.query.id", "42"},
		{"http.request.url.query.tag", "a, b"},
		{"http.request.url.query.tag.size", "2"},
		{"http.request.url.query.tag[1]", "b"},
		{"http.request.url.query.missing", ""},
		{"http.request.url.query.missing.size", "0"},
		{"http.request.url", "https://api.example.com:443/shop/orders?id=42&tag=a&tag=b"},
		{"http.response.status_code", "200"},
		{"http.ishttp11", "true"},
		{"http.ishttp20", "false"},
		{"security.protocol", "TLS 1.3"},
		{"security.ciphersuite", "TLS_AES_256_GCM_SHA384"},
		{"security.remotecertificate.subject.cn", "client.example.com"},
		{"security.remoteCertificate.subject.ou", "Payments"},
		{"security.remotecertificate.subject.e", "ops@example.com"},
		{"security.remotecertificate.subject.o", ""},
		{"security.remotecertificate.issuer.cn", "Test Root"},
		{"security.remotecertificate.issuer.o", "Mercator"},
		{"security.remotecertificate.serial", "ff"},
		{"security.remotecertificate.version", "3"},
		{"security.remotecertificate.key.algorithm", "ECDSA"},
		{"security.remotecertificate.key.size", "256"},
		{"security.remotecertificate.dnsnames[1]", "alt.example.com"},
		{"security.remotecertificate.sha256", f.client.SHA256()},
		{"security.remotecertificatechain.size", "2"},
		{"security.remotecertificatechain[1].subject.cn", "Test Root"},
		{"security.remotecertificatechain.last.subject.cn", "Test Root"},
		{"security.remotecertificatechain[2].subject.cn", ""},
		{"security.remotecertificatechain", ""},
		{"security.localcertificate.subject.cn", ""},
		{"security.localcertificatechain.size", "0"},
		{"security.unknown", ""},
		{"nope", ""},
		{"httpx", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Format(Transport(tt.path, f.transport))
			if tt.path == "security.remotecertificatechain" {
				// DN rendering of extra attributes is left to crypto/x509
				if !strings.Contains(got, "CN=client.example.com") || !strings.Contains(got, ", CN=Test Root") {
					t.Errorf("Transport(%q) = %q", tt.path, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Transport(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestTransport_NotSecure(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	tr := transport.FromRequest("internal", r)

	for _, path := range []string{"security", "security.protocol", "security.remotecertificate.subject.cn", "security.remotecertificatechain.first"} {
		if got := Transport(path, tr); got != nil {
			t.Errorf("Transport(%q) = %v, want nil", path, got)
		}
	}
	for _, path := range []string{"security.remotecertificatechain.size", "security.localCertificateChain.size"} {
		if got := Format(Transport(path, tr)); got != "0" {
			t.Errorf("Transport(%q) = %q, want 0", path, got)
		}
	}
}

func TestMessage(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		path string
		want string
	}{
		{"body", `{"order":{"id":42,"lines":[{"sku":"A1"},{"sku":"B2"}]}}`},
		{"ishttp", "true"},
		{"header.accept", "application/json"},
		{"header.X-Tag", "first, second"},
		{"header.x-tag.size", "2"},
		{"header.x-tag[0]", "first"},
		{"header.x-tag[1]", "second"},
		{"header.x-tag[2]", ""},
		{"header.x-tag.first", "first"},
		{"header.x-tag.last", "second"},
		{"header.absent", ""},
		{"header.absent.size", "0"},
		{"headers.size", "2"},
		{"headers.names", "Accept, X-Tag"},
		{"headers.names[1]", "X-Tag"},
		{"json.order.id", "42"},
		{"json.order.lines.#", "2"},
		{"json.order.lines.1.sku", "B2"},
		{"json.order.lines.0", `{"sku":"A1"}`},
		{"json.order.missing", ""},
		{"nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Format(Message(tt.path, f.request)); got != tt.want {
				t.Errorf("Message(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestJSON_InvalidBody(t *testing.T) {
	if got := JSON("a", "not json"); got != nil {
		t.Errorf("JSON() = %v, want nil", got)
	}
}

func TestBind_ResolvesLater(t *testing.T) {
	f := newFixture(t)

	v := Transport("security.remotecertificate", f.transport)
	r, ok := v.(Resolvable)
	if !ok {
		t.Fatalf("Transport() returned %T, want Resolvable", v)
	}
	if got := Format(r.Resolve("subject.cn")); got != "client.example.com" {
		t.Errorf("Resolve(subject.cn) = %q", got)
	}
	if got := Format(r); got != f.client.Subject().DN() {
		t.Errorf("Format(bound certificate) = %q, want subject DN", got)
	}
	if Unwrap(r).(*certificate.Certificate).SHA256() != f.client.SHA256() {
		t.Error("Unwrap() returned a different certificate")
	}

	// opaque shapes render as empty
	if got := Format(Transport("", f.transport)); got != "" {
		t.Errorf("Format(bound transport) = %q, want empty", got)
	}
}

func TestAccount(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name    string
		account *identity.Account
		path    string
		want    string
	}{
		{"username", identity.NewAccount("alice", identity.PasswordCredentials{Username: "alice", Password: "pw"}, true), "username", "alice"},
		{"verified", identity.NewAccount("alice", nil, true), "verified", "true"},
		{"method", identity.NewAccount("alice", identity.PasswordCredentials{}, false), "method", "password"},
		{"password hidden", identity.NewAccount("alice", identity.PasswordCredentials{Password: "pw"}, false), "password", ""},
		{"certificate", identity.NewAccount("svc", identity.CertificateCredentials{Certificate: f.client}, true), "certificate.subject.cn", "client.example.com"},
		{"nil account", nil, "username", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(Account(tt.path, tt.account)); got != tt.want {
				t.Errorf("Account(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

type stubAPI struct{ name, root string }

func (a stubAPI) Name() string        { return a.name }
func (a stubAPI) ContextRoot() string { return a.root }

func TestAPIInfo(t *testing.T) {
	api := stubAPI{name: "shop", root: "/shop"}
	if got := Format(APIInfo("name", api)); got != "shop" {
		t.Errorf("name = %q", got)
	}
	if got := Format(APIInfo("contextRoot", api)); got != "/shop" {
		t.Errorf("contextRoot = %q", got)
	}
	if got := APIInfo("other", api); got != nil {
		t.Errorf("other = %v", got)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		path, key string
		rest      string
		ok        bool
	}{
		{"security", "security", "", true},
		{"Security.protocol", "security", "protocol", true},
		{"chain[0].cn", "chain", "[0].cn", true},
		{"securityx", "security", "", false},
		{"sec", "security", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rest, ok := Match(tt.path, tt.key)
			if rest != tt.rest || ok != tt.ok {
				t.Errorf("Match(%q, %q) = %q, %v; want %q, %v", tt.path, tt.key, rest, ok, tt.rest, tt.ok)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"list", []string{"a", "b"}, "a, b"},
		{"time", ts, "2026-01-02T03:04:05Z"},
		{"bool", false, "false"},
		{"int", 7, "7"},
		{"struct", struct{ A int }{1}, "{1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}
