package functions

import (
	"encoding/base64"
	"net/http"
	"strings"

	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/identity"
	"mercator-hq/gateway/pkg/message"
)

// DefaultRealm is the basic authentication realm used when none is
// configured.
const DefaultRealm = "Mercator Gateway"

const basicPrefix = "basic "

// RequireBasicAuthentication establishes the Account of the request from
// a basic Authorization header. A request without the header is answered
// with a 401 challenge and the api stops.
type RequireBasicAuthentication struct {
	gateway.Base
	realm    string
	verifier identity.Verifier
}

// NewRequireBasicAuthentication creates the function. With a non-nil
// verifier the password must match, otherwise the account is accepted
// unverified and later functions decide.
func NewRequireBasicAuthentication(name, realm string, verifier identity.Verifier) *RequireBasicAuthentication {
	return &RequireBasicAuthentication{
		Base:     gateway.NewBase(nameOr(name, "RequireBasicAuthentication")),
		realm:    nameOr(realm, DefaultRealm),
		verifier: verifier,
	}
}

func (f *RequireBasicAuthentication) Execute(ec *gateway.ExecutionContext) gateway.Result {
	req := ec.Request()
	if !req.IsHTTP() {
		return gateway.Failed(nil, "request message is not http")
	}

	values := req.Headers().Get(message.HeaderAuthorization)
	if len(values) == 0 {
		return f.challenge(ec)
	}

	for _, v := range values {
		if len(v) < len(basicPrefix) || !strings.EqualFold(v[:len(basicPrefix)], basicPrefix) {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(v[len(basicPrefix):]))
		if err != nil {
			return gateway.Failed(nil, "invalid basic authentication challenge")
		}
		username, password, ok := strings.Cut(string(decoded), ":")
		if !ok {
			return gateway.Failed(nil, "invalid basic authentication challenge")
		}

		verified := false
		if f.verifier != nil {
			if !f.verifier.Verify(username, password) {
				ec.Logger().Info("basic authentication rejected", "username", username)
				return f.challenge(ec)
			}
			verified = true
		}
		ec.SetAccount(identity.NewAccount(username, identity.PasswordCredentials{
			Username: username,
			Password: password,
		}, verified))
		ec.Logger().Debug("basic authentication accepted", "username", username, "verified", verified)
		return gateway.Succeeded()
	}
	return gateway.Failed(nil, "no basic authentication header present")
}

func (f *RequireBasicAuthentication) challenge(ec *gateway.ExecutionContext) gateway.Result {
	if h := ec.Transport().HTTP(); h != nil {
		h.SetResponseStatusCode(http.StatusUnauthorized)
	}
	challenge := `Basic realm="` + ec.Parse(f.realm) + `"`
	if err := ec.Response().Headers().Set(message.HeaderWWWAuthenticate, challenge); err != nil {
		gateway.Fatal(f, "set challenge", err)
	}
	return gateway.Stopped("authentication required")
}

// RequireTransportSecurity fails unless the request arrived over TLS.
// When the client presented a certificate, the Account becomes the
// certificate's subject common name.
type RequireTransportSecurity struct {
	gateway.Base
	requireClientCertificate bool
}

func NewRequireTransportSecurity(name string, requireClientCertificate bool) *RequireTransportSecurity {
	return &RequireTransportSecurity{
		Base:                     gateway.NewBase(nameOr(name, "RequireTransportSecurity")),
		requireClientCertificate: requireClientCertificate,
	}
}

func (f *RequireTransportSecurity) Execute(ec *gateway.ExecutionContext) gateway.Result {
	t := ec.Transport()
	if !t.IsSecure() || t.Security() == nil {
		ec.Logger().Debug("transport not secure", "function", f.Name())
		return gateway.Failed(nil, "transport not secure")
	}

	cert := t.Security().RemoteCertificate()
	if cert == nil {
		if f.requireClientCertificate {
			return gateway.Failed(nil, "remote certificate missing")
		}
		return gateway.Succeeded()
	}

	// the handshake proved possession of the certificate's key
	ec.SetAccount(identity.NewAccount(cert.Subject().CN(), identity.CertificateCredentials{Certificate: cert}, true))
	ec.Logger().Debug("client certificate accepted", "subject", cert.Subject().DN())
	return gateway.Succeeded()
}
