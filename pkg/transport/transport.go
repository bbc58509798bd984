// Package transport describes the connection a request arrived on, as
// seen by policy functions, and provides an implementation over net/http.
package transport

import "mercator-hq/gateway/pkg/security/certificate"

// Transport is the connection-level view of a request.
type Transport interface {
	// InterfaceAlias names the listener that accepted the request.
	InterfaceAlias() string

	// IsSecure reports whether the connection is TLS protected.
	IsSecure() bool

	// Security returns the TLS details, or nil when the connection is not
	// secure.
	Security() Security

	IsHTTP() bool

	// HTTP returns the HTTP view, or nil when the transport is not HTTP.
	HTTP() HTTPTransport
}

// HTTPTransport is a Transport carrying an HTTP exchange.
type HTTPTransport interface {
	Transport

	IsHTTP09() bool
	IsHTTP10() bool
	IsHTTP11() bool
	IsHTTP20() bool

	RequestMethod() string
	RequestURL() RequestURL

	// ResponseStatusCode returns the status code that will be sent.
	ResponseStatusCode() int
	SetResponseStatusCode(code int)
}

// Security exposes the negotiated TLS parameters and certificates.
type Security interface {
	CipherSuite() string
	Protocol() string

	// RemoteCertificate returns the peer leaf certificate, or nil.
	RemoteCertificate() *certificate.Certificate
	RemoteCertificateChain() []*certificate.Certificate

	// LocalCertificate returns the certificate presented by the gateway,
	// or nil.
	LocalCertificate() *certificate.Certificate
	LocalCertificateChain() []*certificate.Certificate
}

// RequestURL is the parsed request target.
type RequestURL interface {
	Scheme() string
	Host() string
	Port() int
	Path() string
	Query() string
	// QueryParameter returns the first value of name, or "".
	QueryParameter(name string) string
	QueryParameterValues(name string) []string
	Fragment() string
	String() string
}
