package transport

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"mercator-hq/gateway/pkg/security/certificate"
)

// HTTP is the net/http backed HTTPTransport. A value belongs to a single
// request.
type HTTP struct {
	alias  string
	req    *http.Request
	url    *requestURL
	sec    *tlsSecurity
	status int
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithLocalCertificates sets the certificate chain the listener presents.
// net/http does not expose it on the request.
func WithLocalCertificates(chain []*certificate.Certificate) Option {
	return func(h *HTTP) {
		if h.sec != nil {
			h.sec.local = chain
		}
	}
}

// FromRequest builds the transport for r accepted by the listener named
// alias.
func FromRequest(alias string, r *http.Request, opts ...Option) *HTTP {
	h := &HTTP{
		alias:  alias,
		req:    r,
		url:    newRequestURL(r),
		status: http.StatusOK,
	}
	if r.TLS != nil {
		h.sec = &tlsSecurity{state: r.TLS}
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) InterfaceAlias() string { return h.alias }
func (h *HTTP) IsSecure() bool         { return h.sec != nil }
func (h *HTTP) IsHTTP() bool           { return true }
func (h *HTTP) HTTP() HTTPTransport    { return h }

func (h *HTTP) Security() Security {
	if h.sec == nil {
		return nil
	}
	return h.sec
}

func (h *HTTP) IsHTTP09() bool { return h.req.ProtoMajor == 0 && h.req.ProtoMinor == 9 }
func (h *HTTP) IsHTTP10() bool { return h.req.ProtoMajor == 1 && h.req.ProtoMinor == 0 }
func (h *HTTP) IsHTTP11() bool { return h.req.ProtoMajor == 1 && h.req.ProtoMinor == 1 }
func (h *HTTP) IsHTTP20() bool { return h.req.ProtoMajor == 2 }

func (h *HTTP) RequestMethod() string   { return h.req.Method }
func (h *HTTP) RequestURL() RequestURL  { return h.url }
func (h *HTTP) ResponseStatusCode() int { return h.status }

func (h *HTTP) SetResponseStatusCode(code int) {
	h.status = code
}

type tlsSecurity struct {
	state *tls.ConnectionState
	local []*certificate.Certificate

	once   sync.Once
	remote []*certificate.Certificate
}

func (s *tlsSecurity) CipherSuite() string {
	return tls.CipherSuiteName(s.state.CipherSuite)
}

func (s *tlsSecurity) Protocol() string {
	return tls.VersionName(s.state.Version)
}

func (s *tlsSecurity) RemoteCertificateChain() []*certificate.Certificate {
	s.once.Do(func() {
		s.remote = certificate.Chain(s.state.PeerCertificates)
	})
	return s.remote
}

func (s *tlsSecurity) RemoteCertificate() *certificate.Certificate {
	if chain := s.RemoteCertificateChain(); len(chain) > 0 {
		return chain[0]
	}
	return nil
}

func (s *tlsSecurity) LocalCertificateChain() []*certificate.Certificate {
	return s.local
}

func (s *tlsSecurity) LocalCertificate() *certificate.Certificate {
	if len(s.local) > 0 {
		return s.local[0]
	}
	return nil
}

// LocalChain parses the leaf and intermediates of a tls.Certificate as
// served by a listener.
func LocalChain(cert *tls.Certificate) []*certificate.Certificate {
	if cert == nil {
		return nil
	}
	out := make([]*x509.Certificate, 0, len(cert.Certificate))
	for _, der := range cert.Certificate {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return nil
		}
		out = append(out, c)
	}
	return certificate.Chain(out)
}

type requestURL struct {
	scheme string
	host   string
	port   int
	u      *url.URL
	query  url.Values
}

func newRequestURL(r *http.Request) *requestURL {
	u := r.URL
	if u == nil {
		u = &url.URL{}
	}
	ru := &requestURL{u: u, query: u.Query()}

	ru.scheme = u.Scheme
	if ru.scheme == "" {
		ru.scheme = "http"
		if r.TLS != nil {
			ru.scheme = "https"
		}
	}

	hostport := r.Host
	if hostport == "" {
		hostport = u.Host
	}
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
	}
	ru.host = host
	if p, err := strconv.Atoi(port); err == nil {
		ru.port = p
	} else if ru.scheme == "https" {
		ru.port = 443
	} else {
		ru.port = 80
	}
	return ru
}

func (u *requestURL) Scheme() string   { return u.scheme }
func (u *requestURL) Host() string     { return u.host }
func (u *requestURL) Port() int        { return u.port }
func (u *requestURL) Path() string     { return u.u.Path }
func (u *requestURL) Query() string    { return u.u.RawQuery }
func (u *requestURL) Fragment() string { return u.u.Fragment }

func (u *requestURL) QueryParameter(name string) string {
	return u.query.Get(name)
}

func (u *requestURL) QueryParameterValues(name string) []string {
	return u.query[name]
}

func (u *requestURL) String() string {
	out := url.URL{
		Scheme:   u.scheme,
		Host:     net.JoinHostPort(u.host, strconv.Itoa(u.port)),
		Path:     u.u.Path,
		RawQuery: u.u.RawQuery,
		Fragment: u.u.Fragment,
	}
	return out.String()
}
