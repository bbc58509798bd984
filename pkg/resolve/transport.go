package resolve

import (
	"mercator-hq/gateway/pkg/transport"
)

// Transport resolves:
//
//	interfacealias  listener alias
//	issecure        TLS flag
//	ishttp          HTTP flag
//	http.*          HTTPTransport
//	security.*      Security
func Transport(path string, t transport.Transport) any {
	if t == nil {
		return nil
	}
	if path == "" {
		return Bind(t, Transport)
	}
	switch {
	case Is(path, "interfacealias"):
		return leaf("", t.InterfaceAlias())
	case Is(path, "issecure"):
		return t.IsSecure()
	case Is(path, "ishttp"):
		return t.IsHTTP()
	}
	if rest, ok := Match(path, "http"); ok {
		h := t.HTTP()
		if h == nil {
			return nil
		}
		return HTTPTransport(rest, h)
	}
	if rest, ok := Match(path, "security"); ok {
		return Security(rest, t.Security())
	}
	return nil
}

// HTTPTransport resolves:
//
//	request.method        request method
//	request.url.*         RequestURL
//	response.status_code  status code to be sent
//	ishttp09 .. ishttp20  protocol version flags
func HTTPTransport(path string, h transport.HTTPTransport) any {
	if h == nil {
		return nil
	}
	if path == "" {
		return Bind(h, HTTPTransport)
	}
	switch {
	case Is(path, "request.method"):
		return h.RequestMethod()
	case Is(path, "response.status_code"), Is(path, "response.statuscode"):
		return h.ResponseStatusCode()
	case Is(path, "ishttp09"):
		return h.IsHTTP09()
	case Is(path, "ishttp10"):
		return h.IsHTTP10()
	case Is(path, "ishttp11"):
		return h.IsHTTP11()
	case Is(path, "ishttp20"):
		return h.IsHTTP20()
	}
	if rest, ok := Match(path, "request.url"); ok {
		return RequestURL(rest, h.RequestURL())
	}
	return nil
}

// RequestURL resolves scheme, host, port, path, query, query.<name> and
// fragment. Query parameter names keep their case.
func RequestURL(path string, u transport.RequestURL) any {
	if u == nil {
		return nil
	}
	if path == "" {
		return Bind(u, RequestURL)
	}
	switch {
	case Is(path, "scheme"):
		return leaf("", u.Scheme())
	case Is(path, "host"):
		return leaf("", u.Host())
	case Is(path, "port"):
		return u.Port()
	case Is(path, "path"):
		return leaf("", u.Path())
	case Is(path, "query"):
		return leaf("", u.Query())
	case Is(path, "fragment"):
		return leaf("", u.Fragment())
	}
	if rest, ok := Match(path, "query"); ok && rest != "" {
		name, sub := splitName(rest)
		return Strings(sub, u.QueryParameterValues(name))
	}
	return nil
}

// Security resolves ciphersuite, protocol, remotecertificate.*,
// localcertificate.*, remotecertificatechain.* and
// localcertificatechain.*. Without security both chains are empty.
func Security(path string, s transport.Security) any {
	if s == nil {
		for _, chain := range []string{"remotecertificatechain", "localcertificatechain"} {
			if rest, ok := Match(path, chain); ok {
				return Certificates(rest, nil)
			}
		}
		return nil
	}
	if path == "" {
		return Bind(s, Security)
	}
	switch {
	case Is(path, "ciphersuite"):
		return leaf("", s.CipherSuite())
	case Is(path, "protocol"):
		return leaf("", s.Protocol())
	}
	if rest, ok := Match(path, "remotecertificatechain"); ok {
		return Certificates(rest, s.RemoteCertificateChain())
	}
	if rest, ok := Match(path, "localcertificatechain"); ok {
		return Certificates(rest, s.LocalCertificateChain())
	}
	if rest, ok := Match(path, "remotecertificate"); ok {
		return Certificate(rest, s.RemoteCertificate())
	}
	if rest, ok := Match(path, "localcertificate"); ok {
		return Certificate(rest, s.LocalCertificate())
	}
	return nil
}

// splitName splits "<name>[.suffix]" or "<name>[n]..." at the first '.'
// or '[' and returns the name and the collection path that follows.
func splitName(path string) (name, rest string) {
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '.':
			return path[:i], path[i+1:]
		case '[':
			return path[:i], path[i:]
		}
	}
	return path, ""
}
