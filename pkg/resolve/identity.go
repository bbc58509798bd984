package resolve

import (
	"mercator-hq/gateway/pkg/identity"
)

// Account resolves username, verified and method. Password credentials
// are never exposed.
func Account(path string, a *identity.Account) any {
	if a == nil {
		return nil
	}
	switch {
	case path == "":
		return Bind(a, Account)
	case Is(path, "username"):
		return leaf("", a.Username())
	case Is(path, "verified"):
		return a.Verified()
	case Is(path, "method"):
		return leaf("", a.Method())
	}
	if rest, ok := Match(path, "certificate"); ok {
		if c, ok := a.Credentials().(identity.CertificateCredentials); ok {
			return Certificate(rest, c.Certificate)
		}
	}
	return nil
}

// API is the routable unit a request is dispatched to.
type API interface {
	Name() string
	ContextRoot() string
}

// APIInfo resolves name and contextroot.
func APIInfo(path string, api API) any {
	if api == nil {
		return nil
	}
	switch {
	case path == "":
		return Bind(api, APIInfo)
	case Is(path, "name"):
		return leaf("", api.Name())
	case Is(path, "contextroot"), Is(path, "context_root"):
		return leaf("", api.ContextRoot())
	}
	return nil
}
