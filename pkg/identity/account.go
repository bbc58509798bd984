// Package identity models the authenticated caller of a request and the
// credential store used to verify it.
package identity

import "mercator-hq/gateway/pkg/security/certificate"

// Credential kinds.
const (
	KindPassword    = "password"
	KindCertificate = "x509"
)

// Credentials are the proof an Account was established with.
type Credentials interface {
	Kind() string
}

// PasswordCredentials carry a username and password from a basic
// authentication challenge.
type PasswordCredentials struct {
	Username string
	Password string
}

func (c PasswordCredentials) Kind() string { return KindPassword }

// String never includes the password.
func (c PasswordCredentials) String() string {
	return "password(" + c.Username + ")"
}

// CertificateCredentials carry the client certificate of a mutually
// authenticated TLS connection.
type CertificateCredentials struct {
	Certificate *certificate.Certificate
}

func (c CertificateCredentials) Kind() string { return KindCertificate }

func (c CertificateCredentials) String() string {
	if c.Certificate == nil {
		return "x509()"
	}
	return "x509(" + c.Certificate.Subject().DN() + ")"
}

// Account is the identity attached to a request. It is immutable; an
// authentication step that learns more replaces the Account.
type Account struct {
	username    string
	credentials Credentials
	verified    bool
}

// NewAccount returns an account for username. verified records whether
// the credentials were checked against a store or a trusted CA.
func NewAccount(username string, credentials Credentials, verified bool) *Account {
	return &Account{username: username, credentials: credentials, verified: verified}
}

func (a *Account) Username() string         { return a.username }
func (a *Account) Credentials() Credentials { return a.credentials }
func (a *Account) Verified() bool           { return a.verified }

// Method returns the credential kind, or "" when there are none.
func (a *Account) Method() string {
	if a.credentials == nil {
		return ""
	}
	return a.credentials.Kind()
}

func (a *Account) String() string { return a.username }
