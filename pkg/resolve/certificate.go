package resolve

import (
	"mercator-hq/gateway/pkg/security/certificate"
)

// Certificate resolves:
//
//	subject.*, issuer.*      Name
//	key.*, publickey.*       PublicKey
//	notbefore, notafter      validity window
//	serial, serialnumber     serial number in hex
//	version                  X.509 version
//	md5, sha1, sha256        hex digests of the DER encoding
//	pem                      PEM encoding
//	dnsnames.*               subject alternative DNS names
func Certificate(path string, c *certificate.Certificate) any {
	if c == nil {
		return nil
	}
	if path == "" {
		return Bind(c, Certificate)
	}
	switch {
	case Is(path, "notbefore"):
		return c.NotBefore()
	case Is(path, "notafter"):
		return c.NotAfter()
	case Is(path, "serial"), Is(path, "serialnumber"):
		return leaf("", c.SerialNumber())
	case Is(path, "version"):
		return c.Version()
	case Is(path, "md5"):
		return c.MD5()
	case Is(path, "sha1"):
		return c.SHA1()
	case Is(path, "sha256"):
		return c.SHA256()
	case Is(path, "pem"):
		return c.PEM()
	}
	if rest, ok := Match(path, "subject"); ok {
		return Name(rest, c.Subject())
	}
	if rest, ok := Match(path, "issuer"); ok {
		return Name(rest, c.Issuer())
	}
	if rest, ok := Match(path, "publickey"); ok {
		return PublicKey(rest, c.PublicKey())
	}
	if rest, ok := Match(path, "key"); ok {
		return PublicKey(rest, c.PublicKey())
	}
	if rest, ok := Match(path, "dnsnames"); ok {
		return Strings(rest, c.DNSNames())
	}
	return nil
}

// Certificates resolves a certificate chain.
var Certificates = List[*certificate.Certificate](Certificate)

// Name resolves the attributes dn, cn, c, o, ou, l, st, street, dc, e and
// uid. Absent attributes resolve to nil.
func Name(path string, n certificate.Name) any {
	if path == "" {
		return Bind(n, Name)
	}
	var v string
	switch {
	case Is(path, "dn"):
		v = n.DN()
	case Is(path, "cn"):
		v = n.CN()
	case Is(path, "c"):
		v = n.C()
	case Is(path, "o"):
		v = n.O()
	case Is(path, "ou"):
		v = n.OU()
	case Is(path, "l"):
		v = n.L()
	case Is(path, "st"):
		v = n.ST()
	case Is(path, "street"):
		v = n.Street()
	case Is(path, "dc"):
		v = n.DC()
	case Is(path, "e"):
		v = n.E()
	case Is(path, "uid"):
		v = n.UID()
	}
	return leaf("", v)
}

// PublicKey resolves algorithm and size.
func PublicKey(path string, k certificate.PublicKey) any {
	switch {
	case path == "":
		return Bind(k, PublicKey)
	case Is(path, "algorithm"):
		return k.Algorithm()
	case Is(path, "size"):
		return k.Size()
	}
	return nil
}
