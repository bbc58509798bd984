package certificate

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
)

// Attribute types not exposed as fields of pkix.Name.
var (
	oidEmailAddress    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
	oidUserID          = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 1}
	oidDomainComponent = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 25}
)

// Name is an X.500 distinguished name. Each accessor returns the first
// value of its attribute, or "" when the attribute is absent.
type Name struct {
	name pkix.Name
}

// NewName wraps n.
func NewName(n pkix.Name) Name {
	return Name{name: n}
}

// DN returns the RFC 2253 string form.
func (n Name) DN() string { return n.name.String() }

func (n Name) CN() string     { return n.name.CommonName }
func (n Name) C() string      { return first(n.name.Country) }
func (n Name) O() string      { return first(n.name.Organization) }
func (n Name) OU() string     { return first(n.name.OrganizationalUnit) }
func (n Name) L() string      { return first(n.name.Locality) }
func (n Name) ST() string     { return first(n.name.Province) }
func (n Name) Street() string { return first(n.name.StreetAddress) }
func (n Name) DC() string     { return n.attribute(oidDomainComponent) }
func (n Name) E() string      { return n.attribute(oidEmailAddress) }
func (n Name) UID() string    { return n.attribute(oidUserID) }

func (n Name) String() string { return n.DN() }

func (n Name) attribute(oid asn1.ObjectIdentifier) string {
	atvs := append(n.name.Names[:len(n.name.Names):len(n.name.Names)], n.name.ExtraNames...)
	for _, atv := range atvs {
		if !atv.Type.Equal(oid) {
			continue
		}
		if s, ok := atv.Value.(string); ok {
			return s
		}
		return fmt.Sprint(atv.Value)
	}
	return ""
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
