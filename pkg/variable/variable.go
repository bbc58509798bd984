// Package variable provides the named, typed value holders that policy
// functions store on the scope stack.
//
// Three kinds exist: String, Boolean and Number. A Number wraps an
// arbitrary precision decimal (github.com/cockroachdb/apd/v3) together
// with a scale, a precision and a rounding mode; every value written into
// a Number is re-scaled so the stored value always carries exactly the
// declared number of fractional digits.
//
// Variables compare by name only. Two variables with the same name are
// equal regardless of their kind or value.
package variable

import (
	"errors"
	"strconv"
)

// ErrNotNumber is returned when a value cannot be interpreted as a decimal
// number.
var ErrNotNumber = errors.New("variable: value is not a number")

// Variable is the behaviour shared by all typed variables.
type Variable interface {
	// Name returns the variable name.
	Name() string

	// HasValue reports whether a value has been set.
	HasValue() bool

	// String renders the value for template substitution. An unset
	// variable renders as the empty string.
	String() string
}

// Equal reports whether a and b carry the same name.
func Equal(a, b Variable) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name() == b.Name()
}

// String is a variable holding a string.
type String struct {
	name  string
	value *string
}

// NewString returns an unset string variable.
func NewString(name string) *String {
	return &String{name: name}
}

// NewStringValue returns a string variable holding value.
func NewStringValue(name, value string) *String {
	s := NewString(name)
	s.Set(value)
	return s
}

func (s *String) Name() string   { return s.name }
func (s *String) HasValue() bool { return s.value != nil }

// Value returns the stored string, or "" when unset.
func (s *String) Value() string {
	if s.value == nil {
		return ""
	}
	return *s.value
}

// Set stores value.
func (s *String) Set(value string) {
	s.value = &value
}

// Unset clears the value.
func (s *String) Unset() {
	s.value = nil
}

func (s *String) String() string {
	return s.Value()
}

// Boolean is a variable holding a boolean.
type Boolean struct {
	name  string
	value *bool
}

// NewBoolean returns an unset boolean variable.
func NewBoolean(name string) *Boolean {
	return &Boolean{name: name}
}

// NewBooleanValue returns a boolean variable holding value.
func NewBooleanValue(name string, value bool) *Boolean {
	b := NewBoolean(name)
	b.Set(value)
	return b
}

func (b *Boolean) Name() string   { return b.name }
func (b *Boolean) HasValue() bool { return b.value != nil }

// Value returns the stored boolean, or false when unset.
func (b *Boolean) Value() bool {
	return b.value != nil && *b.value
}

// Set stores value.
func (b *Boolean) Set(value bool) {
	b.value = &value
}

// SetString parses value with strconv.ParseBool and stores the result.
func (b *Boolean) SetString(value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	b.Set(v)
	return nil
}

// Unset clears the value.
func (b *Boolean) Unset() {
	b.value = nil
}

func (b *Boolean) String() string {
	if b.value == nil {
		return ""
	}
	return strconv.FormatBool(*b.value)
}
