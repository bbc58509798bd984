package variable

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

const (
	// DefaultScale is the number of fractional digits a Number keeps when
	// no scale is configured.
	DefaultScale int32 = 2

	// DefaultPrecision is the number of significant digits used for
	// arithmetic when no precision is configured.
	DefaultPrecision uint32 = 64

	// DefaultRounding is the rounding mode used when none is configured.
	DefaultRounding = apd.RoundHalfUp
)

// roundings maps configuration names to apd rounding modes.
var roundings = map[string]apd.Rounder{
	"half_up":   apd.RoundHalfUp,
	"half_down": apd.RoundHalfDown,
	"half_even": apd.RoundHalfEven,
	"up":        apd.RoundUp,
	"down":      apd.RoundDown,
	"ceiling":   apd.RoundCeiling,
	"floor":     apd.RoundFloor,
}

// ParseRounding converts a configuration name such as "half_up" or
// "HALF_EVEN" into a rounding mode.
func ParseRounding(name string) (apd.Rounder, error) {
	r, ok := roundings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown rounding mode %q", name)
	}
	return r, nil
}

// Number is a variable holding a decimal value with a fixed scale.
//
// The precision and rounding mode apply to the arithmetic operations;
// the rounding mode also applies when a value is re-scaled on Set.
type Number struct {
	name      string
	value     *apd.Decimal
	scale     int32
	precision uint32
	rounding  apd.Rounder
}

// NumberOption configures a Number.
type NumberOption func(*Number)

// WithScale sets the number of fractional digits.
func WithScale(scale int32) NumberOption {
	return func(n *Number) {
		n.scale = scale
	}
}

// WithPrecision sets the number of significant digits used for
// arithmetic. Zero keeps the default.
func WithPrecision(precision uint32) NumberOption {
	return func(n *Number) {
		if precision > 0 {
			n.precision = precision
		}
	}
}

// WithRounding sets the rounding mode. An empty rounder keeps the default.
func WithRounding(r apd.Rounder) NumberOption {
	return func(n *Number) {
		if r != "" {
			n.rounding = r
		}
	}
}

// NewNumber returns an unset number variable.
func NewNumber(name string, opts ...NumberOption) *Number {
	n := &Number{
		name:      name,
		scale:     DefaultScale,
		precision: DefaultPrecision,
		rounding:  DefaultRounding,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Number) Name() string          { return n.name }
func (n *Number) HasValue() bool        { return n.value != nil }
func (n *Number) Scale() int32          { return n.scale }
func (n *Number) Precision() uint32     { return n.precision }
func (n *Number) Rounding() apd.Rounder { return n.rounding }

// Value returns a copy of the stored decimal, or nil when unset.
func (n *Number) Value() *apd.Decimal {
	if n.value == nil {
		return nil
	}
	return new(apd.Decimal).Set(n.value)
}

// String renders the value in plain notation with exactly Scale
// fractional digits, or "" when unset.
func (n *Number) String() string {
	if n.value == nil {
		return ""
	}
	return n.value.Text('f')
}

// Set stores a copy of d re-scaled to the variable's scale. A nil d unsets
// the variable.
func (n *Number) Set(d *apd.Decimal) error {
	if d == nil {
		n.value = nil
		return nil
	}
	if d.Form != apd.Finite {
		return fmt.Errorf("%w: %s", ErrNotNumber, d.String())
	}
	v, err := n.rescale(d)
	if err != nil {
		return err
	}
	n.value = v
	return nil
}

// SetString parses s as a decimal and stores it.
func (n *Number) SetString(s string) error {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrNotNumber, s)
	}
	return n.Set(d)
}

// SetInt64 stores i.
func (n *Number) SetInt64(i int64) error {
	return n.Set(apd.New(i, 0))
}

// SetFloat64 stores f.
func (n *Number) SetFloat64(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %v", ErrNotNumber, f)
	}
	d, err := new(apd.Decimal).SetFloat64(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotNumber, f)
	}
	return n.Set(d)
}

// Unset clears the value.
func (n *Number) Unset() {
	n.value = nil
}

// SetScale changes the scale and re-scales the stored value.
func (n *Number) SetScale(scale int32) error {
	n.scale = scale
	if n.value == nil {
		return nil
	}
	return n.Set(n.value)
}

// SetPrecision changes the arithmetic precision. The stored value is not
// touched.
func (n *Number) SetPrecision(precision uint32) {
	if precision > 0 {
		n.precision = precision
	}
}

// SetRounding changes the rounding mode. The stored value is not touched.
func (n *Number) SetRounding(r apd.Rounder) {
	if r != "" {
		n.rounding = r
	}
}

// Clone returns a variable named name with the same configuration and
// value as n.
func (n *Number) Clone(name string) *Number {
	c := &Number{
		name:      name,
		scale:     n.scale,
		precision: n.precision,
		rounding:  n.rounding,
	}
	c.value = n.Value()
	return c
}

// Add adds other to n. An unset other leaves n unchanged; an unset n
// counts as zero.
func (n *Number) Add(other *Number) error {
	return n.apply(other, (*apd.Context).Add)
}

// Sub subtracts other from n.
func (n *Number) Sub(other *Number) error {
	return n.apply(other, (*apd.Context).Sub)
}

// Mul multiplies n by other.
func (n *Number) Mul(other *Number) error {
	return n.apply(other, (*apd.Context).Mul)
}

// Quo divides n by other. Division by zero returns an error and leaves n
// unchanged.
func (n *Number) Quo(other *Number) error {
	return n.apply(other, (*apd.Context).Quo)
}

// Abs replaces n with its absolute value. An unset n becomes zero.
func (n *Number) Abs() error {
	x := n.operand()
	res := new(apd.Decimal)
	if _, err := n.context().Abs(res, x); err != nil {
		return fmt.Errorf("absolute value of %s: %w", n.name, err)
	}
	return n.Set(res)
}

// Max replaces n with the larger of n and other.
func (n *Number) Max(other *Number) error {
	if other == nil || other.value == nil {
		return n.Set(n.operand())
	}
	x := n.operand()
	if x.Cmp(other.value) < 0 {
		x = other.value
	}
	return n.Set(x)
}

// Min replaces n with the smaller of n and other.
func (n *Number) Min(other *Number) error {
	if other == nil || other.value == nil {
		return n.Set(n.operand())
	}
	x := n.operand()
	if x.Cmp(other.value) > 0 {
		x = other.value
	}
	return n.Set(x)
}

// Cmp compares the values of n and other; unset values count as zero.
func (n *Number) Cmp(other *Number) int {
	return n.operand().Cmp(other.operand())
}

type binaryOp func(c *apd.Context, d, x, y *apd.Decimal) (apd.Condition, error)

func (n *Number) apply(other *Number, op binaryOp) error {
	if other == nil || other.value == nil {
		return nil
	}
	res := new(apd.Decimal)
	if _, err := op(n.context(), res, n.operand(), other.value); err != nil {
		return fmt.Errorf("%s: %w", n.name, err)
	}
	return n.Set(res)
}

// operand returns the stored value, or zero when unset.
func (n *Number) operand() *apd.Decimal {
	if n == nil || n.value == nil {
		return apd.New(0, 0)
	}
	return n.value
}

func (n *Number) context() *apd.Context {
	return &apd.Context{
		Precision:   n.precision,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    n.rounding,
	}
}

// rescale quantizes d to the variable's scale using its rounding mode.
// The quantize context is sized to the result so no significant digit is
// lost to the arithmetic precision.
func (n *Number) rescale(d *apd.Decimal) (*apd.Decimal, error) {
	exp := -n.scale
	digits := d.NumDigits()
	if diff := int64(d.Exponent) - int64(exp); diff > 0 {
		digits += diff
	}
	ctx := apd.BaseContext.WithPrecision(uint32(digits) + 1)
	ctx.Rounding = n.rounding

	res := new(apd.Decimal)
	if _, err := ctx.Quantize(res, d, exp); err != nil {
		return nil, fmt.Errorf("scale %s to %d digits: %w", n.name, n.scale, err)
	}
	if res.IsZero() {
		res.Negative = false
	}
	return res, nil
}

// ToNumber converts a stack value into a Number named name. Numbers are
// cloned, strings and string variables are parsed, and Go numeric types
// are converted directly.
func ToNumber(name string, v any, opts ...NumberOption) (*Number, error) {
	switch t := v.(type) {
	case *Number:
		c := t.Clone(name)
		for _, opt := range opts {
			opt(c)
		}
		if c.value != nil {
			if err := c.Set(c.value); err != nil {
				return nil, err
			}
		}
		return c, nil
	case nil:
		return NewNumber(name, opts...), nil
	}

	n := NewNumber(name, opts...)
	var err error
	switch t := v.(type) {
	case *String:
		if !t.HasValue() {
			return n, nil
		}
		err = n.SetString(t.Value())
	case string:
		err = n.SetString(t)
	case *apd.Decimal:
		err = n.Set(t)
	case int:
		err = n.SetInt64(int64(t))
	case int32:
		err = n.SetInt64(int64(t))
	case int64:
		err = n.SetInt64(t)
	case uint32:
		err = n.SetInt64(int64(t))
	case float32:
		err = n.SetString(strconv.FormatFloat(float64(t), 'f', -1, 32))
	case float64:
		err = n.SetFloat64(t)
	case fmt.Stringer:
		err = n.SetString(t.String())
	default:
		err = fmt.Errorf("%w: %T", ErrNotNumber, v)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}
