package variable

import (
	"errors"
	"testing"

	"github.com/cockroachdb/apd/v3"
)

func mustNumber(t *testing.T, name, value string, opts ...NumberOption) *Number {
	t.Helper()
	n := NewNumber(name, opts...)
	if err := n.SetString(value); err != nil {
		t.Fatalf("SetString(%q) error = %v", value, err)
	}
	return n
}

func TestNumber_SetAppliesScale(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		scale    int32
		rounding apd.Rounder
		want     string
	}{
		{name: "integer gains fraction", value: "1", scale: 2, want: "1.00"},
		{name: "extra digits rounded", value: "1.005", scale: 2, want: "1.01"},
		{name: "negative", value: "-7.125", scale: 2, want: "-7.13"},
		{name: "half up at scale zero", value: "1.5", scale: 0, rounding: apd.RoundHalfUp, want: "2"},
		{name: "half down at scale zero", value: "1.5", scale: 0, rounding: apd.RoundHalfDown, want: "1"},
		{name: "half even at scale zero", value: "2.5", scale: 0, rounding: apd.RoundHalfEven, want: "2"},
		{name: "larger scale", value: "3.1", scale: 5, want: "3.10000"},
		{name: "large integer", value: "123456789012345678901234567890", scale: 2, want: "123456789012345678901234567890.00"},
		{name: "negative zero normalized", value: "-0.001", scale: 2, want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNumber("n", WithScale(tt.scale), WithRounding(tt.rounding))
			if err := n.SetString(tt.value); err != nil {
				t.Fatalf("SetString() error = %v", err)
			}
			if got := n.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumber_SetScaleRescalesValue(t *testing.T) {
	n := mustNumber(t, "n", "12.34")
	if err := n.SetScale(5); err != nil {
		t.Fatalf("SetScale() error = %v", err)
	}
	if got := n.String(); got != "12.34000" {
		t.Errorf("String() = %q, want 12.34000", got)
	}
	if err := n.SetScale(1); err != nil {
		t.Fatalf("SetScale() error = %v", err)
	}
	if got := n.String(); got != "12.3" {
		t.Errorf("String() = %q, want 12.3", got)
	}
}

func TestNumber_PrecisionAppliesToArithmetic(t *testing.T) {
	almostOne := mustNumber(t, "almost", "1.01")

	n := mustNumber(t, "n", "1", WithPrecision(2))
	if err := n.Add(almostOne); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := n.String(); got != "2.00" {
		t.Errorf("precision 2: String() = %q, want 2.00", got)
	}

	if err := n.SetInt64(1); err != nil {
		t.Fatalf("SetInt64() error = %v", err)
	}
	n.SetPrecision(3)
	if err := n.Add(almostOne); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := n.String(); got != "2.01" {
		t.Errorf("precision 3: String() = %q, want 2.01", got)
	}
}

func TestNumber_Arithmetic(t *testing.T) {
	oneAndAHalf := mustNumber(t, "half", "1.5", WithPrecision(1))

	t.Run("add to unset", func(t *testing.T) {
		n := NewNumber("n")
		if err := n.Add(oneAndAHalf); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if got := n.String(); got != "1.50" {
			t.Errorf("after first Add = %q, want 1.50", got)
		}
		if err := n.Add(oneAndAHalf); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if got := n.String(); got != "3.00" {
			t.Errorf("after second Add = %q, want 3.00", got)
		}
	})

	t.Run("one plus one and a half", func(t *testing.T) {
		n := mustNumber(t, "n", "1")
		if err := n.Add(oneAndAHalf); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if got := n.String(); got != "2.50" {
			t.Errorf("String() = %q, want 2.50", got)
		}
	})

	t.Run("subtract from unset", func(t *testing.T) {
		n := NewNumber("n")
		if err := n.Sub(oneAndAHalf); err != nil {
			t.Fatalf("Sub() error = %v", err)
		}
		if err := n.Sub(oneAndAHalf); err != nil {
			t.Fatalf("Sub() error = %v", err)
		}
		if got := n.String(); got != "-3.00" {
			t.Errorf("String() = %q, want -3.00", got)
		}
	})

	t.Run("multiply", func(t *testing.T) {
		n := NewNumber("n")
		if err := n.Add(oneAndAHalf); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if err := n.Mul(oneAndAHalf); err != nil {
			t.Fatalf("Mul() error = %v", err)
		}
		if got := n.String(); got != "2.25" {
			t.Errorf("String() = %q, want 2.25", got)
		}
	})

	t.Run("divide ten by three", func(t *testing.T) {
		n := NewNumber("n")
		if err := n.Add(mustNumber(t, "ten", "10")); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if err := n.Quo(mustNumber(t, "three", "3")); err != nil {
			t.Fatalf("Quo() error = %v", err)
		}
		if got := n.String(); got != "3.33" {
			t.Errorf("String() = %q, want 3.33", got)
		}
	})

	t.Run("absolute", func(t *testing.T) {
		n := mustNumber(t, "n", "-4.2")
		if err := n.Abs(); err != nil {
			t.Fatalf("Abs() error = %v", err)
		}
		if got := n.String(); got != "4.20" {
			t.Errorf("String() = %q, want 4.20", got)
		}
	})

	t.Run("maximum and minimum", func(t *testing.T) {
		n := mustNumber(t, "n", "3")
		if err := n.Max(mustNumber(t, "m", "7.5")); err != nil {
			t.Fatalf("Max() error = %v", err)
		}
		if got := n.String(); got != "7.50" {
			t.Errorf("Max: String() = %q, want 7.50", got)
		}
		if err := n.Min(mustNumber(t, "m", "-1")); err != nil {
			t.Fatalf("Min() error = %v", err)
		}
		if got := n.String(); got != "-1.00" {
			t.Errorf("Min: String() = %q, want -1.00", got)
		}
	})
}

func TestNumber_UnsetOperandIsNoOp(t *testing.T) {
	unset := NewNumber("unset")
	ops := map[string]func(n *Number) error{
		"add":      func(n *Number) error { return n.Add(unset) },
		"subtract": func(n *Number) error { return n.Sub(unset) },
		"multiply": func(n *Number) error { return n.Mul(unset) },
		"divide":   func(n *Number) error { return n.Quo(unset) },
		"maximum":  func(n *Number) error { return n.Max(unset) },
		"minimum":  func(n *Number) error { return n.Min(unset) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			n := mustNumber(t, "n", "5")
			if err := op(n); err != nil {
				t.Fatalf("error = %v", err)
			}
			if got := n.String(); got != "5.00" {
				t.Errorf("String() = %q, want 5.00", got)
			}
		})
	}
}

func TestNumber_DivisionByZero(t *testing.T) {
	n := mustNumber(t, "n", "5")
	if err := n.Quo(mustNumber(t, "zero", "0")); err == nil {
		t.Fatal("Quo() by zero returned no error")
	}
	if got := n.String(); got != "5.00" {
		t.Errorf("value after failed Quo = %q, want 5.00", got)
	}
}

func TestNumber_SetStringRejectsGarbage(t *testing.T) {
	n := NewNumber("n")
	err := n.SetString("five")
	if !errors.Is(err, ErrNotNumber) {
		t.Errorf("SetString() error = %v, want ErrNotNumber", err)
	}
	if n.HasValue() {
		t.Error("HasValue() = true after failed SetString")
	}
}

func TestNumber_CloneIsIndependent(t *testing.T) {
	n := mustNumber(t, "n", "5", WithScale(3))
	c := n.Clone("copy")
	if err := c.Add(mustNumber(t, "one", "1")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := n.String(); got != "5.000" {
		t.Errorf("original = %q, want 5.000", got)
	}
	if got := c.String(); got != "6.000" {
		t.Errorf("clone = %q, want 6.000", got)
	}
	if c.Name() != "copy" {
		t.Errorf("clone Name() = %q", c.Name())
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{name: "string", value: "2", want: "2.00"},
		{name: "string variable", value: NewStringValue("s", "1.25"), want: "1.25"},
		{name: "unset string variable", value: NewString("s"), want: ""},
		{name: "int", value: 7, want: "7.00"},
		{name: "int64", value: int64(-3), want: "-3.00"},
		{name: "float64", value: 0.5, want: "0.50"},
		{name: "number", value: NewNumber("x", WithScale(4)), want: ""},
		{name: "nil", value: nil, want: ""},
		{name: "boolean", value: NewBooleanValue("b", true), wantErr: true},
		{name: "struct", value: struct{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ToNumber("target", tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ToNumber() = %v, want error", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToNumber() error = %v", err)
			}
			if n.Name() != "target" {
				t.Errorf("Name() = %q, want target", n.Name())
			}
			if got := n.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRounding(t *testing.T) {
	tests := []struct {
		in      string
		want    apd.Rounder
		wantErr bool
	}{
		{in: "half_up", want: apd.RoundHalfUp},
		{in: "HALF_EVEN", want: apd.RoundHalfEven},
		{in: " floor ", want: apd.RoundFloor},
		{in: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRounding(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRounding() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRounding() = %q, want %q", got, tt.want)
			}
		})
	}
}
