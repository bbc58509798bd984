package functions

import (
	"fmt"
	"strings"

	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/resolve"
	"mercator-hq/gateway/pkg/variable"
)

// Kind selects the type of the value stored by SetVariable.
type Kind string

const (
	// KindAny stores the value as given; string values are expanded.
	KindAny     Kind = ""
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// ParseKind parses a configured variable type.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindAny, KindString, KindNumber, KindBoolean:
		return k, nil
	default:
		return "", fmt.Errorf("unknown variable type %q", s)
	}
}

// SetVariable stores a value in the current scope. The variable name and
// string values are expanded as templates first.
type SetVariable struct {
	gateway.Base
	variable  string
	value     any
	valueFrom string
	kind      Kind
	number    []variable.NumberOption
}

// SetVariableOption configures a SetVariable.
type SetVariableOption func(*SetVariable)

// AsKind converts the value before storing it. Number options apply to
// KindNumber only.
func AsKind(k Kind, opts ...variable.NumberOption) SetVariableOption {
	return func(f *SetVariable) {
		f.kind = k
		f.number = opts
	}
}

// ValueFrom stores the object found at path instead of a literal value.
// Objects keep their shape, so ${name.subject.cn} works on a stored
// certificate.
func ValueFrom(path string) SetVariableOption {
	return func(f *SetVariable) {
		f.valueFrom = path
	}
}

func NewSetVariable(name, variableName string, value any, opts ...SetVariableOption) *SetVariable {
	f := &SetVariable{
		Base:     gateway.NewBase(nameOr(name, "SetVariable")),
		variable: variableName,
		value:    value,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *SetVariable) Execute(ec *gateway.ExecutionContext) gateway.Result {
	name := ec.Parse(f.variable)
	if name == "" {
		return gateway.Failed(nil, "variable name not set")
	}

	value := f.value
	if f.valueFrom != "" {
		value = ec.Resolve(ec.Parse(f.valueFrom))
	} else if s, ok := value.(string); ok {
		value = ec.Parse(s)
	}

	switch f.kind {
	case KindString:
		value = variable.NewStringValue(name, resolve.Format(value))
	case KindNumber:
		n, err := variable.ToNumber(name, resolve.Unwrap(value), f.number...)
		if err != nil {
			return gateway.Failedf(nil, "variable %s: %v", name, err)
		}
		value = n
	case KindBoolean:
		b := variable.NewBoolean(name)
		if v, ok := value.(bool); ok {
			b.Set(v)
		} else if err := b.SetString(resolve.Format(value)); err != nil {
			return gateway.Failedf(nil, "variable %s: %v", name, err)
		}
		value = b
	}

	ec.Variables().Set(name, value)
	return gateway.Succeeded()
}
