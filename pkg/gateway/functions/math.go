package functions

import (
	"fmt"
	"strings"

	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/variable"
)

// Operator is an arithmetic operation of Math.
type Operator string

const (
	OpAdd      Operator = "add"
	OpSubtract Operator = "subtract"
	OpMultiply Operator = "multiply"
	OpDivide   Operator = "divide"
	OpAbsolute Operator = "absolute"
	OpMaximum  Operator = "maximum"
	OpMinimum  Operator = "minimum"
)

// ParseOperator parses an operator name, ignoring case.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.ToLower(strings.TrimSpace(s))); op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpAbsolute, OpMaximum, OpMinimum:
		return op, nil
	default:
		return "", fmt.Errorf("unknown math function %q", s)
	}
}

// Unary reports whether op takes no parameter.
func (op Operator) Unary() bool {
	return op == OpAbsolute
}

// Math applies an operator to a source variable and a parameter
// variable and stores the outcome in a target variable. The target
// defaults to the source and takes over the source's scale, precision
// and rounding. The source itself is only modified when it is the
// target.
type Math struct {
	gateway.Base
	op     Operator
	source string
	param  string
	target string
}

func NewMath(name string, op Operator, source, param, target string) *Math {
	return &Math{
		Base:   gateway.NewBase(nameOr(name, "Math")),
		op:     op,
		source: source,
		param:  param,
		target: target,
	}
}

func (f *Math) Execute(ec *gateway.ExecutionContext) gateway.Result {
	vars := ec.Variables()

	source := ec.Parse(f.source)
	if source == "" {
		return gateway.Failed(nil, "source variable not set")
	}
	sv, ok := vars.Get(source)
	if !ok {
		return gateway.Failedf(nil, "source variable %s not found", source)
	}
	target := ec.Parse(f.target)
	if target == "" {
		target = source
	}
	n, err := variable.ToNumber(target, sv)
	if err != nil {
		return gateway.Failedf(nil, "source variable %s: %v", source, err)
	}

	var p *variable.Number
	if !f.op.Unary() {
		param := ec.Parse(f.param)
		if param == "" {
			return gateway.Failed(nil, "parameter variable not set")
		}
		pv, ok := vars.Get(param)
		if !ok {
			return gateway.Failedf(nil, "parameter variable %s not found", param)
		}
		if p, err = variable.ToNumber(param, pv); err != nil {
			return gateway.Failedf(nil, "parameter variable %s: %v", param, err)
		}
		if !p.HasValue() {
			return gateway.Failedf(nil, "parameter variable %s has no value", param)
		}
	}

	switch f.op {
	case OpAdd:
		err = n.Add(p)
	case OpSubtract:
		err = n.Sub(p)
	case OpMultiply:
		err = n.Mul(p)
	case OpDivide:
		err = n.Quo(p)
	case OpAbsolute:
		err = n.Abs()
	case OpMaximum:
		err = n.Max(p)
	case OpMinimum:
		err = n.Min(p)
	default:
		return gateway.Failedf(nil, "unknown math function %q", f.op)
	}
	if err != nil {
		return gateway.Failedf(nil, "%s %s: %v", f.op, source, err)
	}

	vars.Set(target, n)
	return gateway.Succeeded()
}
