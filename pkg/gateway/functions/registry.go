// Package functions provides the leaf functions of policy trees and the
// registry that builds them from configuration.
//
// Every function expands its string settings as templates at execution
// time, so a setting may refer to request data or to variables set
// earlier in the tree.
package functions

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/identity"
	"mercator-hq/gateway/pkg/variable"
)

// Function type names.
const (
	TypeContinue                   = "continue"
	TypeFail                       = "fail"
	TypeStop                       = "stop"
	TypeSetVariable                = "set_variable"
	TypeMath                       = "math"
	TypeSetResponseContent         = "set_response_content"
	TypeSetHeader                  = "set_header"
	TypeRequireBasicAuthentication = "require_basic_authentication"
	TypeRequireTransportSecurity   = "require_transport_security"
	TypeLog                        = "log"
)

var (
	// ErrUnknownType is returned when no factory is registered for a type.
	ErrUnknownType = errors.New("unknown function type")

	// ErrDuplicateType is returned when a type is registered twice.
	ErrDuplicateType = errors.New("function type already registered")
)

// Deps are the collaborators available to factories.
type Deps struct {
	Logger   *slog.Logger
	Verifier identity.Verifier
}

// Factory builds a function from its configuration.
type Factory func(name string, cfg map[string]string, deps Deps) (gateway.Function, error)

// Registry maps function type names to factories. It is not safe to
// register types concurrently with Build.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.factories[TypeContinue] = newContinue
	r.factories[TypeFail] = newFail
	r.factories[TypeStop] = newStop
	r.factories[TypeSetVariable] = newSetVariable
	r.factories[TypeMath] = newMath
	r.factories[TypeSetResponseContent] = newSetResponseContent
	r.factories[TypeSetHeader] = newSetHeader
	r.factories[TypeRequireBasicAuthentication] = newRequireBasicAuthentication
	r.factories[TypeRequireTransportSecurity] = newRequireTransportSecurity
	r.factories[TypeLog] = newLog
	return r
}

// Register adds a factory for typ.
func (r *Registry) Register(typ string, f Factory) error {
	if _, ok := r.factories[typ]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, typ)
	}
	r.factories[typ] = f
	return nil
}

// Has reports whether typ is registered.
func (r *Registry) Has(typ string) bool {
	_, ok := r.factories[typ]
	return ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build creates a function of type typ.
func (r *Registry) Build(typ, name string, cfg map[string]string, deps Deps) (gateway.Function, error) {
	f, ok := r.factories[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	fn, err := f(name, cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", typ, name, err)
	}
	return fn, nil
}

func newContinue(name string, _ map[string]string, _ Deps) (gateway.Function, error) {
	return NewContinue(name), nil
}

func newFail(name string, cfg map[string]string, _ Deps) (gateway.Function, error) {
	return NewFail(name, cfg["message"]), nil
}

func newStop(name string, cfg map[string]string, _ Deps) (gateway.Function, error) {
	return NewStop(name, cfg["message"]), nil
}

func newSetVariable(name string, cfg map[string]string, _ Deps) (gateway.Function, error) {
	if cfg["name"] == "" {
		return nil, errors.New("name is required")
	}
	kind, err := ParseKind(cfg["type"])
	if err != nil {
		return nil, err
	}
	var opts []SetVariableOption
	if kind != KindAny {
		numberOpts, err := numberOptions(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, AsKind(kind, numberOpts...))
	}
	if from := cfg["value_from"]; from != "" {
		if _, ok := cfg["value"]; ok {
			return nil, errors.New("value and value_from are mutually exclusive")
		}
		opts = append(opts, ValueFrom(from))
	}
	return NewSetVariable(name, cfg["name"], cfg["value"], opts...), nil
}

func newMath(name string, cfg map[string]string, _ Deps) (gateway.Function, error) {
	op, err := ParseOperator(cfg["function"])
	if err != nil {
		return nil, err
	}
	return NewMath(name, op, cfg["source"], cfg["function_param_1"], cfg["target"]), nil
}

func newSetResponseContent(name string, cfg map[string]string, _ Deps) (gateway.Function, error) {
	status := 0
	if s := cfg["status_code"]; s != "" {
		code, err := strconv.Atoi(s)
		if err != nil || code < 100 || code > 599 {
			return nil, fmt.Errorf("invalid status_code %q", s)
		}
		status = code
	}
	return NewSetResponseContent(name, cfg["content"], cfg["content_type"], status), nil
}

func newSetHeader(name string, cfg map[string]string, _ Deps) (gateway.Function, error) {
	if cfg["name"] == "" {
		return nil, errors.New("name is required")
	}
	return NewSetHeader(name, cfg["name"], cfg["value"]), nil
}

func newRequireBasicAuthentication(name string, cfg map[string]string, deps Deps) (gateway.Function, error) {
	verify, err := parseBool(cfg, "verify")
	if err != nil {
		return nil, err
	}
	var verifier identity.Verifier
	if verify {
		if deps.Verifier == nil {
			return nil, errors.New("verify requires a credential store")
		}
		verifier = deps.Verifier
	}
	return NewRequireBasicAuthentication(name, cfg["realm"], verifier), nil
}

func newRequireTransportSecurity(name string, cfg map[string]string, _ Deps) (gateway.Function, error) {
	required, err := parseBool(cfg, "require_client_certificate")
	if err != nil {
		return nil, err
	}
	return NewRequireTransportSecurity(name, required), nil
}

func newLog(name string, cfg map[string]string, _ Deps) (gateway.Function, error) {
	level, err := ParseLevel(cfg["level"])
	if err != nil {
		return nil, err
	}
	return NewLog(name, cfg["message"], level), nil
}

func numberOptions(cfg map[string]string) ([]variable.NumberOption, error) {
	var opts []variable.NumberOption
	if s := cfg["scale"]; s != "" {
		scale, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid scale %q", s)
		}
		opts = append(opts, variable.WithScale(int32(scale)))
	}
	if s := cfg["precision"]; s != "" {
		precision, err := strconv.ParseUint(s, 10, 32)
		if err != nil || precision == 0 {
			return nil, fmt.Errorf("invalid precision %q", s)
		}
		opts = append(opts, variable.WithPrecision(uint32(precision)))
	}
	if s := cfg["rounding"]; s != "" {
		rounding, err := variable.ParseRounding(s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, variable.WithRounding(rounding))
	}
	return opts, nil
}

func parseBool(cfg map[string]string, key string) (bool, error) {
	s := cfg[key]
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return b, nil
}
