package gateway

import (
	"strings"

	"mercator-hq/gateway/pkg/resolve"
)

// MaxSubstitutions bounds the number of placeholders expanded by one
// Parse call. A variable whose value refers to itself would otherwise
// expand forever.
const MaxSubstitutions = 1024

// RootResolver resolves the remainder of a path below a reserved root.
type RootResolver func(ec *ExecutionContext, path string) any

// Parser expands ${path} placeholders.
type Parser struct {
	roots map[string]RootResolver
	limit int
}

var defaultParser = NewParser()

// NewParser returns a parser with the roots request, response, account,
// transport and api.
func NewParser() *Parser {
	p := &Parser{
		roots: make(map[string]RootResolver),
		limit: MaxSubstitutions,
	}
	p.Register("request", func(ec *ExecutionContext, path string) any {
		return resolve.Message(path, ec.Request())
	})
	p.Register("response", func(ec *ExecutionContext, path string) any {
		return resolve.Message(path, ec.Response())
	})
	p.Register("account", func(ec *ExecutionContext, path string) any {
		return resolve.Account(path, ec.Account())
	})
	p.Register("transport", func(ec *ExecutionContext, path string) any {
		return resolve.Transport(path, ec.Transport())
	})
	p.Register("api", func(ec *ExecutionContext, path string) any {
		if ec.API() == nil {
			return nil
		}
		return resolve.APIInfo(path, ec.API())
	})
	return p
}

// Register adds or replaces a reserved root. Roots match case
// insensitively and shadow variables of the same name. Register must not
// be called once the parser is in use.
func (p *Parser) Register(root string, fn RootResolver) {
	p.roots[strings.ToLower(root)] = fn
}

// Resolve returns the value of path. Reserved roots are tried first,
// then the scope stack: an exact variable name, or the longest variable
// name that is a prefix of path and holds a resolvable object, which
// resolves the remainder.
func (p *Parser) Resolve(ec *ExecutionContext, path string) any {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	root, rest := splitRoot(path)
	if fn, ok := p.roots[strings.ToLower(root)]; ok {
		return fn(ec, rest)
	}

	vars := ec.Variables()
	if v, ok := vars.Get(path); ok {
		return v
	}
	for i := len(path) - 1; i > 0; i-- {
		if path[i] != '.' && path[i] != '[' {
			continue
		}
		v, ok := vars.Get(path[:i])
		if !ok {
			continue
		}
		r, ok := v.(resolve.Resolvable)
		if !ok {
			return nil
		}
		if path[i] == '.' {
			return r.Resolve(path[i+1:])
		}
		return r.Resolve(path[i:])
	}
	return nil
}

// Parse expands the placeholders of template, scanning from the last
// "${" so that values which are templates themselves are expanded on a
// later pass. Unresolved paths expand to the empty string. An
// unterminated placeholder and everything after it is left as is.
func (p *Parser) Parse(ec *ExecutionContext, template string) string {
	result := template
	// bytes at the end of result that are no longer scanned
	frozen := 0
	for n := 0; ; n++ {
		limit := len(result) - frozen
		start := strings.LastIndex(result[:limit], "${")
		if start < 0 {
			return result
		}
		end := strings.IndexByte(result[start+2:], '}')
		if end < 0 {
			frozen = len(result) - start
			continue
		}
		end += start + 2

		if n >= p.limit {
			ec.Logger().Warn("template substitution limit reached",
				"limit", p.limit,
				"template", template,
			)
			return result
		}

		value := resolve.Format(p.Resolve(ec, result[start+2:end]))
		result = result[:start] + value + result[end+1:]
	}
}

// splitRoot splits path at its first '.' or '['. The separating dot is
// dropped; an opening bracket stays with the remainder.
func splitRoot(path string) (root, rest string) {
	i := strings.IndexAny(path, ".[")
	if i < 0 {
		return path, ""
	}
	if path[i] == '.' {
		return path[:i], path[i+1:]
	}
	return path[:i], path[i:]
}
