// Package resolve implements the variable handler tree: one stateless
// resolver per domain shape, each translating a relative dotted path into
// a value.
//
// A resolver receives the remaining path and its subject. The empty path
// denotes the subject itself, returned bound to its resolver so it can be
// resolved further later on. A non-empty path is matched, case
// insensitively, against the keywords of the shape; keywords naming a
// nested shape delegate the remainder to that shape's resolver. Unknown
// paths yield nil, never an error.
//
// Collections follow two suffix conventions: "<name>.size" returns the
// element count (0 when absent) and "<name>[n]" the n-th element, 0 based.
// "first" and "last" are accepted as element selectors as well.
package resolve

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Resolver translates path relative to subject into a value, or nil.
type Resolver[T any] func(path string, subject T) any

// Resolvable is a value that knows how to resolve paths relative to
// itself. Values stored on the scope stack implement it so attribute
// style lookups need no knowledge of the concrete type.
type Resolvable interface {
	Resolve(path string) any
}

type bound[T any] struct {
	subject T
	resolve Resolver[T]
}

// Bind pairs subject with its resolver.
func Bind[T any](subject T, r Resolver[T]) Resolvable {
	return bound[T]{subject: subject, resolve: r}
}

func (b bound[T]) Resolve(path string) any {
	if path == "" {
		return b
	}
	return b.resolve(path, b.subject)
}

// Subject returns the bound value.
func (b bound[T]) Subject() any { return b.subject }

// String renders the subject when it has a textual form, "" otherwise.
func (b bound[T]) String() string {
	s, _ := format(b.subject)
	return s
}

// Unwrap returns the subject of a bound value, or v unchanged.
func Unwrap(v any) any {
	if s, ok := v.(interface{ Subject() any }); ok {
		return s.Subject()
	}
	return v
}

// Format renders a resolved value for substitution into a template: nil
// becomes "", string lists are joined with ", ", times use RFC 3339,
// Stringers use String and anything else goes through fmt.Sprint.
func Format(v any) string {
	if s, ok := format(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

func format(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case []string:
		return strings.Join(t, ", "), true
	case time.Time:
		return t.UTC().Format(time.RFC3339), true
	case fmt.Stringer:
		return t.String(), true
	case error:
		return t.Error(), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint16:
		return strconv.FormatUint(uint64(t), 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Match reports whether path starts with key, compared case
// insensitively, followed by the end of the path, a '.' or a '['. The
// returned rest drops a separating '.' and keeps a '['.
func Match(path, key string) (rest string, ok bool) {
	if len(path) < len(key) || !strings.EqualFold(path[:len(key)], key) {
		return "", false
	}
	if len(path) == len(key) {
		return "", true
	}
	switch path[len(key)] {
	case '.':
		return path[len(key)+1:], true
	case '[':
		return path[len(key):], true
	}
	return "", false
}

// Is reports whether path equals key, ignoring case.
func Is(path, key string) bool {
	return strings.EqualFold(path, key)
}

// List returns a resolver for a collection whose elements resolve with
// elem.
func List[T any](elem Resolver[T]) Resolver[[]T] {
	var r Resolver[[]T]
	r = func(path string, items []T) any {
		switch {
		case path == "":
			if len(items) == 0 {
				return nil
			}
			return Bind[list[T]](list[T](items), func(p string, l list[T]) any { return r(p, l) })
		case Is(path, "size"):
			return len(items)
		}
		if rest, ok := Match(path, "first"); ok {
			return at(items, 0, rest, elem)
		}
		if rest, ok := Match(path, "last"); ok {
			return at(items, len(items)-1, rest, elem)
		}
		if n, rest, ok := index(path); ok {
			return at(items, n, rest, elem)
		}
		return nil
	}
	return r
}

// list renders its elements joined with ", ".
type list[T any] []T

func (l list[T]) String() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = Format(e)
	}
	return strings.Join(parts, ", ")
}

func at[T any](items []T, n int, rest string, elem Resolver[T]) any {
	if n < 0 || n >= len(items) {
		return nil
	}
	return elem(rest, items[n])
}

// index parses a leading "[n]" and returns n and the remainder after an
// optional '.'.
func index(path string) (int, string, bool) {
	if !strings.HasPrefix(path, "[") {
		return 0, "", false
	}
	end := strings.IndexByte(path, ']')
	if end < 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(path[1:end]))
	if err != nil {
		return 0, "", false
	}
	rest := path[end+1:]
	switch {
	case rest == "":
	case rest[0] == '.':
		rest = rest[1:]
	default:
		return 0, "", false
	}
	return n, rest, true
}

// Text resolves a plain string: only the empty path yields a value.
func Text(path string, s string) any {
	if path == "" {
		return s
	}
	return nil
}

// Strings resolves a list of strings.
var Strings = List[string](Text)

// leaf returns v for the empty path and nil otherwise. An empty string
// counts as no value.
func leaf(path string, v any) any {
	if path != "" {
		return nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return v
}
