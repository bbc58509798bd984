package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redacted replaces the value of a sensitive attribute.
const Redacted = "***"

// defaultSensitiveKeys are matched as substrings of lowercased attribute
// keys.
var defaultSensitiveKeys = []string{
	"authorization",
	"password",
	"passwd",
	"credentials",
	"secret",
	"private_key",
}

// credentialPattern matches HTTP authorization credentials embedded in a
// string value.
var credentialPattern = regexp.MustCompile(`(?i)\b(basic|bearer)\s+[a-z0-9\-._~+/]+=*`)

// Redactor removes credentials from log attributes.
type Redactor struct {
	keys []string
}

// NewRedactor returns a redactor for the built-in sensitive keys and
// extra.
func NewRedactor(extra ...string) *Redactor {
	keys := append([]string(nil), defaultSensitiveKeys...)
	for _, k := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keys = append(keys, k)
		}
	}
	return &Redactor{keys: keys}
}

// IsSensitiveKey reports whether values logged under key are redacted.
func (r *Redactor) IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range r.keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// RedactString masks authorization credentials inside s:
// "Basic dXNlcjpwYXNz" becomes "Basic ***".
func (r *Redactor) RedactString(s string) string {
	if s == "" {
		return s
	}
	return credentialPattern.ReplaceAllStringFunc(s, func(m string) string {
		scheme, _, _ := strings.Cut(m, " ")
		return scheme + " " + Redacted
	})
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. Groups are
// walked by the handler, so only leaf attributes arrive here.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if r.IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindString {
		if s := v.String(); s != "" {
			if red := r.RedactString(s); red != s {
				return slog.String(a.Key, red)
			}
		}
	}
	return a
}
