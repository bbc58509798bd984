package logging

import (
	"log/slog"
	"testing"
)

func TestRedactor_IsSensitiveKey(t *testing.T) {
	r := NewRedactor("Token", " ")
	tests := []struct {
		key  string
		want bool
	}{
		{"authorization", true},
		{"Proxy-Authorization", true},
		{"password", true},
		{"db_passwd", true},
		{"credentials", true},
		{"client_secret", true},
		{"access_token", true},
		{"username", false},
		{"api", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.IsSensitiveKey(tt.key); got != tt.want {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor()
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"no credentials here", "no credentials here"},
		{"Basic YWxpY2U6czNjcjN0", "Basic ***"},
		{"basic YWxpY2U6czNjcjN0==", "basic ***"},
		{"header Bearer eyJ.abc-def_ghi", "header Bearer ***"},
		{"basic", "basic"},
		{"Basic a, Bearer b", "Basic ***, Bearer ***"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := r.RedactString(tt.in); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactor_ReplaceAttr(t *testing.T) {
	r := NewRedactor()
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"sensitive key", slog.String("password", "hunter2"), Redacted},
		{"sensitive non-string", slog.Int("secret", 42), Redacted},
		{"credential value", slog.String("header", "Basic dXNlcjpwYXNz"), "Basic ***"},
		{"plain value", slog.String("api", "shop"), "shop"},
		{"number", slog.Int("status", 200), "200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ReplaceAttr(nil, tt.attr)
			if got.Key != tt.attr.Key {
				t.Errorf("key changed to %q", got.Key)
			}
			if got.Value.String() != tt.want {
				t.Errorf("value = %q, want %q", got.Value.String(), tt.want)
			}
		})
	}
}
