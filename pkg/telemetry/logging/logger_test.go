package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/gateway/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
		check   func(t *testing.T, out string)
	}{
		{
			name: "json",
			cfg:  config.LoggingConfig{Level: "info", Format: "json"},
			check: func(t *testing.T, out string) {
				var entry map[string]any
				if err := json.Unmarshal([]byte(out), &entry); err != nil {
					t.Fatalf("output is not JSON: %v: %s", err, out)
				}
				if entry["msg"] != "hello" || entry["api"] != "shop" {
					t.Errorf("unexpected entry: %v", entry)
				}
			},
		},
		{
			name: "text",
			cfg:  config.LoggingConfig{Level: "info", Format: "text"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "api=shop") {
					t.Errorf("unexpected text output: %s", out)
				}
			},
		},
		{
			name: "defaults",
			cfg:  config.LoggingConfig{},
			check: func(t *testing.T, out string) {
				if !strings.HasPrefix(out, "{") {
					t.Errorf("expected JSON by default: %s", out)
				}
			},
		},
		{
			name: "source",
			cfg:  config.LoggingConfig{Format: "json", AddSource: true},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, `"source"`) {
					t.Errorf("expected source in output: %s", out)
				}
			},
		},
		{
			name:    "invalid level",
			cfg:     config.LoggingConfig{Level: "loud"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			cfg:     config.LoggingConfig{Format: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(tt.cfg, &buf)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			logger.Info("hello", "api", "shop")
			tt.check(t, buf.String())
		})
	}
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatal(err)
	}

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	out := buf.String()
	for _, skipped := range []string{"msg=debug", "msg=info"} {
		if strings.Contains(out, skipped) {
			t.Errorf("%s should be filtered: %s", skipped, out)
		}
	}
	for _, kept := range []string{"msg=warn", "msg=error"} {
		if !strings.Contains(out, kept) {
			t.Errorf("%s missing: %s", kept, out)
		}
	}
}

func TestNew_Redacts(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Format: "json", RedactKeys: []string{"session"}}, &buf)
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("authenticated",
		"authorization", "Basic YWxpY2U6czNjcjN0",
		"header", "Bearer abc.def.ghi",
		"session_id", "s-123",
		slog.Group("account", "username", "alice", "password", "s3cr3t"),
	)

	out := buf.String()
	for _, leaked := range []string{"YWxpY2U6czNjcjN0", "abc.def.ghi", "s-123", "s3cr3t"} {
		if strings.Contains(out, leaked) {
			t.Errorf("%q leaked into log output: %s", leaked, out)
		}
	}
	if !strings.Contains(out, `"username":"alice"`) {
		t.Errorf("non-sensitive value was redacted: %s", out)
	}
	if !strings.Contains(out, `"header":"Bearer ***"`) {
		t.Errorf("bearer token not masked: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
