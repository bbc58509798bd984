package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mercator-hq/gateway/pkg/cli"
)

func TestValidateAPIs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"shop.yaml": shopDefinition,
		"orders/orders.yml": `
name: orders
context_root: /shop/orders
functions:
  - type: stop
on_error:
  - type: continue
`,
		"README.md": "ignored",
	})
	useConfig(t, t.TempDir())

	validateFlags.output = "text"
	cmd, out := newTestCommand()
	if err := validateAPIs(cmd, []string{dir}); err != nil {
		t.Fatalf("validateAPIs() error = %v\n%s", err, out.String())
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out.String())
	}
	if fields := strings.Fields(lines[0]); fields[0] != "NAME" {
		t.Errorf("header = %q", lines[0])
	}
	if fields := strings.Fields(lines[1]); len(fields) != 4 || fields[0] != "orders" || fields[2] != "1" || fields[3] != "1" {
		t.Errorf("orders row = %q", lines[1])
	}
	if fields := strings.Fields(lines[2]); len(fields) != 4 || fields[1] != "/shop" || fields[2] != "2" || fields[3] != "0" {
		t.Errorf("shop row = %q", lines[2])
	}
}

func TestValidateAPIs_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"shop.yaml": shopDefinition})
	useConfig(t, dir)

	validateFlags.output = "json"
	t.Cleanup(func() { validateFlags.output = "text" })
	cmd, out := newTestCommand()
	if err := validateAPIs(cmd, nil); err != nil {
		t.Fatalf("validateAPIs() error = %v", err)
	}

	var report apiReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if report.Dir != dir || len(report.APIs) != 1 || report.APIs[0].Name != "shop" {
		t.Errorf("report = %+v", report)
	}
}

func TestValidateAPIs_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.yaml": shopDefinition,
		"b.yaml": strings.Replace(shopDefinition, "name: shop", "name: other", 1),
		"c.yaml": `
name: broken
context_root: /broken
functions:
  - type: no_such_function
`,
		"d.yaml": "name: [",
	})
	useConfig(t, t.TempDir())

	validateFlags.output = "text"
	cmd, out := newTestCommand()
	err := validateAPIs(cmd, []string{dir})
	if !errors.Is(err, cli.ErrValidationFailed) {
		t.Fatalf("validateAPIs() error = %v, want ErrValidationFailed", err)
	}
	if got := strings.Count(out.String(), "✗"); got != 3 {
		t.Errorf("got %d errors, want 3:\n%s", got, out.String())
	}
	for _, want := range []string{"b.yaml", "c.yaml", "d.yaml", "3 error(s)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestValidateAPIs_BadFormat(t *testing.T) {
	validateFlags.output = "xml"
	t.Cleanup(func() { validateFlags.output = "text" })

	cmd, _ := newTestCommand()
	err := validateAPIs(cmd, []string{t.TempDir()})
	if got := cli.ExitCode(err); got != 2 {
		t.Errorf("ExitCode() = %d, want 2 (err %v)", got, err)
	}
}
