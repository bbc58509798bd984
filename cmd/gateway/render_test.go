package main

import (
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/gateway/pkg/cli"
)

func resetRenderFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		renderFlags.template = ""
		renderFlags.apiFile = ""
		renderFlags.method = "GET"
		renderFlags.url = "http://localhost/"
		renderFlags.headers = nil
		renderFlags.body = ""
		renderFlags.vars = nil
	}
	reset()
	t.Cleanup(reset)
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		headers  []string
		vars     []string
		want     string
	}{
		{
			name:     "header",
			template: "hello ${request.header.x-user}",
			headers:  []string{"X-User: bob"},
			want:     "hello bob\n",
		},
		{
			name:     "variables",
			template: "${first}-${second}",
			vars:     []string{"first=a", "second=b=c"},
			want:     "a-b=c\n",
		},
		{
			name:     "transport",
			template: "${transport.interfacealias} ${transport.issecure} ${transport.http.request.method}",
			want:     "cli false GET\n",
		},
		{
			name:     "unresolved",
			template: "[${nothing.here}]",
			want:     "[]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetRenderFlags(t)
			renderFlags.template = tt.template
			renderFlags.headers = tt.headers
			renderFlags.vars = tt.vars

			cmd, out := newTestCommand()
			if err := renderTemplate(cmd, nil); err != nil {
				t.Fatalf("renderTemplate() error = %v", err)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderTemplate_InvalidFlags(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		vars    []string
		url     string
	}{
		{name: "header without colon", headers: []string{"X-User bob"}},
		{name: "variable without value", vars: []string{"total"}},
		{name: "empty variable name", vars: []string{"=1"}},
		{name: "bad url", url: "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetRenderFlags(t)
			renderFlags.template = "x"
			renderFlags.headers = tt.headers
			renderFlags.vars = tt.vars
			if tt.url != "" {
				renderFlags.url = tt.url
			}

			cmd, _ := newTestCommand()
			err := renderTemplate(cmd, nil)
			if got := cli.ExitCode(err); got != 2 {
				t.Errorf("ExitCode() = %d, want 2 (err %v)", got, err)
			}
		})
	}
}

func TestRenderAPI(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"shop.yaml": shopDefinition})

	resetRenderFlags(t)
	renderFlags.apiFile = filepath.Join(dir, "shop.yaml")
	renderFlags.method = "POST"
	renderFlags.url = "http://localhost/shop/orders"
	renderFlags.headers = []string{"X-User: alice"}

	cmd, out := newTestCommand()
	if err := renderTemplate(cmd, nil); err != nil {
		t.Fatalf("renderTemplate() error = %v", err)
	}
	for _, want := range []string{
		"Result: succeeded\n",
		"Status: 201\n",
		"X-Method: POST\n",
		"\nhello alice\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRenderAPI_PathOutsideContextRoot(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"shop.yaml": shopDefinition})

	resetRenderFlags(t)
	renderFlags.apiFile = filepath.Join(dir, "shop.yaml")
	renderFlags.url = "http://localhost/shopping"

	cmd, _ := newTestCommand()
	err := renderTemplate(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "not below context root /shop") {
		t.Errorf("renderTemplate() error = %v", err)
	}
}
