package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

const shopDefinition = `
name: shop
context_root: /shop
functions:
  - type: set_response_content
    config:
      content: "hello ${request.header.x-user}"
      content_type: text/plain
      status_code: "201"
  - type: set_header
    config:
      name: X-Method
      value: "${transport.http.request.method}"
`

// newTestCommand returns a command whose output is captured.
func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}

// writeFiles writes files below dir, creating parent directories.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

// useConfig points the --config flag at a configuration serving apisDir.
func useConfig(t *testing.T, apisDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	writeFiles(t, filepath.Dir(path), map[string]string{
		"gateway.yaml": `
interfaces:
  - alias: default
    listen_address: 127.0.0.1:18443
apis:
  dir: ` + apisDir + `
telemetry:
  logging:
    level: error
`,
	})

	orig := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = orig })
	return path
}
