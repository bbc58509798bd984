package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/gateway/pkg/cli"
	"mercator-hq/gateway/pkg/config"
)

func resetRunFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		runFlags.listenAddress = ""
		runFlags.logLevel = ""
		runFlags.dryRun = false
	}
	reset()
	t.Cleanup(reset)
}

func TestRunGateway_DryRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"shop.yaml": shopDefinition})
	useConfig(t, dir)

	resetRunFlags(t)
	runFlags.dryRun = true
	runFlags.listenAddress = "127.0.0.1:19443"

	cmd, out := newTestCommand()
	if err := runGateway(cmd, nil); err != nil {
		t.Fatalf("runGateway() error = %v\n%s", err, out.String())
	}
	for _, want := range []string{"✓ Configuration valid (1 interfaces)", "✓ APIs valid (1 apis in " + dir + ")"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if got := config.GetConfig().Interfaces[0].ListenAddress; got != "127.0.0.1:19443" {
		t.Errorf("listen address = %q, want override", got)
	}
}

func TestRunGateway_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		apisDir  string
		logLevel string
		wantCode int
	}{
		{
			name:     "invalid log level",
			logLevel: "verbose",
			wantCode: 2,
		},
		{
			name:     "missing api directory",
			apisDir:  "missing",
			wantCode: 1,
		},
		{
			name:     "invalid api",
			files:    map[string]string{"bad.yaml": "name: bad\ncontext_root: /bad\nfunctions:\n  - type: nope\n"},
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)
			if tt.apisDir != "" {
				dir = filepath.Join(dir, tt.apisDir)
			}
			useConfig(t, dir)

			resetRunFlags(t)
			runFlags.dryRun = true
			runFlags.logLevel = tt.logLevel

			cmd, _ := newTestCommand()
			err := runGateway(cmd, nil)
			if got := cli.ExitCode(err); got != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d (err %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	orig := cfgFile
	t.Cleanup(func() { cfgFile = orig })
	cmd, _ := newTestCommand()
	cmd.Flags().StringVar(&cfgFile, "config", DefaultConfigFile, "")
	if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatal(err)
	}

	_, err := loadConfig(cmd)
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("loadConfig() error = %v, want ConfigError", err)
	}
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	orig := cfgFile
	t.Cleanup(func() { cfgFile = orig })
	cfgFile = DefaultConfigFile

	cmd, _ := newTestCommand()
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Interfaces[0].Alias != config.DefaultInterfaceAlias {
		t.Errorf("alias = %q, want %q", cfg.Interfaces[0].Alias, config.DefaultInterfaceAlias)
	}
}
