package config

import (
	"sync"
	"testing"
)

func TestInitialize(t *testing.T) {
	reset()
	t.Cleanup(reset)

	path := writeConfig(t, "gateway:\n  cluster_name: first\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Gateway.ClusterName != "first" {
		t.Errorf("expected cluster name first, got %q", cfg.Gateway.ClusterName)
	}

	// later calls are ignored
	other := writeConfig(t, "gateway:\n  cluster_name: second\n")
	if err := Initialize(other); err != nil {
		t.Fatalf("second Initialize returned %v", err)
	}
	if GetConfig().Gateway.ClusterName != "first" {
		t.Error("second Initialize replaced the configuration")
	}
}

func TestInitialize_Error(t *testing.T) {
	reset()
	t.Cleanup(reset)

	if err := Initialize(writeConfig(t, "interfaces: []\nunknown: 1\n")); err == nil {
		t.Fatal("expected error")
	}
	if GetConfig() != nil {
		t.Error("failed Initialize installed a configuration")
	}
}

func TestReloadConfig(t *testing.T) {
	reset()
	t.Cleanup(reset)

	SetConfig(Default())
	before := GetConfig()

	if err := ReloadConfig(writeConfig(t, "telemetry:\n  logging:\n    level: loud\n")); err == nil {
		t.Fatal("expected reload error")
	}
	if GetConfig() != before {
		t.Error("failed reload replaced the configuration")
	}

	if err := ReloadConfig(writeConfig(t, "gateway:\n  cluster_name: reloaded\n")); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if GetConfig().Gateway.ClusterName != "reloaded" {
		t.Errorf("expected reloaded config, got %q", GetConfig().Gateway.ClusterName)
	}
}

func TestMustGetConfig(t *testing.T) {
	reset()
	t.Cleanup(reset)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic without configuration")
			}
		}()
		MustGetConfig()
	}()

	SetConfig(Default())
	if MustGetConfig() == nil {
		t.Error("expected configuration")
	}
}

func TestGetConfig_Concurrent(t *testing.T) {
	reset()
	t.Cleanup(reset)
	SetConfig(Default())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = GetConfig()
		}()
		go func() {
			defer wg.Done()
			SetConfig(Default())
		}()
	}
	wg.Wait()
}
