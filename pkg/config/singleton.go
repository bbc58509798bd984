package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// current holds the process-wide configuration.
	current atomic.Pointer[Config]

	// initOnce ensures Initialize loads the configuration only once.
	initOnce sync.Once
)

// Initialize loads configuration from path with environment variable
// overrides and installs it as the process-wide configuration. Only the
// first call loads; later calls return nil without reading path.
func Initialize(path string) error {
	var initErr error
	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}
		current.Store(cfg)
	})
	return initErr
}

// GetConfig returns the process-wide configuration, or nil before a
// successful Initialize or SetConfig.
//
// Prefer passing a *Config explicitly; the global exists for the command
// line entry points.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig installs cfg as the process-wide configuration. It is meant
// for tests and for commands that build their configuration from flags.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path again and replaces the process-wide
// configuration. On error the current configuration is kept.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return nil
}

// MustGetConfig returns the process-wide configuration and panics when it
// has not been initialized.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}

// reset clears the process-wide configuration. Tests only.
func reset() {
	current.Store(nil)
	initOnce = sync.Once{}
}
