package config

import (
	"fmt"
	"sync"
)

var (
	// global holds the process-wide configuration and the file it came from.
	global struct {
		sync.RWMutex
		cfg  *Config
		path string
	}

	initOnce sync.Once
)

// Initialize loads configuration from path with environment variable
// overrides and stores it as the process-wide configuration. Only the first
// call has any effect.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}
		store(cfg, path)
	})

	return initErr
}

// GetConfig returns the process-wide configuration, or nil before a
// successful Initialize or SetConfig. It is safe for concurrent use.
//
// For testing, prefer passing explicit Config values around.
func GetConfig() *Config {
	global.RLock()
	defer global.RUnlock()
	return global.cfg
}

// Path returns the file the process-wide configuration was loaded from.
func Path() string {
	global.RLock()
	defer global.RUnlock()
	return global.path
}

// SetConfig replaces the process-wide configuration. It is meant for tests
// and for commands that build their configuration from flags.
func SetConfig(cfg *Config) {
	store(cfg, "")
}

// ReloadConfig loads path again and replaces the process-wide configuration.
// On failure the current configuration is kept.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	store(cfg, path)
	return nil
}

// MustGetConfig is like GetConfig but panics when no configuration is set.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}

func store(cfg *Config, path string) {
	global.Lock()
	defer global.Unlock()
	global.cfg = cfg
	global.path = path
}
