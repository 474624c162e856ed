// Package config loads the optional upackctl config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "UPACK_CONFIG"

// Config holds defaults that save repeating flags on every invocation.
// Command-line flags always win over config values.
type Config struct {
	// Service is the default service endpoint URL.
	Service string `toml:"service"`
	// Feed is the default feed name.
	Feed string `toml:"feed"`
	// Tokens maps service endpoint URLs to personal access tokens.
	Tokens map[string]string `toml:"tokens"`
}

// DefaultPath returns the conventional config location under the user
// config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, "upackctl", "config.toml"), nil
}

// Load reads the config file from the override location or the default
// path. A missing file is not an error; it yields a zero config.
func Load() (Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}
