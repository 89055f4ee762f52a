package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jperezcano/sessiondx-go/internal/infra/confloader"
)

// DefaultConfigPath returns the default config file location,
// ~/.sessiondx/cli.yaml. It returns "" when the home directory cannot be
// resolved; the CLI then runs on defaults and environment alone.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sessiondx", "cli.yaml")
}

// Load resolves the CLI configuration. An explicit path must exist; the
// default path is optional and silently skipped when absent.
func Load(path string) (*CLIConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if explicit {
				return nil, fmt.Errorf("config file %s: %w", path, err)
			}
			path = ""
		}
	}

	cfg := Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
