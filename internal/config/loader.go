package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvServer = "TERMPONG_SERVER"
	EnvRole   = "TERMPONG_ROLE"
	EnvDB     = "TERMPONG_DB"
)

// Load reads the client configuration.
// Search order: customPath -> ~/.termpong/config.yaml -> ./configs/termpong.yaml -> embedded default.
// Keys missing from a file keep their default values.
func Load(customPath string) (Config, error) {
	cfg := DefaultConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if next, ok := decodeFile(userCfgPath, cfg); ok {
			return next, nil
		}
	}

	// Try local configs directory
	if next, ok := decodeFile(filepath.Join("configs", "termpong.yaml"), cfg); ok {
		return next, nil
	}

	// Use embedded default YAML
	next := cfg
	if err := yaml.Unmarshal(defaultYAML, &next); err != nil {
		return cfg, nil // Fallback to hardcoded if embed fails
	}
	return next, nil
}

// decodeFile overlays the YAML at path onto base. A missing or unparsable
// file leaves base untouched.
func decodeFile(path string, base Config) (Config, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, false
	}
	next := base
	if err := yaml.Unmarshal(data, &next); err != nil {
		return base, false
	}
	return next, true
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from the TERMPONG_* variables returned by getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvServer)); v != "" {
		cfg.Server.URL = v
	}
	if v := strings.TrimSpace(getenv(EnvRole)); v != "" {
		cfg.Server.Role = v
	}
	if v := strings.TrimSpace(getenv(EnvDB)); v != "" {
		cfg.Storage.DBPath = v
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".termpong", filename)
}
