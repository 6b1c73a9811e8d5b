package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/session.yaml
var defaultSessionYAML []byte

// SessionFile is the file name looked up in the configuration directories.
const SessionFile = "session.yaml"

// Load loads a session configuration.
// Search order: customPath -> ~/.paintmatch/session.yaml -> ./configs/session.yaml -> embedded default
//
// Fields missing from the file keep their DefaultSession values. A custom
// path that cannot be read or parsed is an error; the other locations are
// skipped when absent or invalid.
func Load(customPath string) (Session, error) {
	// Try custom path first
	if customPath != "" {
		cfg, err := loadFile(customPath)
		if err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath(SessionFile); userCfgPath != "" {
		if cfg, err := loadFile(userCfgPath); err == nil && cfg.Validate() == nil {
			return cfg, nil
		}
	}

	// Try local configs directory
	if cfg, err := loadFile(filepath.Join("configs", SessionFile)); err == nil && cfg.Validate() == nil {
		return cfg, nil
	}

	// Use embedded default YAML
	cfg, err := Parse(defaultSessionYAML)
	if err != nil {
		return DefaultSession(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes a session from YAML on top of DefaultSession.
func Parse(data []byte) (Session, error) {
	cfg := DefaultSession()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Marshal encodes a session as YAML.
func Marshal(s Session) ([]byte, error) {
	return yaml.Marshal(s)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".paintmatch", filename)
}
