package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/cricket-go/internal/infra/confloader"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "cli.yaml")
}

// Load layers defaults, the file at path, CRICKET_* variables and
// overrides. A missing file is not an error. Overrides are keyed by
// dotted path, e.g. "log.level".
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	cfg, _, err := load(path, overrides)
	return cfg, err
}

// Check loads like Load and additionally reports keys it does not know.
func Check(path string) (*CLIConfig, []string, error) {
	cfg, l, err := load(path, nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, l.UnknownKeys(Keys), nil
}

func load(path string, overrides map[string]any) (*CLIConfig, *confloader.Loader, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	l := confloader.NewLoader(
		confloader.WithDefaults(defaultValues()),
		confloader.WithConfigFile(path, false),
		confloader.WithOverrides(overrides),
	)
	cfg := &CLIConfig{}
	if err := l.Load(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, l, nil
}

// Save writes cfg as YAML with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Marshal renders cfg as YAML.
func Marshal(cfg *CLIConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
