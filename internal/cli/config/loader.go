// Package config defines the CLI configuration structure.
package config

import (
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".synap", "cli.yaml")
}

// Load loads CLI configuration from file. A missing file is not an error;
// it yields the default configuration.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves CLI configuration to file, creating its parent directory if
// necessary. The file is written with owner-only permissions since
// connections may carry API keys.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Merge overlays env and flags onto cfg, in that order, returning a new
// CLIConfig. Recognized env keys are SYNAP_SERVER and SYNAP_OUTPUT;
// recognized flag keys are "server" and "output".
func Merge(cfg *CLIConfig, env map[string]string, flags map[string]string) *CLIConfig {
	merged := *cfg

	if v, ok := env["SYNAP_SERVER"]; ok && v != "" {
		merged.DefaultServer = v
	}
	if v, ok := env["SYNAP_OUTPUT"]; ok && v != "" {
		merged.DefaultOutput = v
	}
	if v, ok := flags["server"]; ok && v != "" {
		merged.DefaultServer = v
	}
	if v, ok := flags["output"]; ok && v != "" {
		merged.DefaultOutput = v
	}

	return &merged
}
