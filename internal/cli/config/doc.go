// Package config provides CLI configuration for Synap.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: CLIConfig struct (~/.synap/cli.yaml)
//   - loader.go: Configuration loading and merging
//
// Configuration includes:
//
//   - Default server address
//   - Output format preference
//   - Saved connections and the current connection name
//
package config
