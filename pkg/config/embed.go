package config

import (
	_ "embed"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// DefaultConfigContent returns the embedded default configuration, used by
// the CLI to show users a starting point for their override file.
func DefaultConfigContent() string {
	return string(defaultConfig)
}
