// Package config handles declgen.toml project configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the configuration file looked for in the working directory
// when no -config flag is given.
const DefaultFile = "declgen.toml"

// Config is a declgen.toml project configuration.
type Config struct {
	Parser ParserConfig `toml:"parser"`
	Output OutputConfig `toml:"output"`
}

// ParserConfig configures the front-end.
type ParserConfig struct {
	// Flags are passed to the parser verbatim, before any flags taken from
	// the environment.
	Flags []string `toml:"flags"`
}

// OutputConfig configures where the extern block is written.
type OutputConfig struct {
	Path string `toml:"path"`
}

// Load parses a declgen.toml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &c, nil
}
