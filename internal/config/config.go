// Package config loads cadlint configuration files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sirkon/cadlint/internal/ctype"
	"github.com/sirkon/cadlint/internal/rules"
)

// Config is the analysis configuration.
type Config struct {
	// Traits describe the target the sources are compiled for.
	Traits    ctype.Traits `yaml:"traits"`
	Rules     Rules        `yaml:"rules"`
	Functions Functions    `yaml:"functions"`

	// Output is the name of the report format, text or json.
	Output string `yaml:"output"`
}

// Rules selects reported findings.
type Rules struct {
	Disabled []rules.Rule `yaml:"disabled"`
}

// Functions describes functions of the analyzed project.
type Functions struct {
	// NoReturn lists functions never returning to their callers on top of the C library
	// ones like exit and abort.
	NoReturn []string `yaml:"noreturn"`
}

// Default returns the configuration of an LP64 target with every rule enabled and text
// output.
func Default() Config {
	return Config{
		Traits: ctype.DefaultTraits(),
		Output: "text",
	}
}

// Load reads the configuration file. Values missing in the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks traits and the output format.
func (c Config) Validate() error {
	if err := c.Traits.Validate(); err != nil {
		return fmt.Errorf("validate traits: %w", err)
	}

	switch c.Output {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
}
