package marionette

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// MixConfig lists crossfade durations by animation name. In TOML:
//
//	default = 0.2
//
//	[[mix]]
//	from = "walk"
//	to = "run"
//	duration = 0.4
type MixConfig struct {
	Default float32    `toml:"default" yaml:"default"`
	Mixes   []MixEntry `toml:"mix" yaml:"mix"`
}

// MixEntry is one crossfade of a MixConfig.
type MixEntry struct {
	From     string  `toml:"from" yaml:"from"`
	To       string  `toml:"to" yaml:"to"`
	Duration float32 `toml:"duration" yaml:"duration"`
}

// ParseMixConfigTOML decodes a TOML mix configuration.
func ParseMixConfigTOML(data []byte) (*MixConfig, error) {
	var c MixConfig
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse mix config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("parse mix config: %w", err)
	}
	return &c, nil
}

// ParseMixConfigYAML decodes a YAML mix configuration.
func ParseMixConfigYAML(data []byte) (*MixConfig, error) {
	var c MixConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse mix config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("parse mix config: %w", err)
	}
	return &c, nil
}

// LoadMixConfig reads a mix configuration from path, choosing the decoder by
// extension: .toml, or .yaml / .yml.
func LoadMixConfig(path string) (*MixConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load mix config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ParseMixConfigTOML(data)
	case ".yaml", ".yml":
		return ParseMixConfigYAML(data)
	}
	return nil, fmt.Errorf("load mix config: unknown extension %q: %w", filepath.Ext(path), ErrInvalidArgument)
}

func (c *MixConfig) validate() error {
	if c.Default < 0 {
		return fmt.Errorf("default %g is negative: %w", c.Default, ErrInvalidArgument)
	}
	for i, m := range c.Mixes {
		if m.From == "" || m.To == "" {
			return fmt.Errorf("mix %d: from and to are required: %w", i, ErrInvalidArgument)
		}
		if m.Duration < 0 {
			return fmt.Errorf("mix %d (%s -> %s): duration %g is negative: %w", i, m.From, m.To, m.Duration, ErrInvalidArgument)
		}
	}
	return nil
}

// ApplyMixConfig sets the default mix and every listed pair. It stops at
// the first animation name missing from the skeleton data and returns an
// error wrapping ErrNotFound.
func (d *AnimationStateData) ApplyMixConfig(c *MixConfig) error {
	d.DefaultMix = c.Default
	for _, m := range c.Mixes {
		if err := d.SetMixByName(m.From, m.To, m.Duration); err != nil {
			return fmt.Errorf("apply mix config: %w", err)
		}
	}
	return nil
}
