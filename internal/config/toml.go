// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Generate GenerateConfig `toml:"generate"`
	Output   OutputConfig   `toml:"output"`
	Log      LogConfig      `toml:"log"`
}

// GenerateConfig maps sampling-related settings. The password policy itself
// is not configurable.
type GenerateConfig struct {
	Workers     *int  `toml:"workers"`
	MaxAttempts *int  `toml:"max-attempts"`
	Record      *bool `toml:"record"`
}

// OutputConfig maps presentation settings.
type OutputConfig struct {
	Color    *string `toml:"color"`
	Columns  *bool   `toml:"columns"`
	Banner   *bool   `toml:"banner"`
	Progress *bool   `toml:"progress"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
