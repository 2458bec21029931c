// Package config provides configuration loading for ddsconv. Values come
// from a YAML file; command-line flags override them.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "ddsconv.yaml"

// Config represents the settings loaded from YAML.
type Config struct {
	// Compression parameters
	Compression struct {
		// Format is the block-compressed target: bc1, bc3, bc5, bc6h or bc7
		Format string `yaml:"format"`

		// Quality is the encoder level, ultrafast through veryslow
		Quality string `yaml:"quality"`

		// ForceRGB selects the opaque BC7 family
		ForceRGB bool `yaml:"forceRGB"`

		// Dither applies Floyd-Steinberg dithering for BC1 and BC3
		Dither bool `yaml:"dither"`
	} `yaml:"compression"`

	// Mipmap parameters
	Mipmaps struct {
		// Generate builds a mip chain before compression
		Generate bool `yaml:"generate"`

		// Levels is the chain length; 0 means down to 1x1
		Levels int `yaml:"levels"`
	} `yaml:"mipmaps"`

	// Color parameters
	Color struct {
		// SRGB treats the input as sRGB-encoded
		SRGB bool `yaml:"srgb"`
	} `yaml:"color"`

	// Processing parameters
	Processing struct {
		// Workers bounds concurrent slices (single file) or files (directory)
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Report is a JSON run report path; empty disables it
		Report string `yaml:"report"`

		// Verbose controls logging to stderr
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Compression.Format = "bc7"
	cfg.Compression.Quality = "ultrafast"
	cfg.Mipmaps.Levels = 0
	cfg.Processing.Workers = 1

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// CreateDefaultConfigFile writes the defaults to configPath.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
