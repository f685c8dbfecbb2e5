// Package config reads the process configuration.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Matches the server-side default for one percentile accumulator.
const DefaultMaxAccumulatorBytes = 100 * 1024 * 1024

// Config is the top-level configuration for the process.
type Config struct {
	// MaxAccumulatorBytes is the default memory ceiling for one
	// accumulator instance, consulted when the caller supplies none.
	MaxAccumulatorBytes int64 `yaml:"max_accumulator_bytes"`

	// AccurateMethodsEnabled gates the discrete and continuous methods.
	// When false only approximate is accepted.
	AccurateMethodsEnabled bool `yaml:"accurate_methods_enabled"`

	LogLevel string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		MaxAccumulatorBytes:    DefaultMaxAccumulatorBytes,
		AccurateMethodsEnabled: true,
		LogLevel:               "info",
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config YAML")
	}
	if cfg.MaxAccumulatorBytes <= 0 {
		return nil, errors.Errorf(
			"max_accumulator_bytes must be positive, found: %d",
			cfg.MaxAccumulatorBytes)
	}
	return cfg, nil
}
