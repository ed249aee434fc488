// Package config provides configuration loading and management for pixelsnap.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"pixelsnap/pkg/gradient"
	"pixelsnap/pkg/resample"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many images are processed concurrently
		NumCores int `yaml:"numCores"`

		// Boundary is "sentinels" to count the image edges as grid lines,
		// or "interior" to use detected peaks only
		Boundary string `yaml:"boundary"`

		// Filter is the downsampling kernel: box, nearest or lanczos
		Filter string `yaml:"filter"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Format is the extension of files written into an output directory
		Format string `yaml:"format"`

		// SaveIntermediaryResults determines whether to save edge maps and grid overlays
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is where intermediary results are written
		IntermediaryDir string `yaml:"intermediaryDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.Boundary = gradient.IncludeSentinels.String()
	cfg.Processing.Filter = string(resample.FilterBox)

	// Set default output parameters
	cfg.Output.Format = ".png"
	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.Verbose = true

	return cfg
}

// BoundaryPolicy parses processing.boundary
func (c *Config) BoundaryPolicy() (gradient.BoundaryPolicy, error) {
	policy, err := gradient.ParseBoundaryPolicy(c.Processing.Boundary)
	if err != nil {
		return 0, fmt.Errorf("invalid processing.boundary: %w", err)
	}
	return policy, nil
}

// Kernel parses processing.filter
func (c *Config) Kernel() (resample.Filter, error) {
	kernel, err := resample.ParseFilter(c.Processing.Filter)
	if err != nil {
		return "", fmt.Errorf("invalid processing.filter: %w", err)
	}
	return kernel, nil
}

// Validate checks that every enumerated field holds a known value
func (c *Config) Validate() error {
	if _, err := c.BoundaryPolicy(); err != nil {
		return err
	}
	if _, err := c.Kernel(); err != nil {
		return err
	}

	format := c.Output.Format
	if !strings.HasPrefix(format, ".") {
		format = "." + format
	}
	if !resample.SupportedOutput(format) {
		return fmt.Errorf("invalid output.format %q", c.Output.Format)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
