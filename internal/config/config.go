package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how analysis results are rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatDot  OutputFormat = "dot"
)

// Config holds all configuration for go-trace-deps
type Config struct {
	// CallDepth bounds how deep the analysis traces through calls.
	// Negative values disable the bound.
	CallDepth int `yaml:"call_depth" env:"GTD_CALL_DEPTH"`

	// KeepData stores full variables on reaching-definition edge labels
	// instead of duplicate counters.
	KeepData bool `yaml:"keep_data" env:"GTD_KEEP_DATA"`

	// Format selects the default output rendering.
	Format OutputFormat `yaml:"format" env:"GTD_FORMAT"`

	// Logging
	Verbose bool `yaml:"verbose" env:"GTD_VERBOSE"`
	LogJSON bool `yaml:"log_json" env:"GTD_LOG_JSON"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CallDepth: -1,
		KeepData:  false,
		Format:    FormatText,
		Verbose:   false,
		LogJSON:   false,
	}
}

// globalConfigFilePath returns the global config file path (~/.gtd/config.yaml)
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gtd/config.yaml"
	}
	return filepath.Join(home, ".gtd", "config.yaml")
}

// projectConfigFilePath returns the project-level config file path (./.gtd/config.yaml)
func projectConfigFilePath() string {
	return ".gtd/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.gtd/config.yaml)
// 3. Global config (~/.gtd/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalConfigPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", globalConfigPath, err)
		}
	}

	projectConfigPath := projectConfigFilePath()
	if data, err := os.ReadFile(projectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", projectConfigPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GTD_CALL_DEPTH"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.CallDepth = i
		}
	}
	if v := os.Getenv("GTD_KEEP_DATA"); v != "" {
		cfg.KeepData = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("GTD_FORMAT"); v != "" {
		cfg.Format = OutputFormat(v)
	}
	if v := os.Getenv("GTD_VERBOSE"); v != "" {
		cfg.Verbose = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("GTD_LOG_JSON"); v != "" {
		cfg.LogJSON = v == "true" || v == "1" || v == "yes"
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON, FormatDot:
		// Valid
	default:
		return fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'dot')", c.Format)
	}
	return nil
}

// DepthBound converts the CallDepth field into the optional bound the
// analysis expects: nil when unbounded.
func (c *Config) DepthBound() *int {
	if c.CallDepth < 0 {
		return nil
	}
	depth := c.CallDepth
	return &depth
}
