// Package config provides configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"mua-risk/core/guardband"
	"mua-risk/internal/errors"
	"mua-risk/internal/logging"
)

// FileName is the name of the default configuration file in the home directory
const FileName = ".mua-risk.json"

// MaxPrecision bounds the decimal places of rendered figures
const MaxPrecision = 12

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Analysis contains computation defaults
	Analysis AnalysisConfig `json:"analysis"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Server contains HTTP API configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// AnalysisConfig contains defaults applied to analyses that do not set them
type AnalysisConfig struct {
	// UseStudentT selects k from the Student-t table instead of fixed k=2
	UseStudentT bool `json:"use_student_t"`

	// TargetConsumerRisk is the two-sided consumer risk used for guard bands
	TargetConsumerRisk float64 `json:"target_consumer_risk"`

	// Precision is the number of decimal places in rendered figures
	Precision int32 `json:"precision"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// NoColor disables coloured terminal output
	NoColor bool `json:"no_color"`

	// ShowComponents lists budget components in reports
	ShowComponents bool `json:"show_components"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			UseStudentT:        false,
			TargetConsumerRisk: guardband.DefaultConsumerRisk,
			Precision:          4,
		},
		Output: OutputConfig{
			DefaultFormat:  "cli",
			NoColor:        false,
			ShowComponents: true,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the configuration file in the user's home directory
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("cannot read config file", err).WithContext("path", path)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Config("invalid config file", err).WithContext("path", path)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that cannot be clamped silently
func (c *Config) Validate() error {
	if c.Analysis.Precision < 0 || c.Analysis.Precision > MaxPrecision {
		return errors.Config(fmt.Sprintf("analysis.precision must be between 0 and %d", MaxPrecision), nil).
			WithContext("precision", c.Analysis.Precision)
	}
	if c.Analysis.TargetConsumerRisk <= 0 || c.Analysis.TargetConsumerRisk > guardband.MaxConsumerRisk {
		return errors.Config("analysis.target_consumer_risk must be in (0, 0.5]", nil).
			WithContext("target_consumer_risk", c.Analysis.TargetConsumerRisk)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("cannot create config directory", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Internal("cannot encode config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Config("cannot write config file", err).WithContext("path", path)
	}
	return nil
}

var global atomic.Pointer[Config]

func init() {
	global.Store(Default())
}

// Get returns the global configuration
func Get() *Config {
	return global.Load()
}

// Set sets the global configuration; nil restores the defaults
func Set(config *Config) {
	if config == nil {
		config = Default()
	}
	global.Store(config)
}
