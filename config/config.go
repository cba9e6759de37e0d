package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no config flag is given.
const DefaultPath = "freq.yaml"

type ReaderConfig struct {
	BufferSize int `yaml:"buffer_size"`
	QueueDepth int `yaml:"queue_depth"`
}

type InputConfig struct {
	AutoDecompress *bool `yaml:"auto_decompress"`
}

type LimitsConfig struct {
	EnableRateLimit bool `yaml:"enable_rate_limit"`
	BytesPerSecond  int  `yaml:"bytes_per_second"`
	Burst           int  `yaml:"burst"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MonitoringConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "json" or "text"
}

type Config struct {
	Reader     ReaderConfig     `yaml:"reader"`
	Input      InputConfig      `yaml:"input"`
	Limits     LimitsConfig     `yaml:"limits"`
	History    HistoryConfig    `yaml:"history"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// Default returns a configuration with all defaults applied, used when
// no config file exists at the default location.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvironmentOverrides()

	// Apply defaults
	cfg.applyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvironmentOverrides overrides config values with environment variables if set
func (c *Config) applyEnvironmentOverrides() {
	if val := os.Getenv("FREQ_BUFFER_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			c.Reader.BufferSize = size
		}
	}
	if val := os.Getenv("FREQ_QUEUE_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			c.Reader.QueueDepth = depth
		}
	}
	if val := os.Getenv("FREQ_LOG_LEVEL"); val != "" {
		c.Monitoring.LogLevel = val
	}
	if val := os.Getenv("FREQ_LOG_FORMAT"); val != "" {
		c.Monitoring.LogFormat = val
	}
	if val := os.Getenv("FREQ_HISTORY_PATH"); val != "" {
		c.History.Path = val
		c.History.Enabled = true
	}
	if val := os.Getenv("FREQ_AUTO_DECOMPRESS"); val != "" {
		enabled := val == "true" || val == "1"
		c.Input.AutoDecompress = &enabled
	}
}

// applyDefaults sets default values for unset configuration fields
func (c *Config) applyDefaults() {
	// Reader defaults: 1 MiB blocks through a single-slot handoff.
	if c.Reader.BufferSize == 0 {
		c.Reader.BufferSize = 1 << 20
	}
	if c.Reader.QueueDepth == 0 {
		c.Reader.QueueDepth = 1
	}

	// Input defaults
	if c.Input.AutoDecompress == nil {
		enabled := true
		c.Input.AutoDecompress = &enabled
	}

	// Limits defaults
	if c.Limits.BytesPerSecond == 0 {
		c.Limits.BytesPerSecond = 64 << 20
	}
	if c.Limits.Burst == 0 {
		c.Limits.Burst = c.Reader.BufferSize
	}

	// History defaults
	if c.History.Path == "" {
		c.History.Path = "./freq-history.db"
	}

	// Monitoring defaults
	if c.Monitoring.LogLevel == "" {
		c.Monitoring.LogLevel = "info"
	}
	if c.Monitoring.LogFormat == "" {
		c.Monitoring.LogFormat = "text"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Reader.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be > 0, got %d", c.Reader.BufferSize)
	}
	if c.Reader.QueueDepth < 1 {
		return fmt.Errorf("queue_depth must be >= 1, got %d", c.Reader.QueueDepth)
	}

	if c.Limits.EnableRateLimit {
		if c.Limits.BytesPerSecond < 1 {
			return fmt.Errorf("bytes_per_second must be >= 1, got %d", c.Limits.BytesPerSecond)
		}
		if c.Limits.Burst < c.Reader.BufferSize {
			return fmt.Errorf("burst (%d) must be >= buffer_size (%d)",
				c.Limits.Burst, c.Reader.BufferSize)
		}
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history path cannot be empty when history is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLogLevels[strings.ToLower(c.Monitoring.LogLevel)] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, error, or fatal)",
			c.Monitoring.LogLevel)
	}

	if c.Monitoring.LogFormat != "json" && c.Monitoring.LogFormat != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", c.Monitoring.LogFormat)
	}

	return nil
}
