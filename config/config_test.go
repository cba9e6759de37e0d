package config

import (
	"os"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "freq-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `
reader:
  buffer_size: 65536
  queue_depth: 4
input:
  auto_decompress: false
limits:
  enable_rate_limit: true
  bytes_per_second: 1048576
  burst: 65536
history:
  enabled: true
  path: "./runs.db"
monitoring:
  log_level: debug
  log_format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Reader.BufferSize != 65536 {
		t.Errorf("Expected buffer_size 65536, got %d", cfg.Reader.BufferSize)
	}
	if cfg.Reader.QueueDepth != 4 {
		t.Errorf("Expected queue_depth 4, got %d", cfg.Reader.QueueDepth)
	}
	if cfg.Input.AutoDecompress == nil || *cfg.Input.AutoDecompress {
		t.Error("Expected auto_decompress to be disabled")
	}
	if !cfg.Limits.EnableRateLimit {
		t.Error("Expected rate limiting to be enabled")
	}
	if !cfg.History.Enabled || cfg.History.Path != "./runs.db" {
		t.Errorf("Unexpected history config: %+v", cfg.History)
	}
	if cfg.Monitoring.LogLevel != "debug" || cfg.Monitoring.LogFormat != "json" {
		t.Errorf("Unexpected monitoring config: %+v", cfg.Monitoring)
	}
}

func TestConfigDefaults(t *testing.T) {
	path := writeTempConfig(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Reader.BufferSize != 1<<20 {
		t.Errorf("Expected default buffer_size 1MiB, got %d", cfg.Reader.BufferSize)
	}
	if cfg.Reader.QueueDepth != 1 {
		t.Errorf("Expected default queue_depth 1, got %d", cfg.Reader.QueueDepth)
	}
	if cfg.Input.AutoDecompress == nil || !*cfg.Input.AutoDecompress {
		t.Error("Expected auto_decompress on by default")
	}
	if cfg.History.Enabled {
		t.Error("Expected history off by default")
	}
	if cfg.History.Path != "./freq-history.db" {
		t.Errorf("Expected default history path, got %q", cfg.History.Path)
	}
	if cfg.Monitoring.LogLevel != "info" {
		t.Errorf("Expected default log_level 'info', got '%s'", cfg.Monitoring.LogLevel)
	}
	if cfg.Monitoring.LogFormat != "text" {
		t.Errorf("Expected default log_format 'text', got '%s'", cfg.Monitoring.LogFormat)
	}
}

func TestDefaultMatchesEmptyFile(t *testing.T) {
	path := writeTempConfig(t, "{}\n")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	def := Default()
	if def.Reader != loaded.Reader || def.Monitoring != loaded.Monitoring {
		t.Errorf("Default() diverges from an empty config file: %+v vs %+v", def, loaded)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeTempConfig(t, `
reader:
  buffer_size: 4096
`)

	os.Setenv("FREQ_BUFFER_SIZE", "8192")
	os.Setenv("FREQ_LOG_LEVEL", "debug")
	os.Setenv("FREQ_HISTORY_PATH", "/custom/runs.db")
	defer func() {
		os.Unsetenv("FREQ_BUFFER_SIZE")
		os.Unsetenv("FREQ_LOG_LEVEL")
		os.Unsetenv("FREQ_HISTORY_PATH")
	}()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Reader.BufferSize != 8192 {
		t.Errorf("Expected buffer_size 8192, got %d", cfg.Reader.BufferSize)
	}
	if cfg.Monitoring.LogLevel != "debug" {
		t.Errorf("Expected log_level 'debug', got '%s'", cfg.Monitoring.LogLevel)
	}
	if !cfg.History.Enabled || cfg.History.Path != "/custom/runs.db" {
		t.Errorf("Expected history enabled at /custom/runs.db, got %+v", cfg.History)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		config      string
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			config:      "{}\n",
			expectError: false,
		},
		{
			name: "negative buffer size",
			config: `
reader:
  buffer_size: -1
`,
			expectError: true,
			errorMsg:    "buffer_size must be > 0",
		},
		{
			name: "negative queue depth",
			config: `
reader:
  queue_depth: -2
`,
			expectError: true,
			errorMsg:    "queue_depth must be >= 1",
		},
		{
			name: "burst below buffer size",
			config: `
reader:
  buffer_size: 1048576
limits:
  enable_rate_limit: true
  bytes_per_second: 1024
  burst: 512
`,
			expectError: true,
			errorMsg:    "burst",
		},
		{
			name: "invalid log level",
			config: `
monitoring:
  log_level: loud
`,
			expectError: true,
			errorMsg:    "invalid log_level",
		},
		{
			name: "invalid log format",
			config: `
monitoring:
  log_format: xml
`,
			expectError: true,
			errorMsg:    "invalid log_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.config)
			_, err := Load(path)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}
