package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./marquee.db" {
			t.Errorf("expected database path ./marquee.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.API.BaseURL != "http://127.0.0.1:8080/api/" {
			t.Errorf("expected base URL http://127.0.0.1:8080/api/, got %s", config.API.BaseURL)
		}

		if config.Paging.PageSize != 10 {
			t.Errorf("expected page size 10, got %d", config.Paging.PageSize)
		}

		if config.API.Timeout() != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", config.API.Timeout())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://movies.example.com/v2/"
token = "secret"
requests_per_second = 2.5

[paging]
page_size = 25

[server]
host = "0.0.0.0"
port = 9090
latency_ms = 150

[database]
path = "/custom/path.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://movies.example.com/v2/" || config.API.Token != "secret" {
			t.Errorf("unexpected api config %+v", config.API)
		}

		if config.API.RequestsPerSecond != 2.5 {
			t.Errorf("expected 2.5 requests per second, got %v", config.API.RequestsPerSecond)
		}

		if config.Paging.PageSize != 25 {
			t.Errorf("expected page size 25, got %d", config.Paging.PageSize)
		}

		if config.Server.Addr() != "0.0.0.0:9090" {
			t.Errorf("expected addr 0.0.0.0:9090, got %s", config.Server.Addr())
		}

		if config.Server.Latency() != 150*time.Millisecond {
			t.Errorf("expected 150ms latency, got %v", config.Server.Latency())
		}

		if config.API.TimeoutSeconds != 10 {
			t.Errorf("expected omitted timeout to keep default 10, got %d", config.API.TimeoutSeconds)
		}

		if config.Database.MaxOpenConns != 10 {
			t.Errorf("expected omitted max_open_conns to keep default, got %d", config.Database.MaxOpenConns)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "relative base url", mutate: func(c *Config) { c.API.BaseURL = "/api/" }},
			{name: "unsupported scheme", mutate: func(c *Config) { c.API.BaseURL = "ftp://example.com/" }},
			{name: "zero page size", mutate: func(c *Config) { c.Paging.PageSize = 0 }},
			{name: "zero timeout", mutate: func(c *Config) { c.API.TimeoutSeconds = 0 }},
			{name: "negative rate", mutate: func(c *Config) { c.API.RequestsPerSecond = -1 }},
			{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }},
			{name: "negative latency", mutate: func(c *Config) { c.Server.LatencyMS = -5 }},
			{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "loud" }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
