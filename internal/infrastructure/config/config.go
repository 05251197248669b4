// Package config loads service configuration from the environment, with
// an optional TOML file for deployments that prefer file-based config.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Renderer  RendererConfig  `toml:"renderer"`
	Store     StoreConfig     `toml:"store"`
	Refresh   RefreshConfig   `toml:"refresh"`
	Logging   LogConfig       `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string `envconfig:"PORT" toml:"port" default:"8000"`
	Host    string `envconfig:"HOST" toml:"host" default:"0.0.0.0"`
	BaseURL string `envconfig:"BASE_URL" toml:"base_url" default:"http://localhost:8000"`
}

// RendererConfig holds page renderer configuration.
type RendererConfig struct {
	Timeout    time.Duration `envconfig:"RENDERER_TIMEOUT" toml:"timeout" default:"30s"`
	Retries    int           `envconfig:"RENDERER_RETRIES" toml:"retries" default:"2"`
	RetryDelay time.Duration `envconfig:"RENDERER_RETRY_DELAY" toml:"retry_delay" default:"2s"`
	UserAgent  string        `envconfig:"RENDERER_USER_AGENT" toml:"user_agent" default:"APIForge/1.0"`
}

// StoreConfig holds cache store configuration.
type StoreConfig struct {
	Path          string        `envconfig:"STORE_PATH" toml:"path" default:"data/cache.json"`
	ArtifactsDir  string        `envconfig:"STORE_ARTIFACTS_DIR" toml:"artifacts_dir" default:"data/artifacts"`
	TTL           time.Duration `envconfig:"STORE_TTL" toml:"ttl" default:"168h"`
	SweepInterval time.Duration `envconfig:"STORE_SWEEP_INTERVAL" toml:"sweep_interval" default:"1h"`
}

// RefreshConfig holds manual refresh gate configuration.
type RefreshConfig struct {
	Secret      string        `envconfig:"REFRESH_SECRET" toml:"secret" default:"dev-secret-change-me"`
	MinInterval time.Duration `envconfig:"REFRESH_MIN_INTERVAL" toml:"min_interval" default:"1h"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" toml:"level" default:"info"`
	Development bool   `envconfig:"LOG_DEV" toml:"development" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" toml:"requests_per_second" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" toml:"burst" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" toml:"enabled" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads configuration from a TOML file layered over defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8000",
			Host:    "0.0.0.0",
			BaseURL: "http://localhost:8000",
		},
		Renderer: RendererConfig{
			Timeout:    30 * time.Second,
			Retries:    2,
			RetryDelay: 2 * time.Second,
			UserAgent:  "APIForge/1.0",
		},
		Store: StoreConfig{
			Path:          "data/cache.json",
			ArtifactsDir:  "data/artifacts",
			TTL:           168 * time.Hour,
			SweepInterval: time.Hour,
		},
		Refresh: RefreshConfig{
			Secret:      "dev-secret-change-me",
			MinInterval: time.Hour,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
