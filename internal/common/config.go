// Package common provides shared utilities for Stratview
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Stratview
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Logging     LoggingConfig  `toml:"logging"`
	Auth        AuthConfig     `toml:"auth"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// ChartRateLimit caps chart PNG renders per second (renders are the
	// expensive path). Zero disables the limiter.
	ChartRateLimit int `toml:"chart_rate_limit"`
}

// AnalysisConfig holds analysis view configuration.
type AnalysisConfig struct {
	// ValidatePayload enables strict validation of non-textual strategy
	// payloads. Off by default: a malformed non-textual payload passes
	// through to the shaper unguarded, matching the upstream screen.
	ValidatePayload bool `toml:"validate_payload"`

	// Currency is the marker prefixed to projected values ("$" by default).
	Currency string `toml:"currency"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AuthConfig holds bearer-token authentication configuration.
// When Required is false the API is open and tokens are ignored.
type AuthConfig struct {
	Required    bool   `toml:"required"`
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ChartRateLimit: 5,
		},
		Analysis: AnalysisConfig{
			ValidatePayload: false,
			Currency:        "$",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Auth: AuthConfig{
			Required:    false,
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateCurrency(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STRATVIEW_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STRATVIEW_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STRATVIEW_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STRATVIEW_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("STRATVIEW_VALIDATE_PAYLOAD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Analysis.ValidatePayload = b
		}
	}

	if c := os.Getenv("STRATVIEW_CURRENCY"); c != "" {
		config.Analysis.Currency = c
	}

	// Auth overrides
	if v := os.Getenv("STRATVIEW_AUTH_REQUIRED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Auth.Required = b
		}
	}
	if v := os.Getenv("STRATVIEW_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("STRATVIEW_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// validateCurrency ensures the currency marker is never empty.
func validateCurrency(config *Config) {
	if strings.TrimSpace(config.Analysis.Currency) == "" {
		config.Analysis.Currency = "$"
	}
}
