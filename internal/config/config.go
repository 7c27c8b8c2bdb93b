// Package config provides centralized configuration management for the
// import service. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Addr returns the host:port address to listen on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UpstreamConfig holds settings for the external bulk-create endpoint.
type UpstreamConfig struct {
	// BulkCreateURL is the bulk customer creation endpoint (required)
	BulkCreateURL string `env:"UPSTREAM_BULK_CREATE_URL" required:"true"`

	// Timeout is the per-request timeout for submissions (default: 30s)
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" default:"30s"`

	// MaxRetries is the number of retries on retryable failures (default: 3)
	MaxRetries int `env:"UPSTREAM_MAX_RETRIES" default:"3"`

	// Backoff is the initial retry backoff, doubled per attempt (default: 500ms)
	Backoff time.Duration `env:"UPSTREAM_BACKOFF" default:"500ms"`

	// BackoffMax caps the retry backoff (default: 10s)
	BackoffMax time.Duration `env:"UPSTREAM_BACKOFF_MAX" default:"10s"`

	// BasicUser and BasicPass enable basic auth on submissions when both are set
	BasicUser string `env:"UPSTREAM_BASIC_USER"`
	BasicPass string `env:"UPSTREAM_BASIC_PASS"`
}

// DatabaseConfig holds import-history database settings.
// The database is optional: with no URL configured, history recording is
// disabled and the pipeline runs stateless.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`
}

// ImportConfig holds import pipeline settings.
type ImportConfig struct {
	// MaxFileSize is the maximum accepted upload size in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// PreviewRows caps the number of parsed records echoed back by the
	// preview endpoint (default: 50)
	PreviewRows int `env:"IMPORT_PREVIEW_ROWS" default:"50"`

	// HistoryLimit is the default page size for import history (default: 50)
	HistoryLimit int `env:"IMPORT_HISTORY_LIMIT" default:"50"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled toggles rate limiting (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP request budget (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds API authentication settings.
type SecurityConfig struct {
	// RequireAPIKey toggles X-API-Key validation (default: false)
	RequireAPIKey bool `env:"SECURITY_REQUIRE_API_KEY" default:"false"`

	// APIKeys is the comma-separated list of accepted keys
	APIKeys []string `env:"SECURITY_API_KEYS"`

	// TrustedProxies is the comma-separated list of CIDRs allowed to set
	// X-Real-IP / X-Forwarded-For
	TrustedProxies []string `env:"SECURITY_TRUSTED_PROXIES"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log output format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Upstream.BulkCreateURL == "" {
		errs = append(errs, "UPSTREAM_BULK_CREATE_URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, "UPSTREAM_TIMEOUT must be positive")
	}
	if c.Upstream.MaxRetries < 0 {
		errs = append(errs, "UPSTREAM_MAX_RETRIES must be non-negative")
	}
	if c.Upstream.Backoff <= 0 || c.Upstream.BackoffMax < c.Upstream.Backoff {
		errs = append(errs, "UPSTREAM_BACKOFF must be positive and <= UPSTREAM_BACKOFF_MAX")
	}

	if c.Database.URL != "" {
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 || c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Import.MaxFileSize <= 0 {
		errs = append(errs, "IMPORT_MAX_FILE_SIZE must be positive")
	}
	if c.Import.PreviewRows <= 0 {
		errs = append(errs, "IMPORT_PREVIEW_ROWS must be positive")
	}

	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "SECURITY_API_KEYS must be set when SECURITY_REQUIRE_API_KEY is enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be text or json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
