package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set only required env var
	os.Setenv("UPSTREAM_BULK_CREATE_URL", "http://localhost:9000/api/customers/bulk")
	defer os.Unsetenv("UPSTREAM_BULK_CREATE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Import.MaxFileSize != 10485760 {
		t.Errorf("Import.MaxFileSize = %d, want %d", cfg.Import.MaxFileSize, 10485760)
	}
	if cfg.Upstream.MaxRetries != 3 {
		t.Errorf("Upstream.MaxRetries = %d, want %d", cfg.Upstream.MaxRetries, 3)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	os.Setenv("UPSTREAM_BULK_CREATE_URL", "http://localhost:9000/api/customers/bulk")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("IMPORT_PREVIEW_ROWS", "10")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("UPSTREAM_BULK_CREATE_URL")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("IMPORT_PREVIEW_ROWS")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Import.PreviewRows != 10 {
		t.Errorf("Import.PreviewRows = %d, want %d", cfg.Import.PreviewRows, 10)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	// Test that DB_URL works as fallback for DATABASE_URL
	os.Setenv("UPSTREAM_BULK_CREATE_URL", "http://localhost:9000/api/customers/bulk")
	os.Setenv("DB_URL", "postgres://localhost/alttest")
	defer func() {
		os.Unsetenv("UPSTREAM_BULK_CREATE_URL")
		os.Unsetenv("DB_URL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "postgres://localhost/alttest")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("UPSTREAM_BULK_CREATE_URL")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing UPSTREAM_BULK_CREATE_URL")
	}
}

func TestLoad_Duration(t *testing.T) {
	os.Setenv("UPSTREAM_BULK_CREATE_URL", "http://localhost:9000/api/customers/bulk")
	os.Setenv("SERVER_READ_TIMEOUT", "45s")
	os.Setenv("UPSTREAM_BACKOFF", "250ms")
	defer func() {
		os.Unsetenv("UPSTREAM_BULK_CREATE_URL")
		os.Unsetenv("SERVER_READ_TIMEOUT")
		os.Unsetenv("UPSTREAM_BACKOFF")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Upstream.Backoff != 250*time.Millisecond {
		t.Errorf("Upstream.Backoff = %v, want %v", cfg.Upstream.Backoff, 250*time.Millisecond)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	os.Setenv("UPSTREAM_BULK_CREATE_URL", "http://localhost:9000/api/customers/bulk")
	os.Setenv("SECURITY_TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")
	defer func() {
		os.Unsetenv("UPSTREAM_BULK_CREATE_URL")
		os.Unsetenv("SECURITY_TRUSTED_PROXIES")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ShutdownTimeout: 30 * time.Second},
		Upstream: UpstreamConfig{
			BulkCreateURL: "http://localhost:9000/api/customers/bulk",
			Timeout:       30 * time.Second,
			MaxRetries:    3,
			Backoff:       500 * time.Millisecond,
			BackoffMax:    10 * time.Second,
		},
		Import:  ImportConfig{MaxFileSize: 1 << 20, PreviewRows: 50, HistoryLimit: 50},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 99999

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid port")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("error should mention SERVER_PORT: %v", err)
	}
}

func TestValidate_MaxConnsLessThanMinConns(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{URL: "postgres://localhost/test", MaxConns: 2, MinConns: 5}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for MaxConns < MinConns")
	}
	if !strings.Contains(err.Error(), "DB_MAX_CONNS") {
		t.Errorf("error should mention DB_MAX_CONNS: %v", err)
	}
}

func TestValidate_NoDatabaseIsAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil (database is optional)", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("error should mention LOG_LEVEL: %v", err)
	}
}

func TestValidate_APIKeyRequiredWithoutKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Security.RequireAPIKey = true

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error when API keys required but none configured")
	}
	if !strings.Contains(err.Error(), "SECURITY_API_KEYS") {
		t.Errorf("error should mention SECURITY_API_KEYS: %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 9090, "127.0.0.1:9090"},
		{"", 80, ":80"},
	}

	for _, tt := range tests {
		s := ServerConfig{Host: tt.host, Port: tt.port}
		if got := s.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}
