package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set only required env var
	os.Setenv("CATALOG_FEED_URL", "https://shop.example.kz/products.csv")
	defer os.Unsetenv("CATALOG_FEED_URL")

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
	if cfg.Catalog.Delimiter != "," {
		t.Errorf("Catalog.Delimiter = %q, want %q", cfg.Catalog.Delimiter, ",")
	}
	if cfg.Catalog.FetchTimeout != 10*time.Second {
		t.Errorf("Catalog.FetchTimeout = %v, want %v", cfg.Catalog.FetchTimeout, 10*time.Second)
	}
	if cfg.Order.ServiceBase != "https://wa.me" {
		t.Errorf("Order.ServiceBase = %q, want %q", cfg.Order.ServiceBase, "https://wa.me")
	}
	if cfg.Rate.RequestsPerMinute != 120 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 120)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	os.Setenv("CATALOG_FEED_URL", "https://shop.example.kz/products.csv")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("CATALOG_DELIMITER", ";")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("CATALOG_FEED_URL")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("CATALOG_DELIMITER")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Catalog.Delimiter != ";" {
		t.Errorf("Catalog.Delimiter = %q, want %q", cfg.Catalog.Delimiter, ";")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	// Test that DB_URL works as fallback
	os.Setenv("CATALOG_FEED_URL", "https://shop.example.kz/products.csv")
	os.Setenv("DB_URL", "postgres://localhost/alttest")
	defer func() {
		os.Unsetenv("CATALOG_FEED_URL")
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
	os.Unsetenv("CATALOG_FEED_URL")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing CATALOG_FEED_URL, got nil")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "SERVER_PORT", "99999"},
		{"relative feed url", "CATALOG_FEED_URL", "products.csv"},
		{"multi-char delimiter", "CATALOG_DELIMITER", ",,"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad duration", "CATALOG_FETCH_TIMEOUT", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("CATALOG_FEED_URL", "https://shop.example.kz/products.csv")
			os.Setenv(tt.key, tt.value)
			defer func() {
				os.Unsetenv("CATALOG_FEED_URL")
				os.Unsetenv(tt.key)
			}()

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected error, got nil", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_AuthRequiresKeys(t *testing.T) {
	os.Setenv("CATALOG_FEED_URL", "https://shop.example.kz/products.csv")
	os.Setenv("REQUIRE_API_KEY", "true")
	defer func() {
		os.Unsetenv("CATALOG_FEED_URL")
		os.Unsetenv("REQUIRE_API_KEY")
	}()

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error when REQUIRE_API_KEY is set without API_KEYS")
	}
}

func TestServerConfig_Addr(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8081}
	if got := c.Addr(); got != "127.0.0.1:8081" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8081")
	}

	c.Host = ""
	if got := c.Addr(); got != ":8081" {
		t.Errorf("Addr() = %q, want %q", got, ":8081")
	}
}
