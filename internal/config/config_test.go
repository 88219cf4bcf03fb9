package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dataset.File != "all_data.csv" {
		t.Errorf("Dataset.File = %q, want all_data.csv", cfg.Dataset.File)
	}
	if cfg.Dataset.InvalidRows != "abort" {
		t.Errorf("Dataset.InvalidRows = %q, want abort", cfg.Dataset.InvalidRows)
	}
	if cfg.Analytics.TopN != 5 {
		t.Errorf("Analytics.TopN = %d, want 5", cfg.Analytics.TopN)
	}
	if cfg.Address() != "localhost:8084" {
		t.Errorf("Address() = %q, want localhost:8084", cfg.Address())
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATASET_FILE", "orders.xlsx")
	t.Setenv("DATASET_INVALID_ROWS", "drop")
	t.Setenv("ANALYTICS_TOP_N", "10")
	t.Setenv("ANALYTICS_TIMEOUT", "2s")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dataset.File != "orders.xlsx" {
		t.Errorf("Dataset.File = %q", cfg.Dataset.File)
	}
	if cfg.Dataset.InvalidRows != "drop" {
		t.Errorf("Dataset.InvalidRows = %q", cfg.Dataset.InvalidRows)
	}
	if cfg.Analytics.TopN != 10 {
		t.Errorf("Analytics.TopN = %d", cfg.Analytics.TopN)
	}
	if cfg.Analytics.Timeout != 2*time.Second {
		t.Errorf("Analytics.Timeout = %v", cfg.Analytics.Timeout)
	}
	if len(cfg.Security.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"unknown row policy", "DATASET_INVALID_ROWS", "ignore"},
		{"non-positive top N", "ANALYTICS_TOP_N", "0"},
		{"negative rate limit", "SECURITY_RATE_LIMIT_RPS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_RowPolicyCaseInsensitive(t *testing.T) {
	for _, value := range []string{"DROP", " Drop ", "Abort"} {
		t.Run(value, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("DATASET_INVALID_ROWS", value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() with DATASET_INVALID_ROWS=%q error = %v", value, err)
			}
			if want := strings.ToLower(strings.TrimSpace(value)); cfg.Dataset.InvalidRows != want {
				t.Errorf("Dataset.InvalidRows = %q, want %q", cfg.Dataset.InvalidRows, want)
			}
		})
	}
}
