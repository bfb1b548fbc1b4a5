package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const baseConfig = `app:
  name: "Opsboard"
  port: 8080
database:
  driver: "sqlite"
  filename: "data/opsboard.db"
dashboards:
  platforms:
    - key: "shopee-my"
      label: "Shopee MY"
      kind: "shopee"
      endpoints:
        Monday: "http://upstream/shopee-health/daily-metrics/?day=Monday"
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(baseConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Dashboards.Fetch.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", cfg.Dashboards.Fetch.Attempts)
	}
	if cfg.Dashboards.Fetch.Timeout != 15*time.Second {
		t.Fatalf("timeout = %v, want 15s", cfg.Dashboards.Fetch.Timeout)
	}
	if cfg.Dashboards.Fetch.Delay != 2*time.Second {
		t.Fatalf("delay = %v, want 2s", cfg.Dashboards.Fetch.Delay)
	}
	if cfg.Dashboards.Refresh.Policy != RefreshPolicyTodayOnly {
		t.Fatalf("refresh policy = %q, want %q", cfg.Dashboards.Refresh.Policy, RefreshPolicyTodayOnly)
	}
	if cfg.Storage.SignedURLTTL != 7*24*time.Hour {
		t.Fatalf("signed url ttl = %v, want 168h", cfg.Storage.SignedURLTTL)
	}
	if cfg.Stock.PageLimit != 100 {
		t.Fatalf("stock page limit = %d, want 100", cfg.Stock.PageLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsBadDashboards(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown policy",
			mutate:  func(c *Config) { c.Dashboards.Refresh.Policy = "sometimes" },
			wantErr: "unsupported refresh policy",
		},
		{
			name:    "bad cron",
			mutate:  func(c *Config) { c.Dashboards.Refresh.Cron = "every five minutes" },
			wantErr: "invalid refresh cron",
		},
		{
			name: "bad weekday",
			mutate: func(c *Config) {
				c.Dashboards.Platforms[0].Endpoints["Funday"] = "http://upstream"
			},
			wantErr: "not a weekday name",
		},
		{
			name:    "bad kind",
			mutate:  func(c *Config) { c.Dashboards.Platforms[0].Kind = "lazada" },
			wantErr: "unsupported kind",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Dashboards.Fetch.Attempts = -1 },
			wantErr: "at least 1",
		},
		{
			name:    "redis without address",
			mutate:  func(c *Config) { c.Auth.SessionStore = "redis" },
			wantErr: "redis address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(baseConfig))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadReadsSecretsFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(baseConfig), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("APP_SECRET_KEY", "secret")
	t.Setenv("CLERK_SECRET_KEY", "sk_test")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.SecretKey != "secret" {
		t.Fatalf("secret key = %q, want secret", cfg.App.SecretKey)
	}
	if cfg.Auth.ClerkSecretKey != "sk_test" {
		t.Fatalf("clerk secret = %q, want sk_test", cfg.Auth.ClerkSecretKey)
	}
}
