package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "DB_DRIVER", "DATABASE_DSN", "TAX_RATE", "BUSINESS_TIMEZONE", "ADMIN_EMAIL", "ADMIN_PASSWORD", "LOW_STOCK_CRON", "CORS_ORIGINS", "TOKEN_TTL", "SECRET"} {
		t.Setenv(key, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Database.Driver != "sqlite" || cfg.Business.TaxRate != 5 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "TAX_RATE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	path := filepath.Join(t.TempDir(), ".env")
	content := "HTTP_PORT=9090\nTAX_RATE=7.5\nCORS_ORIGINS=http://a.test, http://b.test\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Business.TaxRate != 7.5 || len(cfg.Server.CORSOrigins) != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Driver: "sqlite", DSN: "file:x.db"},
			Auth:     AuthConfig{Secret: "s", TokenTTL: 1},
			Business: BusinessConfig{TaxRate: 5, Timezone: "UTC"},
		}
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(*Config){
		"port":     func(c *Config) { c.Server.Port = "http" },
		"driver":   func(c *Config) { c.Database.Driver = "mysql" },
		"tax":      func(c *Config) { c.Business.TaxRate = 150 },
		"timezone": func(c *Config) { c.Business.Timezone = "Mars/Olympus" },
		"cron":     func(c *Config) { c.Scheduler.LowStockCron = "every day" },
		"admin":    func(c *Config) { c.Auth.AdminEmail = "a@b.c" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
