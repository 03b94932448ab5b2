package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
port: "9090"
jwtSecret: from-yaml
tokenTTL: 2h
database:
  host: db.internal
  name: legal
storage:
  backend: local
  localPath: /tmp/docs
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("expected env port override, got %q", cfg.Port)
	}
	if cfg.JWTSecret != "from-yaml" {
		t.Errorf("expected yaml secret, got %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("expected 2h token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected lib/pq driver, got %q", cfg.Database.Driver)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("expected default db port, got %d", cfg.Database.Port)
	}
	if cfg.Storage.LocalPath != "/tmp/docs" {
		t.Errorf("unexpected storage path %q", cfg.Storage.LocalPath)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Storage.Backend != "local" || cfg.Timezone != "UTC" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AuthRateLimitBurst != 10 {
		t.Fatalf("expected default burst 10, got %d", cfg.AuthRateLimitBurst)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"TOKEN_TTL", "24"},
		{"DB_PORT", "54x2"},
		{"MAX_UPLOAD_BYTES", "25MB"},
		{"AUTH_RATE_LIMIT_RPS", "fast"},
		{"AUTH_RATE_LIMIT_BURST", "1.5"},
		{"MINIO_USE_SSL", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv(tt.key, tt.value)
			_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			if err == nil {
				t.Fatalf("expected %s=%q to be rejected", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err, tt.key)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := Config{JWTSecret: "s", Database: DatabaseConfig{Driver: "pgx"}, Storage: StorageConfig{Backend: "local"}, Timezone: "UTC"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"missing secret in test env", func(c *Config) { c.JWTSecret = ""; c.Env = "test" }, false},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"sqlite without file", func(c *Config) { c.Database.Driver = "sqlite" }, true},
		{"sqlite with file", func(c *Config) { c.Database.Driver = "sqlite"; c.Database.URL = "legal.db" }, false},
		{"minio without endpoint", func(c *Config) { c.Storage.Backend = "minio" }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{URL: "postgres://u:p@h/db"}
	if d.DSN() != "postgres://u:p@h/db" {
		t.Errorf("expected url passthrough, got %q", d.DSN())
	}
	d = DatabaseConfig{Host: "h", User: "u", Password: "p", Name: "n", Port: 5433, SSLMode: "disable"}
	want := "host=h user=u password=p dbname=n port=5433 sslmode=disable TimeZone=UTC"
	if d.DSN() != want {
		t.Errorf("DSN() = %q, want %q", d.DSN(), want)
	}
}
