package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "8081" && os.Getenv("PORT") == "" {
		t.Errorf("port: got %q, want 8081", cfg.App.Port)
	}
	if cfg.Session.TTL != 12*time.Hour {
		t.Errorf("session ttl: got %v, want 12h", cfg.Session.TTL)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
app:
  port: "9090"
database:
  url: postgres://file/db
auth:
  jwt_secret: file-secret-long-enough
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "")
	t.Setenv("NGANTRI_DATABASE__URL", "postgres://env/db")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "9090" {
		t.Errorf("port: got %q, want 9090", cfg.App.Port)
	}
	if cfg.Database.URL != "postgres://env/db" {
		t.Errorf("database url: got %q, want env override", cfg.Database.URL)
	}
	if cfg.Auth.JWTSecret != "file-secret-long-enough" {
		t.Errorf("jwt secret: got %q", cfg.Auth.JWTSecret)
	}
	// untouched keys keep defaults
	if cfg.Redis.IdempotencyTTL != 24*time.Hour {
		t.Errorf("idempotency ttl: got %v, want 24h", cfg.Redis.IdempotencyTTL)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short jwt secret")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate_BadTimezone(t *testing.T) {
	cfg := config.Default()
	cfg.App.Timezone = "Mars/Olympus_Mons"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestLocation(t *testing.T) {
	cfg := config.Default()
	if got := cfg.Location().String(); got != "Asia/Jakarta" {
		t.Errorf("location: got %q, want Asia/Jakarta", got)
	}
}
