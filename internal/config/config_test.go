package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/carebook_test")
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("default port = %q, want 5000", cfg.Port)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("default pool sizing = %d/%d, want 20/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.JWTExpiry() != 24*time.Hour {
		t.Errorf("default token lifetime = %v, want 24h", cfg.JWTExpiry())
	}
	if cfg.JWTSecret == "" {
		t.Error("development mode should fall back to a dev secret")
	}
	if cfg.EmailConfigured() {
		t.Error("email should not be configured by default")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without DATABASE_URL")
	}
}

func TestValidateProductionSecret(t *testing.T) {
	cfg := &Config{Env: "production", JWTSecret: "", DBMaxConns: 20, DBMinConns: 5}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject production without JWT_SECRET")
	}

	cfg.JWTSecret = "dev-secret-do-not-use-in-production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject the development secret in production")
	}

	cfg.JWTSecret = "a-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestValidatePoolSizing(t *testing.T) {
	cfg := &Config{Env: "development", JWTSecret: "x", DBMaxConns: 2, DBMinConns: 5}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject max conns below min conns")
	}
}

func TestCORSOriginsSplit(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/carebook_test")
	t.Setenv("CORS_ORIGINS", "http://a.example.com,http://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins = %v, want 2 entries", cfg.CORSOrigins)
	}
}
