package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Fatalf("expected gemini default, got %s", cfg.Provider)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("expected default redis addr, got %s", cfg.RedisAddr)
	}
	if cfg.UploadDir != "./uploads" {
		t.Fatalf("expected default upload dir, got %s", cfg.UploadDir)
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadConfigProviderNone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_PROVIDER", "none")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("provider none should be accepted: %v", err)
	}
	if cfg.Provider != "none" {
		t.Fatalf("got %s", cfg.Provider)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AI_PROVIDER", "oracle")

	_, err := LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "unsupported AI provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestPostgresDSN(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_DB", "interviews")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	dsn := cfg.PostgresDSN()
	if !strings.Contains(dsn, "host=db.internal") || !strings.Contains(dsn, "dbname=interviews") {
		t.Fatalf("unexpected dsn: %s", dsn)
	}
}

func TestSQLitePathSwitch(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SQLITE_PATH", "/tmp/records.db")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.SQLitePath != "/tmp/records.db" {
		t.Fatalf("got %s", cfg.SQLitePath)
	}
}
