package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearAIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("THETASK_AI_API_KEY", "")
}

func TestLoadDefaults(t *testing.T) {
	clearAIEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreKind != "sqlite" || cfg.StorePath != "thetask.db" {
		t.Fatalf("unexpected store defaults: %+v", cfg)
	}
	if cfg.DeadlinePollInterval != time.Minute || cfg.DeadlineThreshold != 30*time.Minute {
		t.Fatalf("unexpected deadline defaults: %+v", cfg)
	}
	if cfg.AIAPIKey != "" || cfg.AIModel != "gemini-3-flash-preview" {
		t.Fatalf("unexpected ai defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors defaults: %v", cfg.CORSOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearAIEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("THETASK_STORE_KIND", "json")
	t.Setenv("THETASK_DEADLINE_THRESHOLD", "45m")
	t.Setenv("THETASK_DEADLINE_BUFFER", "8")
	t.Setenv("THETASK_NOTIFY_DESKTOP", "true")
	t.Setenv("THETASK_HTTP_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreKind != "json" || cfg.StorePath != "thetask.json" {
		t.Fatalf("unexpected store config: %+v", cfg)
	}
	if cfg.DeadlineThreshold != 45*time.Minute || cfg.MonitorBuffer != 8 {
		t.Fatalf("unexpected deadline config: %+v", cfg)
	}
	if !cfg.DesktopNotifications {
		t.Fatal("expected desktop notifications from env")
	}
	if cfg.AIAPIKey != "secret" {
		t.Fatalf("expected api key from GEMINI_API_KEY, got %q", cfg.AIAPIKey)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	clearAIEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "thetask.yaml")
	body := "store:\n  kind: json\n  path: board.json\nlog:\n  level: debug\ndeadline:\n  interval: 10s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("THETASK_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorePath != "board.json" || cfg.DeadlinePollInterval != 10*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("env should override file, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearAIEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("THETASK_STORE_KIND", "postgres")
	if _, err := Load(""); err == nil {
		t.Fatal("expected unknown store kind error")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing explicit file error")
	}
}
