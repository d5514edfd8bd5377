package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config failed: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
pds:
  baseURL: http://pds.internal:8080
  timeoutSeconds: 5
log:
  level: debug
trace:
  enable: true
  endpoint: otel-collector:4318
devpds:
  listen: ":9000"
  jwtSecret: super-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.PDS.BaseURL != "http://pds.internal:8080" {
		t.Fatalf("unexpected baseURL: %s", cfg.PDS.BaseURL)
	}
	if cfg.PDS.Timeout() != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.PDS.Timeout())
	}
	if cfg.Log.Level != "debug" || !cfg.Trace.Enable || cfg.Trace.Endpoint != "otel-collector:4318" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.DevPDS.Listen != ":9000" || cfg.DevPDS.JWTSecret != "super-secret" {
		t.Fatalf("unexpected devpds config: %+v", cfg.DevPDS)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.PDS.BaseURL != "http://localhost:3000" {
		t.Fatalf("default baseURL not applied: %s", cfg.PDS.BaseURL)
	}
	if cfg.DevPDS.Listen != ":3000" || cfg.DevPDS.JWTSecret != "dev-secret" {
		t.Fatalf("devpds defaults not applied: %+v", cfg.DevPDS)
	}
	if cfg.PDS.Timeout() != 0 {
		t.Fatalf("unset timeout must read as zero, got %v", cfg.PDS.Timeout())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
