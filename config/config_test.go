package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Hub.BufferSize != 1024 {
		t.Fatalf("expected default buffer size 1024, got %d", cfg.Hub.BufferSize)
	}
	if cfg.Hub.MaxBatchEvents != 256 {
		t.Fatalf("expected default max batch 256, got %d", cfg.Hub.MaxBatchEvents)
	}
	if cfg.Server.Port != 9180 {
		t.Fatalf("expected default port 9180, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Development {
		t.Fatalf("expected production logging by default")
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
hub:
  buffer_size: 64
  max_batch_events: 8
  max_batch_wait_ms: 50
  sink_timeout_seconds: 2
server:
  port: 9999
  request_timeout_seconds: 3
logging:
  development: true
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Hub.BufferSize != 64 || cfg.Hub.MaxBatchEvents != 8 {
		t.Fatalf("expected hub overrides to apply, got %+v", cfg.Hub)
	}
	if cfg.Server.Port != 9999 || cfg.Server.RequestTimeoutSec != 3 {
		t.Fatalf("expected server overrides to apply, got %+v", cfg.Server)
	}
	if !cfg.Logging.Development {
		t.Fatalf("expected development logging override")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: -1
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for negative port")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
