package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage.DataPath != "./data" {
		t.Errorf("expected Storage.DataPath './data', got %q", cfg.Storage.DataPath)
	}
	if cfg.Storage.FsyncPolicy != "interval" {
		t.Errorf("expected Storage.FsyncPolicy 'interval', got %q", cfg.Storage.FsyncPolicy)
	}
	if cfg.Engine.MemorySize != 10 {
		t.Errorf("expected Engine.MemorySize 10, got %d", cfg.Engine.MemorySize)
	}
	if cfg.Engine.ContextMessages != 3 {
		t.Errorf("expected Engine.ContextMessages 3, got %d", cfg.Engine.ContextMessages)
	}
	if cfg.Engine.ContextWeight != 0.3 {
		t.Errorf("expected Engine.ContextWeight 0.3, got %v", cfg.Engine.ContextWeight)
	}
	if cfg.Engine.RetentionDays != 30 {
		t.Errorf("expected Engine.RetentionDays 30, got %d", cfg.Engine.RetentionDays)
	}
	if cfg.Retrain.MinSamples != 10 || cfg.Retrain.TopKeywords != 30 || cfg.Retrain.MaxKeywords != 40 {
		t.Errorf("unexpected retrain defaults: %+v", cfg.Retrain)
	}
	if cfg.External.Enabled {
		t.Error("expected External.Enabled false by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

// ---------------------------------------------------------------------------
// File / env / CLI layering
// ---------------------------------------------------------------------------

func TestConfigFromFile_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emocore.yaml")
	yaml := `
storage:
  dataPath: /var/lib/emocore
engine:
  contextWeight: 0.25
retrain:
  interval: 6h
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ConfigFromFile(path)
	if err != nil {
		t.Fatalf("ConfigFromFile: %v", err)
	}
	if cfg.Storage.DataPath != "/var/lib/emocore" {
		t.Errorf("dataPath not applied: %q", cfg.Storage.DataPath)
	}
	if cfg.Engine.ContextWeight != 0.25 {
		t.Errorf("contextWeight not applied: %v", cfg.Engine.ContextWeight)
	}
	if cfg.Retrain.Interval != 6*time.Hour {
		t.Errorf("retrain.interval not applied: %v", cfg.Retrain.Interval)
	}
	if cfg.Engine.MemorySize != 10 {
		t.Errorf("absent field lost its default: %d", cfg.Engine.MemorySize)
	}
}

func TestConfigFromFile_Missing(t *testing.T) {
	if _, err := ConfigFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("EMOCORE_DATA_PATH", "/tmp/emo")
	t.Setenv("EMOCORE_CONTEXT_MESSAGES", "2")
	t.Setenv("EMOCORE_EXTERNAL_TIMEOUT", "750ms")
	t.Setenv("EMOCORE_METRICS_ENABLED", "false")
	t.Setenv("EMOCORE_MEMORY_SIZE", "not-a-number")
	t.Setenv("EMOCORE_MAX_TEXT_BYTES", "4096")

	cfg := ConfigFromEnv(nil)
	if cfg.Storage.DataPath != "/tmp/emo" {
		t.Errorf("EMOCORE_DATA_PATH not applied: %q", cfg.Storage.DataPath)
	}
	if cfg.Engine.ContextMessages != 2 {
		t.Errorf("EMOCORE_CONTEXT_MESSAGES not applied: %d", cfg.Engine.ContextMessages)
	}
	if cfg.External.Timeout != 750*time.Millisecond {
		t.Errorf("EMOCORE_EXTERNAL_TIMEOUT not applied: %v", cfg.External.Timeout)
	}
	if cfg.Metrics.Enabled {
		t.Error("EMOCORE_METRICS_ENABLED not applied")
	}
	if cfg.Engine.MaxTextBytes != 4096 {
		t.Errorf("EMOCORE_MAX_TEXT_BYTES not applied: %d", cfg.Engine.MaxTextBytes)
	}
	if cfg.Engine.MemorySize != 10 {
		t.Errorf("unparseable value should keep default, got %d", cfg.Engine.MemorySize)
	}
}

func TestApplyCLIOverrides_OnlyExplicit(t *testing.T) {
	cfg := DefaultConfig()
	dataPath := "/srv/emo"
	level := "debug"
	cfg.ApplyCLIOverrides(&CLIOverrides{DataPath: &dataPath, LogLevel: &level})

	if cfg.Storage.DataPath != dataPath {
		t.Errorf("DataPath override not applied")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("LogLevel override not applied")
	}
	if cfg.Log.Format != "console" {
		t.Errorf("unset override changed Log.Format to %q", cfg.Log.Format)
	}

	cfg.ApplyCLIOverrides(nil)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }, "storage.dataPath"},
		{"bad fsync policy", func(c *Config) { c.Storage.FsyncPolicy = "sometimes" }, "storage.fsyncPolicy"},
		{"interval without cadence", func(c *Config) { c.Storage.FsyncInterval = 0 }, "fsyncInterval"},
		{"context weight above one", func(c *Config) { c.Engine.ContextWeight = 1.5 }, "engine.contextWeight"},
		{"zero memory", func(c *Config) { c.Engine.MemorySize = 0 }, "engine.memorySize"},
		{"tiny text limit", func(c *Config) { c.Engine.MaxTextBytes = 16 }, "engine.maxTextBytes"},
		{"context larger than memory", func(c *Config) { c.Engine.ContextMessages = 12 }, "engine.contextMessages"},
		{"cap below top-k", func(c *Config) { c.Retrain.MaxKeywords = 10 }, "retrain.maxKeywords"},
		{"external without key", func(c *Config) { c.External.Enabled = true }, "external.apiKey"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad base url", func(c *Config) { c.External.BaseURL = "not a url" }, "external.baseURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_NormalizesCase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.FsyncPolicy = " ALWAYS "
	cfg.Log.Format = "JSON"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Storage.FsyncPolicy != "always" || cfg.Log.Format != "json" {
		t.Fatalf("expected normalized values, got %q / %q", cfg.Storage.FsyncPolicy, cfg.Log.Format)
	}
}
