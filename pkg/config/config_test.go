package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromStringYAML(t *testing.T) {
	cfg, err := LoadFromString(`
entry: start
max_call_depth: 64
allow_network: false
server:
  address: "127.0.0.1:9000"
`, "yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Entry != "start" || cfg.MaxCallDepth != 64 || cfg.AllowNetwork {
		t.Fatalf("unexpected runtime settings %+v", cfg)
	}
	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Fatalf("unexpected address %s", cfg.Server.Address)
	}
	if cfg.Server.CacheSize != Default().Server.CacheSize {
		t.Fatalf("missing keys must keep defaults, got cache size %d", cfg.Server.CacheSize)
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spl.json")
	if err := os.WriteFile(path, []byte(`{"entry": "run", "log_execution": true}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rt := cfg.RuntimeConfig()
	if rt.Entry != "run" || !rt.LogExecution || !rt.AllowNetwork || rt.MaxCallDepth != Default().MaxCallDepth {
		t.Fatalf("unexpected runtime config %+v", rt)
	}

	if _, err := Load(filepath.Join(dir, "spl.toml")); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected read error for a missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"empty entry", `{"entry": ""}`, "entry function must be set"},
		{"builtin entry", `{"entry": "print"}`, "is a built-in"},
		{"depth", `{"max_call_depth": 0}`, "max_call_depth"},
		{"body size", `{"server": {"max_body_bytes": -1}}`, "max_body_bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromString(tt.content, "json")
			if err == nil || !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("expected error containing %q, got %v", tt.message, err)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}
