package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Macropayment != 10 {
		t.Fatalf("Macropayment = %d, want 10", cfg.Macropayment)
	}
	if cfg.API.Enabled {
		t.Fatal("API should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mr01bank.toml")
	body := `
Macropayment = 25
DataDir = "/var/lib/mr01bank"

[API]
Enabled = true
Addr = "0.0.0.0:9090"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Macropayment != 25 {
		t.Fatalf("Macropayment = %d, want 25", cfg.Macropayment)
	}
	if cfg.DataDir != "/var/lib/mr01bank" {
		t.Fatalf("DataDir = %q", cfg.DataDir)
	}
	if !cfg.API.Enabled || cfg.API.Addr != "0.0.0.0:9090" {
		t.Fatalf("API = %+v", cfg.API)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateRejectsZeroMacropayment(t *testing.T) {
	cfg := Default()
	cfg.Macropayment = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero macropayment")
	}
}

func TestValidateRejectsEnabledAPIWithoutAddr(t *testing.T) {
	cfg := Default()
	cfg.API.Enabled = true
	cfg.API.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled API without an address")
	}
}
