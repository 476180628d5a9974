package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != "personagen" {
		t.Errorf("Expected name 'personagen', got %s", cfg.Name)
	}
	if cfg.Pipeline.MinClusterPct != 0.03 {
		t.Errorf("Expected min_cluster_pct 0.03, got %v", cfg.Pipeline.MinClusterPct)
	}
	if cfg.Pipeline.SubsetCap != 2000 {
		t.Errorf("Expected subset_cap 2000, got %d", cfg.Pipeline.SubsetCap)
	}
	if cfg.Pipeline.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", cfg.Pipeline.Seed)
	}
	if cfg.LLM.Enabled {
		t.Error("Collaborator should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load should not fail on missing file: %v", err)
	}
	if cfg.Pipeline.MaxPersonas != 6 {
		t.Errorf("Expected max_personas 6, got %d", cfg.Pipeline.MaxPersonas)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Pipeline.KMin = 2
	cfg.Pipeline.KMax = 4
	cfg.Population.DatabasePath = "/data/users.db"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Pipeline.KMin != 2 || loaded.Pipeline.KMax != 4 {
		t.Errorf("K range not round-tripped: %d..%d", loaded.Pipeline.KMin, loaded.Pipeline.KMax)
	}
	if loaded.Population.DatabasePath != "/data/users.db" {
		t.Errorf("Database path not round-tripped: %s", loaded.Population.DatabasePath)
	}
}

func TestEnvOverrides(t *testing.T) {
	os.Setenv("GEMINI_API_KEY", "test-key-123")
	os.Setenv("PERSONAGEN_ENABLE_LLM", "1")
	os.Setenv("PERSONAGEN_DB", "/tmp/env.db")
	defer func() {
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("PERSONAGEN_ENABLE_LLM")
		os.Unsetenv("PERSONAGEN_DB")
	}()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "test-key-123" {
		t.Errorf("GEMINI_API_KEY not applied, got %q", cfg.LLM.APIKey)
	}
	if !cfg.LLM.Enabled {
		t.Error("PERSONAGEN_ENABLE_LLM not applied")
	}
	if cfg.Population.DatabasePath != "/tmp/env.db" {
		t.Errorf("PERSONAGEN_DB not applied, got %q", cfg.Population.DatabasePath)
	}
}

func TestGetLLMTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetLLMTimeout(); got != 20*time.Second {
		t.Errorf("Expected 20s default, got %v", got)
	}

	cfg.LLM.Timeout = "5s"
	if got := cfg.GetLLMTimeout(); got != 5*time.Second {
		t.Errorf("Expected 5s, got %v", got)
	}

	cfg.LLM.Timeout = "garbage"
	if got := cfg.GetLLMTimeout(); got != 20*time.Second {
		t.Errorf("Expected fallback 20s on bad value, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"explicit k range", func(c *Config) { c.Pipeline.KMin = 2; c.Pipeline.KMax = 5 }, false},
		{"k_min below 2", func(c *Config) { c.Pipeline.KMin = 1; c.Pipeline.KMax = 4 }, true},
		{"inverted k range", func(c *Config) { c.Pipeline.KMin = 5; c.Pipeline.KMax = 3 }, true},
		{"half-set k range", func(c *Config) { c.Pipeline.KMax = 4 }, true},
		{"negative min_cluster_pct", func(c *Config) { c.Pipeline.MinClusterPct = -0.1 }, true},
		{"min_cluster_pct too large", func(c *Config) { c.Pipeline.MinClusterPct = 1.0 }, true},
		{"zero max_personas", func(c *Config) { c.Pipeline.MaxPersonas = 0 }, true},
		{"zero min_subset", func(c *Config) { c.Pipeline.MinSubset = 0 }, true},
		{"cap below min_subset", func(c *Config) { c.Pipeline.SubsetCap = 50 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
