package llm

import (
	"context"
	"errors"
	"testing"

	"personagen/internal/config"
)

func TestDisabled(t *testing.T) {
	var gen Generator = Disabled{}

	if gen.Enabled() {
		t.Error("Disabled should report not enabled")
	}

	_, err := gen.Generate(context.Background(), "anything")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestFromConfigDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Enabled = false

	gen := FromConfig(cfg)
	if gen.Enabled() {
		t.Error("Expected disabled collaborator when config disables it")
	}
}

func TestFromConfigMissingKeyFallsBack(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Enabled = true
	cfg.LLM.APIKey = ""

	gen := FromConfig(cfg)
	if gen.Enabled() {
		t.Error("Expected fallback to Disabled when API key is missing")
	}
}
