package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"personagen/internal/config"
	"personagen/internal/logging"
)

// Gemini generates text using Google's Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini-backed generator.
func NewGemini(apiKey, model string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Generate sends a prompt and returns the model's text response.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}
	return text, nil
}

func (g *Gemini) Enabled() bool { return true }

// FromConfig builds the collaborator described by the configuration. A
// disabled or misconfigured collaborator yields Disabled, never an error:
// the pipeline must run with or without one.
func FromConfig(cfg *config.Config) Generator {
	if !cfg.LLM.Enabled {
		return Disabled{}
	}
	gen, err := NewGemini(cfg.LLM.APIKey, cfg.LLM.Model, cfg.GetLLMTimeout())
	if err != nil {
		logging.LLMWarn("Collaborator disabled: %v", err)
		return Disabled{}
	}
	logging.LLM("Collaborator enabled: model=%s timeout=%s", cfg.LLM.Model, cfg.GetLLMTimeout())
	return gen
}
