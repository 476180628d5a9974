package llm

import (
	"context"
	"errors"
)

// =============================================================================
// TEXT-GENERATION COLLABORATOR
// =============================================================================
// Every pipeline stage that consults the collaborator carries a deterministic
// fallback. Callers treat any error, including ErrUnavailable, as a signal to
// fall back silently; collaborator failures never fail a run.

// ErrUnavailable is returned when no collaborator is configured.
var ErrUnavailable = errors.New("llm: collaborator unavailable")

// Generator produces free-form text for advisory prompts.
type Generator interface {
	// Generate sends a prompt and returns the raw model text.
	Generate(ctx context.Context, prompt string) (string, error)

	// Enabled reports whether calls can be expected to succeed. Stages use
	// it to skip prompt construction entirely.
	Enabled() bool
}

// Disabled is a Generator that always reports unavailable. It performs no
// network activity and is the default collaborator.
type Disabled struct{}

func (Disabled) Generate(ctx context.Context, prompt string) (string, error) {
	return "", ErrUnavailable
}

func (Disabled) Enabled() bool { return false }
