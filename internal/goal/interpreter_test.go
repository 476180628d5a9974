package goal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personagen/internal/types"
)

// fakeGen returns a canned response or error.
type fakeGen struct {
	resp string
	err  error
}

func (f *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	return f.resp, f.err
}

func (f *fakeGen) Enabled() bool { return true }

func TestAnalyzeRules(t *testing.T) {
	in := New(nil)

	tests := []struct {
		name       string
		goal       string
		wantIntent types.Intent
		check      func(t *testing.T, a types.GoalAnalysis)
	}{
		{
			name:       "college tier-2 price",
			goal:       "Find audience segments for college students in tier-2 cities worried about price",
			wantIntent: types.IntentReach,
			check: func(t *testing.T, a types.GoalAnalysis) {
				assert.Equal(t, "gen_z", a.Demographics["age_group"])
				assert.Equal(t, "tier_2", a.Demographics["city_tier"])
				assert.InDelta(t, 0.55, a.MinPriceSensitivity, 1e-9)
				assert.Contains(t, a.CommercePatterns, "bargain_hunters")
			},
		},
		{
			name:       "premium conversion",
			goal:       "Drive sales of premium headphones to affluent millennials",
			wantIntent: types.IntentConversion,
			check: func(t *testing.T, a types.GoalAnalysis) {
				assert.Equal(t, "millennial", a.Demographics["age_group"])
				assert.Equal(t, "high_income", a.Demographics["income_level"])
				assert.Contains(t, a.CommercePatterns, "premium_buyers")
			},
		},
		{
			name:       "retention loyalty",
			goal:       "Improve retention among loyal repeat buyers",
			wantIntent: types.IntentRetention,
			check: func(t *testing.T, a types.GoalAnalysis) {
				assert.Contains(t, a.CommercePatterns, "frequent_shoppers")
			},
		},
		{
			name:       "engagement social",
			goal:       "Boost social engagement with fitness content",
			wantIntent: types.IntentEngagement,
			check: func(t *testing.T, a types.GoalAnalysis) {
				assert.Contains(t, a.BehavioralFocus, "health")
				assert.True(t, a.Psychographics["socially_conscious"])
			},
		},
		{
			name:       "privacy commuters",
			goal:       "Reach privacy-minded commuters",
			wantIntent: types.IntentReach,
			check: func(t *testing.T, a types.GoalAnalysis) {
				assert.Equal(t, 2, a.MinDeviceCount)
				assert.InDelta(t, 0.6, a.MinPrivacyPref, 1e-9)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := in.Analyze(context.Background(), tt.goal)
			assert.Equal(t, tt.wantIntent, a.Intent)
			tt.check(t, a)
		})
	}
}

func TestAnalyzeEmptyGoal(t *testing.T) {
	in := New(nil)
	a := in.Analyze(context.Background(), "")

	assert.Equal(t, types.IntentReach, a.Intent)
	assert.Equal(t, []string{"shopping"}, a.BehavioralFocus)
	assert.InDelta(t, 0.5, a.Confidence, 1e-9)
	assert.Empty(t, a.Demographics)
}

func TestConfidenceCapped(t *testing.T) {
	in := New(nil)
	a := in.Analyze(context.Background(),
		"reach young affluent tech-savvy shoppers who love travel and fitness")

	// demographics + multi-focus + psychographics: 0.5+0.2+0.2+0.1
	assert.InDelta(t, 1.0, a.Confidence, 1e-9)
}

func TestAnalyzeLLMPath(t *testing.T) {
	gen := &fakeGen{resp: "```json\n{\"demographics\":{\"age_group\":\"gen_z\"},\"behavioral_focus\":[\"technology\"],\"intent\":\"conversion\",\"confidence\":0.9}\n```"}
	in := New(gen)

	a := in.Analyze(context.Background(), "sell gadgets to young people worried about price")
	require.Equal(t, types.IntentConversion, a.Intent)
	assert.Equal(t, "gen_z", a.Demographics["age_group"])
	assert.InDelta(t, 0.9, a.Confidence, 1e-9)
	// Hints apply on the LLM path too.
	assert.InDelta(t, 0.55, a.MinPriceSensitivity, 1e-9)
}

func TestAnalyzeLLMFallsBackToRules(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGen
	}{
		{"generation error", &fakeGen{err: errors.New("timeout")}},
		{"invalid json", &fakeGen{resp: "sorry, I cannot help with that"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(tt.gen)
			a := in.Analyze(context.Background(), "drive sales to millennials")
			// Rules produce a usable analysis regardless of collaborator state.
			assert.Equal(t, types.IntentConversion, a.Intent)
			assert.Equal(t, "millennial", a.Demographics["age_group"])
		})
	}
}

func TestParseIntentUnknownDefaultsToReach(t *testing.T) {
	assert.Equal(t, types.IntentReach, types.ParseIntent("world domination"))
}
