package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personagen/internal/types"
)

func samplePersonas() ([]types.Persona, map[int]*types.ClusterStats) {
	personas := []types.Persona{
		{ID: "dyn_0", ClusterID: 0, Label: "High-Value Shoppers • Tier-1 • Price-Insensitive", SizePct: 45},
		{ID: "dyn_1", ClusterID: 1, Label: "Young Audience • Tier-2 • Price-Conscious", SizePct: 30},
	}
	stats := map[int]*types.ClusterStats{
		0: {ClusterID: 0, SizePct: 45, AvgSpendingPower: 0.8, AvgDigitalEngagement: 0.3},
		1: {ClusterID: 1, SizePct: 30, AvgSpendingPower: 0.3, AvgDigitalEngagement: 0.85},
	}
	return personas, stats
}

func TestGeneratePerIntent(t *testing.T) {
	g := New(nil)
	personas, stats := samplePersonas()

	tests := []struct {
		intent        types.Intent
		wantObjective string
		wantTimeline  string
	}{
		{types.IntentReach, "Maximize audience reach and brand visibility", "6-10 weeks (medium-term)"},
		{types.IntentEngagement, "Increase audience engagement and interaction", "4-8 weeks (medium-term)"},
		{types.IntentConversion, "Drive conversions and sales", "2-4 weeks (short-term)"},
		{types.IntentRetention, "Build customer loyalty and retention", "8-12 weeks (long-term)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			strategies := g.Generate(context.Background(), personas, stats, tt.intent)
			require.Len(t, strategies, 2)

			for i, s := range strategies {
				assert.Equal(t, personas[i].ClusterID, s.ClusterID)
				assert.Equal(t, personas[i].Label, s.AudienceLabel)
				assert.Equal(t, tt.wantObjective, s.Objective)
				assert.Equal(t, tt.wantTimeline, s.Timeline)
				assert.Len(t, s.Tactics, 5)
				assert.NotEmpty(t, s.Metrics)
				assert.Empty(t, s.LLMSuggestions)
			}
		})
	}
}

func TestBudgetTier(t *testing.T) {
	assert.Equal(t, "High Budget (100K-500K)", budgetTier(0.8, 25))
	assert.Equal(t, "Medium Budget (50K-100K)", budgetTier(0.6, 18))
	assert.Equal(t, "Low Budget (10K-50K)", budgetTier(0.6, 10))
	assert.Equal(t, "Low Budget (10K-50K)", budgetTier(0.2, 50))
}

func TestChannelTier(t *testing.T) {
	assert.Contains(t, channelTier(0.8), "TikTok")
	assert.Contains(t, channelTier(0.5), "Google Search")
	assert.NotContains(t, channelTier(0.5), "TikTok")
	assert.Contains(t, channelTier(0.1), "Traditional Media")
}

func TestBudgetAndChannelsUseClusterStats(t *testing.T) {
	g := New(nil)
	personas, stats := samplePersonas()

	strategies := g.Generate(context.Background(), personas, stats, types.IntentConversion)

	// Cluster 0: high spending, low digital.
	assert.Equal(t, "High Budget (100K-500K)", strategies[0].Budget)
	assert.Contains(t, strategies[0].Channels, "Traditional Media")
	// Cluster 1: low spending, highly digital.
	assert.Equal(t, "Low Budget (10K-50K)", strategies[1].Budget)
	assert.Contains(t, strategies[1].Channels, "TikTok")
}

type fakeGen struct {
	resp string
	err  error
}

func (f *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	return f.resp, f.err
}

func (f *fakeGen) Enabled() bool { return true }

func TestLLMSuggestionsAppended(t *testing.T) {
	g := New(&fakeGen{resp: "1. Run reels ads\n2. Partner with campus creators\n3. Launch referral codes"})
	personas, stats := samplePersonas()

	strategies := g.Generate(context.Background(), personas, stats, types.IntentReach)
	for _, s := range strategies {
		assert.NotEmpty(t, s.LLMSuggestions)
		// Required fields are unchanged by the collaborator.
		assert.Equal(t, "Maximize audience reach and brand visibility", s.Objective)
		assert.Len(t, s.Tactics, 5)
	}
}

func TestLLMFailureLeavesStrategyComplete(t *testing.T) {
	g := New(&fakeGen{err: errors.New("timeout")})
	personas, stats := samplePersonas()

	strategies := g.Generate(context.Background(), personas, stats, types.IntentRetention)
	for _, s := range strategies {
		assert.Empty(t, s.LLMSuggestions)
		assert.NotEmpty(t, s.Objective)
		assert.NotEmpty(t, s.Budget)
		assert.NotEmpty(t, s.Channels)
	}
}
