package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personagen/internal/config"
	"personagen/internal/population"
	"personagen/internal/types"
)

func newPipeline(t *testing.T, n int) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	p, err := New(population.Synthetic(n, 42), nil, cfg)
	require.NoError(t, err)
	return p
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Pipeline.KMin = 5
	cfg.Pipeline.KMax = 2

	_, err := New(population.Synthetic(10, 42), nil, cfg)
	assert.Error(t, err, "configuration errors must fail before any pipeline work")
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	p := newPipeline(t, 200)

	tests := []struct {
		name string
		opts Options
	}{
		{"inverted k range", Options{KMin: 5, KMax: 2}},
		{"k below 2", Options{KMin: 1, KMax: 1}},
		{"half-set k range", Options{KMin: 5}},
		{"negative min_cluster_pct", Options{KMin: 2, KMax: 4, MinClusterPct: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Run(context.Background(), "reach everyone", tt.opts)
			require.Error(t, err, "bad options must fail before any filtering work")
			assert.Nil(t, result)
		})
	}
}

func TestRunScenarioCollegeTier2Price(t *testing.T) {
	p := newPipeline(t, 5000)

	result, err := p.Run(context.Background(),
		"college students in tier-2 cities worried about price",
		Options{KMin: 2, KMax: 4, MinClusterPct: 0.03})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Meta.SubsetSize, 100)
	assert.Empty(t, result.Meta.Warning)
	assert.GreaterOrEqual(t, result.Meta.ChosenK, 2)
	assert.LessOrEqual(t, result.Meta.ChosenK, 4)

	require.NotEmpty(t, result.Personas)
	for i := 1; i < len(result.Personas); i++ {
		assert.GreaterOrEqual(t, result.Personas[i-1].SizePct, result.Personas[i].SizePct,
			"personas must be sorted by descending size")
	}
	for _, per := range result.Personas {
		// Price-worried students: every surviving cluster is price sensitive.
		assert.NotEmpty(t, per.CareAbout)
		assert.NotEmpty(t, per.Barriers)
		assert.NotEmpty(t, per.Label)
	}

	require.Len(t, result.Strategies, len(result.Personas))
	for i, s := range result.Strategies {
		assert.Equal(t, result.Personas[i].ClusterID, s.ClusterID)
		assert.NotEmpty(t, s.Tactics)
	}
}

func TestRunEmptyGoalStillProceeds(t *testing.T) {
	p := newPipeline(t, 2000)

	result, err := p.Run(context.Background(), "", Options{})
	require.NoError(t, err)

	assert.Equal(t, types.IntentReach, result.Analysis.Intent)
	assert.NotEmpty(t, result.Personas, "an empty goal segments the broad population")
}

func TestRunInsufficientData(t *testing.T) {
	p := newPipeline(t, 50) // below min_subset of 100

	result, err := p.Run(context.Background(), "reach everyone", Options{})
	require.NoError(t, err, "insufficient data is a result state, not an error")

	assert.NotEmpty(t, result.Meta.Warning)
	assert.Empty(t, result.Personas)
	assert.Empty(t, result.Strategies)
	assert.Less(t, result.Meta.SubsetSize, 100)
}

func TestRunIdempotentWithoutCollaborator(t *testing.T) {
	p := newPipeline(t, 3000)
	goal := "drive sales of premium products to affluent millennials"

	r1, err := p.Run(context.Background(), goal, Options{})
	require.NoError(t, err)
	r2, err := p.Run(context.Background(), goal, Options{})
	require.NoError(t, err)

	// Request IDs differ; everything derived from the data must not.
	assert.Equal(t, r1.Meta.ChosenK, r2.Meta.ChosenK)
	assert.Equal(t, r1.Meta.SubsetSize, r2.Meta.SubsetSize)
	assert.Equal(t, r1.Meta.CohesionScore, r2.Meta.CohesionScore)

	r1.RequestID, r2.RequestID = "", ""
	if diff := cmp.Diff(r1.Personas, r2.Personas); diff != "" {
		t.Errorf("Personas differ between identical runs:\n%s", diff)
	}
	if diff := cmp.Diff(r1.Strategies, r2.Strategies); diff != "" {
		t.Errorf("Strategies differ between identical runs:\n%s", diff)
	}
}

func TestRunMetaDiagnostics(t *testing.T) {
	p := newPipeline(t, 2000)

	result, err := p.Run(context.Background(),
		"engage fitness enthusiasts on social media", Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RequestID)
	assert.NotEmpty(t, result.Meta.FiltersApplied)
	assert.Contains(t, result.Meta.FiltersApplied, "health:fitness_interest>0.5")
	assert.Greater(t, result.Meta.CohesionScore, -1.0)
	assert.LessOrEqual(t, len(result.Personas), 6)
}
