package feature

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personagen/internal/population"
	"personagen/internal/types"
)

func subsetOf(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func TestEngineer(t *testing.T) {
	store := population.Synthetic(500, 42)
	eng := New(store)

	vectors := eng.Engineer(subsetOf(500))
	require.Len(t, vectors, 500)

	wantFeatures := []string{
		"spending_power", "digital_engagement", "lifestyle_complexity",
		"shopping_behavior_score", "media_consumption_score", "health_consciousness_score",
		"innovation_profile", "social_responsibility_profile", "achievement_orientation",
		"family_orientation", "urban_sophistication",
		"loyalty_score", "brand_affinity_score",
		"retention_risk_index", "conversion_opportunity_index",
	}

	for i, v := range vectors {
		assert.Equal(t, i, v.Row)
		for _, name := range wantFeatures {
			require.True(t, v.Has(name), "vector missing %s", name)
		}
	}
}

func TestEngineerBounds(t *testing.T) {
	store := population.Synthetic(300, 42)
	vectors := New(store).Engineer(subsetOf(300))

	for _, v := range vectors {
		// Unit-weighted composites stay within their design range.
		assert.GreaterOrEqual(t, v.Feature("health_consciousness_score"), 0.0)
		assert.LessOrEqual(t, v.Feature("health_consciousness_score"), 1.0)
		assert.GreaterOrEqual(t, v.Feature("urban_sophistication"), 0.0)
		assert.LessOrEqual(t, v.Feature("urban_sophistication"), 1.0)
		assert.GreaterOrEqual(t, v.Feature("loyalty_score"), 0.0)
		assert.LessOrEqual(t, v.Feature("loyalty_score"), 1.0)
		// Lifestyle complexity mixes 0-3 frequency scores.
		assert.LessOrEqual(t, v.Feature("lifestyle_complexity"), 2.2)
	}
}

func TestEngineerNormalizesAgainstSubset(t *testing.T) {
	records := []types.UserRecord{
		{ID: 1, GrocerySpend: 100, BeautySpend: 10, AvgOrderValue: 50},
		{ID: 2, GrocerySpend: 200, BeautySpend: 20, AvgOrderValue: 100},
	}
	store := population.NewFromRecords(records)
	vectors := New(store).Engineer([]int{0, 1})

	// The subset maximum spender gets the full grocery weight.
	assert.Greater(t, vectors[1].Feature("spending_power"), vectors[0].Feature("spending_power"))
}

func TestMissingFieldsReadZero(t *testing.T) {
	store := population.NewFromRecords([]types.UserRecord{{ID: 1, Age: 30}})
	vectors := New(store).Engineer([]int{0})

	v := vectors[0]
	assert.Equal(t, 0.0, v.Feature("brand_affinity_score"))
	assert.Equal(t, 0.0, v.Feature("loyalty_score"))
	assert.Equal(t, 30.0, v.Feature("age"))
}

type fakeGen struct {
	resp string
	err  error
}

func (f *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	return f.resp, f.err
}

func (f *fakeGen) Enabled() bool { return true }

func TestSuggestTransforms(t *testing.T) {
	store := population.Synthetic(50, 42)
	vectors := New(store).Engineer(subsetOf(50))

	gen := &fakeGen{resp: `{"transformations":[
		{"feature":"spending_power","transform":"log"},
		{"feature":"no_such_feature","transform":"log"},
		{"feature":"loyalty_score","transform":"cube"}
	]}`}

	a := &types.GoalAnalysis{Intent: types.IntentReach}
	SuggestTransforms(context.Background(), gen, vectors, a)

	for _, v := range vectors {
		assert.True(t, v.Has("spending_power_log"), "valid transform should apply")
		assert.False(t, v.Has("no_such_feature_log"), "unknown feature should be discarded")
		assert.False(t, v.Has("loyalty_score_cube"), "unsupported transform should be discarded")
	}
}

func TestSuggestTransformsFailuresLeaveVectorsUntouched(t *testing.T) {
	store := population.Synthetic(20, 42)
	base := New(store).Engineer(subsetOf(20))
	n := len(base[0].Values)

	a := &types.GoalAnalysis{Intent: types.IntentReach}

	for _, gen := range []*fakeGen{
		{err: errors.New("timeout")},
		{resp: "not json at all"},
	} {
		vectors := New(store).Engineer(subsetOf(20))
		SuggestTransforms(context.Background(), gen, vectors, a)
		assert.Len(t, vectors[0].Values, n)
	}
}
