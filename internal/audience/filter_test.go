package audience

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personagen/internal/population"
	"personagen/internal/types"
)

func newFilter(t *testing.T, n int) *Filter {
	t.Helper()
	return New(population.Synthetic(n, 42), 2000, 1000, 42)
}

func TestApplyDemographics(t *testing.T) {
	f := newFilter(t, 3000)
	a := types.GoalAnalysis{
		Demographics: map[string]string{
			"age_group": "gen_z",
			"city_tier": "tier_2",
		},
	}

	subset, applied := f.Apply(&a)
	require.NotEmpty(t, subset)
	assert.Contains(t, applied, "age_group:gen_z")
	assert.Contains(t, applied, "city_tier:tier_2")

	for _, idx := range subset {
		r := f.store.Record(idx)
		assert.GreaterOrEqual(t, r.Age, 18)
		assert.LessOrEqual(t, r.Age, 25)
		assert.Equal(t, "Tier-2", r.CityTier)
	}
}

func TestIncomeFilterMatchesDatasetBandSpellings(t *testing.T) {
	records := []types.UserRecord{
		{ID: 1, IncomeBand: "₹10L-₹20L"},
		{ID: 2, IncomeBand: "₹50L+"},
		{ID: 3, IncomeBand: "High"},
		{ID: 4, IncomeBand: "₹2L-₹5L"},
		{ID: 5, IncomeBand: "Low"},
		{ID: 6, IncomeBand: "5L-10L"},
	}
	f := New(population.NewFromRecords(records), 2000, 1000, 42)

	a := types.GoalAnalysis{Demographics: map[string]string{"income_level": "high_income"}}
	subset, applied := f.Apply(&a)

	assert.Contains(t, applied, "income_level:high_income")
	assert.NotContains(t, applied, "relaxed:propensity_to_buy")
	require.Len(t, subset, 3)
	for _, idx := range subset {
		band := types.CanonicalIncomeBand(f.store.Record(idx).IncomeBand)
		assert.Contains(t, []string{"10L-20L", "20L-50L", "50L+"}, band)
	}
}

func TestApplyHints(t *testing.T) {
	f := newFilter(t, 2000)
	a := types.GoalAnalysis{
		Demographics:        map[string]string{},
		MinDeviceCount:      2,
		MinPriceSensitivity: 0.55,
	}

	subset, applied := f.Apply(&a)
	require.NotEmpty(t, subset)
	assert.Contains(t, applied, "device_count>=2")
	assert.Contains(t, applied, "price_sensitivity>=0.55")

	for _, idx := range subset {
		r := f.store.Record(idx)
		assert.GreaterOrEqual(t, r.DeviceCount, 2)
		assert.GreaterOrEqual(t, r.PriceSensitivity, 0.55)
	}
}

func TestShoppingPercentileCut(t *testing.T) {
	f := newFilter(t, 1000)
	a := types.GoalAnalysis{
		Demographics:    map[string]string{},
		BehavioralFocus: []string{"shopping"},
	}

	subset, _ := f.Apply(&a)
	require.NotEmpty(t, subset)
	// Roughly the top 70% by grocery spend survives the p30 cut.
	assert.Greater(t, len(subset), 500)
	assert.Less(t, len(subset), 800)
}

func TestDownsampleCap(t *testing.T) {
	f := newFilter(t, 5000)
	a := types.GoalAnalysis{Demographics: map[string]string{}}

	subset, applied := f.Apply(&a)
	assert.Len(t, subset, 2000)
	assert.Contains(t, applied, "downsample:2000")

	// Subset stays sorted so downstream stages are order-stable.
	for i := 1; i < len(subset); i++ {
		assert.Greater(t, subset[i], subset[i-1])
	}
}

func TestDeterministic(t *testing.T) {
	a := types.GoalAnalysis{
		Demographics:    map[string]string{"age_group": "millennial"},
		BehavioralFocus: []string{"shopping", "technology"},
	}

	f1 := newFilter(t, 5000)
	f2 := newFilter(t, 5000)

	s1, app1 := f1.Apply(&a)
	s2, app2 := f2.Apply(&a)

	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("Same input produced different subsets:\n%s", diff)
	}
	assert.Equal(t, app1, app2)
}

func TestRelaxationNeverEmpty(t *testing.T) {
	f := newFilter(t, 1500)
	// Impossible conjunction: privacy hint above any generated value.
	a := types.GoalAnalysis{
		Demographics:   map[string]string{},
		MinPrivacyPref: 0.999999,
	}

	subset, applied := f.Apply(&a)
	require.NotEmpty(t, subset)
	assert.LessOrEqual(t, len(subset), 1000)
	assert.Contains(t, applied, "relaxed:propensity_to_buy")
}

func TestScenarioCollegeTier2Price(t *testing.T) {
	f := New(population.Synthetic(5000, 42), 2000, 1000, 42)
	a := types.GoalAnalysis{
		Demographics: map[string]string{
			"age_group": "gen_z",
			"city_tier": "tier_2",
		},
		MinPriceSensitivity: 0.55,
		CommercePatterns:    []string{"bargain_hunters"},
	}

	subset, _ := f.Apply(&a)
	assert.GreaterOrEqual(t, len(subset), 100, "scenario subset should be usable")
}
