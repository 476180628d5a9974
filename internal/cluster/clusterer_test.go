package cluster

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personagen/internal/feature"
	"personagen/internal/population"
	"personagen/internal/types"
)

func engineered(n int) (*population.Store, []int, []types.FeatureVector) {
	store := population.Synthetic(n, 42)
	subset := make([]int, n)
	for i := range subset {
		subset[i] = i
	}
	return store, subset, feature.New(store).Engineer(subset)
}

func TestKMeansWellSeparated(t *testing.T) {
	// Two tight blobs far apart must split cleanly at k=2.
	points := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1}, {0.1, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1}, {10.1, 10.1},
	}
	assignments := kmeans(points, 2, 42)

	require.Len(t, assignments, 8)
	first := assignments[0]
	for i := 1; i < 4; i++ {
		assert.Equal(t, first, assignments[i])
	}
	second := assignments[4]
	assert.NotEqual(t, first, second)
	for i := 5; i < 8; i++ {
		assert.Equal(t, second, assignments[i])
	}
}

func TestSilhouette(t *testing.T) {
	separated := [][]float64{
		{0, 0}, {0.1, 0.1}, {10, 10}, {10.1, 10.1},
	}
	good := silhouette(separated, []int{0, 0, 1, 1})
	bad := silhouette(separated, []int{0, 1, 0, 1})
	assert.Greater(t, good, 0.8)
	assert.Greater(t, good, bad)

	// Single cluster scores the worst possible value.
	assert.Equal(t, -1.0, silhouette(separated, []int{0, 0, 0, 0}))
}

func TestClusterDeterministic(t *testing.T) {
	store, subset, vectors := engineered(300)
	c := New(store, 42)

	r1, err := c.Cluster(context.Background(), subset, vectors, types.IntentReach, 0, 0)
	require.NoError(t, err)
	r2, err := c.Cluster(context.Background(), subset, vectors, types.IntentReach, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, r1.K, r2.K)
	assert.Equal(t, r1.Score, r2.Score)
	if diff := cmp.Diff(r1.Assignments, r2.Assignments); diff != "" {
		t.Errorf("Same input produced different assignments:\n%s", diff)
	}
}

func TestClusterKRanges(t *testing.T) {
	store, subset, vectors := engineered(300)
	c := New(store, 42)

	tests := []struct {
		intent     types.Intent
		kMin, kMax int
	}{
		{types.IntentReach, 3, 6},
		{types.IntentEngagement, 2, 5},
		{types.IntentConversion, 2, 4},
		{types.IntentRetention, 2, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			r, err := c.Cluster(context.Background(), subset, vectors, tt.intent, 0, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, r.K, tt.kMin)
			assert.LessOrEqual(t, r.K, tt.kMax)

			for _, a := range r.Assignments {
				assert.GreaterOrEqual(t, a, 0)
				assert.Less(t, a, r.K)
			}
		})
	}
}

func TestClusterExplicitRangeOverride(t *testing.T) {
	store, subset, vectors := engineered(200)
	c := New(store, 42)

	r, err := c.Cluster(context.Background(), subset, vectors, types.IntentReach, 2, 3)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.K, 2)
	assert.LessOrEqual(t, r.K, 3)
}

func TestClusterStats(t *testing.T) {
	store, subset, vectors := engineered(400)
	c := New(store, 42)

	r, err := c.Cluster(context.Background(), subset, vectors, types.IntentConversion, 0, 0)
	require.NoError(t, err)
	require.Len(t, r.Stats, r.K)

	totalSize, totalPct := 0, 0.0
	for _, s := range r.Stats {
		totalSize += s.Size
		totalPct += s.SizePct
		if s.Size == 0 {
			continue
		}
		assert.NotEmpty(t, s.DominantGender)
		assert.NotEmpty(t, s.DominantIncome)
		assert.Greater(t, s.AvgAge, 17.0)
		assert.NotNil(t, s.FeatureMeans)
	}
	assert.Equal(t, 400, totalSize)
	assert.InDelta(t, 100.0, totalPct, 1e-6)
}

func TestClusterIntentFeatures(t *testing.T) {
	store, subset, vectors := engineered(100)
	c := New(store, 42)

	r, err := c.Cluster(context.Background(), subset, vectors, types.IntentEngagement, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, r.Features, "social_media_usage")
	assert.Contains(t, r.Features, "email_open_rate")
	assert.NotContains(t, r.Features, "avg_order_value")
}

func TestClusterTooFewVectors(t *testing.T) {
	store, _, _ := engineered(10)
	c := New(store, 42)
	_, err := c.Cluster(context.Background(), []int{0, 1}, nil, types.IntentReach, 0, 0)
	assert.Error(t, err)
}

func TestModeTieBreaksLexicographically(t *testing.T) {
	assert.Equal(t, "A", mode(map[string]int{"B": 2, "A": 2, "C": 1}))
	assert.Equal(t, "Unknown", mode(nil))
}
