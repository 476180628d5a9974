package population

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"personagen/internal/types"
)

func TestSyntheticDeterministic(t *testing.T) {
	a := Synthetic(200, 42)
	b := Synthetic(200, 42)

	if a.Len() != 200 || b.Len() != 200 {
		t.Fatalf("Expected 200 records, got %d and %d", a.Len(), b.Len())
	}
	if diff := cmp.Diff(a.Records(), b.Records()); diff != "" {
		t.Errorf("Same seed produced different populations (-a +b):\n%s", diff)
	}

	c := Synthetic(200, 7)
	if diff := cmp.Diff(a.Records(), c.Records()); diff == "" {
		t.Error("Different seeds produced identical populations")
	}
}

func TestSyntheticFieldRanges(t *testing.T) {
	store := Synthetic(500, 42)

	for i := 0; i < store.Len(); i++ {
		r := store.Record(i)
		if r.Age < 18 || r.Age > 75 {
			t.Fatalf("record %d: age %d out of range", r.ID, r.Age)
		}
		if r.PriceSensitivity < 0 || r.PriceSensitivity > 1 {
			t.Fatalf("record %d: price sensitivity %v out of range", r.ID, r.PriceSensitivity)
		}
		if r.CityTier == "" || r.IncomeBand == "" || r.PreferredMedia == "" {
			t.Fatalf("record %d: missing categorical fields", r.ID)
		}
		if len(r.BrandAffinities) != 5 {
			t.Fatalf("record %d: expected 5 brand affinities, got %d", r.ID, len(r.BrandAffinities))
		}
	}

	if err := store.Validate(); err != nil {
		t.Errorf("Synthetic population should validate: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	store := Synthetic(1000, 42)
	stats := store.Summarize()

	if stats.Total != 1000 {
		t.Errorf("Expected total 1000, got %d", stats.Total)
	}
	if stats.AvgAge < 25 || stats.AvgAge > 45 {
		t.Errorf("Mean age %v outside plausible band", stats.AvgAge)
	}

	tierSum := 0
	for _, n := range stats.ByCityTier {
		tierSum += n
	}
	if tierSum != 1000 {
		t.Errorf("City tier counts sum to %d, want 1000", tierSum)
	}
}

func TestPercentile(t *testing.T) {
	store := Synthetic(100, 42)
	subset := make([]int, store.Len())
	for i := range subset {
		subset[i] = i
	}

	grocery := func(r *types.UserRecord) float64 { return r.GrocerySpend }

	p0 := store.Percentile(subset, 0, grocery)
	p50 := store.Percentile(subset, 50, grocery)
	p100 := store.Percentile(subset, 100, grocery)

	if !(p0 <= p50 && p50 <= p100) {
		t.Errorf("Percentiles not monotone: p0=%v p50=%v p100=%v", p0, p50, p100)
	}

	below := 0
	for _, idx := range subset {
		if grocery(store.Record(idx)) <= p50 {
			below++
		}
	}
	if below < 40 || below > 60 {
		t.Errorf("Median splits subset %d/%d", below, len(subset))
	}

	if got := store.Percentile(nil, 50, grocery); got != 0 {
		t.Errorf("Empty subset percentile should be 0, got %v", got)
	}
}
