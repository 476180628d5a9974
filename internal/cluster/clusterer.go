package cluster

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"personagen/internal/logging"
	"personagen/internal/population"
	"personagen/internal/types"
)

// =============================================================================
// FEATURE SELECTION
// =============================================================================

var baseFeatures = []string{
	"spending_power", "digital_engagement", "lifestyle_complexity",
	"shopping_behavior_score", "media_consumption_score", "health_consciousness_score",
	"innovation_profile", "social_responsibility_profile", "achievement_orientation",
	"family_orientation", "urban_sophistication",
	"loyalty_score", "brand_affinity_score", "retention_risk_index", "conversion_opportunity_index",
}

var intentFeatures = map[types.Intent][]string{
	types.IntentConversion: {"electronics_interest", "auto_interest", "beauty_interest", "propensity_to_buy", "avg_order_value"},
	types.IntentEngagement: {"social_media_usage", "entertainment_interest", "fitness_interest", "email_open_rate", "email_click_rate"},
	types.IntentRetention:  {"investment_interest", "travel_frequency", "loyalty_score", "churn_risk"},
}

// intentKRange maps intent to the default cluster-count scan range.
var intentKRange = map[types.Intent][2]int{
	types.IntentReach:      {3, 6},
	types.IntentEngagement: {2, 5},
	types.IntentConversion: {2, 4},
	types.IntentRetention:  {2, 4},
}

// selectFeatures returns the clustered feature columns for an intent,
// restricted to what the vectors actually carry, in stable order.
func selectFeatures(vectors []types.FeatureVector, intent types.Intent) []string {
	candidates := append([]string(nil), baseFeatures...)
	candidates = append(candidates, intentFeatures[intent]...)

	seen := make(map[string]bool)
	var out []string
	for _, name := range candidates {
		if seen[name] || !vectors[0].Has(name) {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// =============================================================================
// CLUSTERER
// =============================================================================

// Result is the outcome of one clustering run.
type Result struct {
	K           int
	Score       float64 // mean silhouette of the chosen k
	Assignments []int   // one label in [0,K) per subset row
	Features    []string
	Stats       []types.ClusterStats
}

// Clusterer segments feature vectors.
type Clusterer struct {
	store *population.Store
	seed  int64
}

// New creates a clusterer over the population store.
func New(store *population.Store, seed int64) *Clusterer {
	return &Clusterer{store: store, seed: seed}
}

// Cluster scans the k range for the intent (or the explicit kMin/kMax
// override when both are positive), fits each candidate in parallel, and
// keeps the k with the strictly highest silhouette, smallest k on ties.
func (c *Clusterer) Cluster(ctx context.Context, subset []int, vectors []types.FeatureVector, intent types.Intent, kMin, kMax int) (*Result, error) {
	if len(vectors) < 3 {
		return nil, fmt.Errorf("cannot cluster %d vectors", len(vectors))
	}

	if kMin <= 0 || kMax <= 0 {
		r := intentKRange[intent]
		kMin, kMax = r[0], r[1]
	}
	if kMax >= len(vectors) {
		kMax = len(vectors) - 1
	}
	if kMin > kMax {
		kMin = kMax
	}

	features := selectFeatures(vectors, intent)
	matrix := standardize(buildMatrix(vectors, features))

	type candidate struct {
		k           int
		score       float64
		assignments []int
	}
	candidates := make([]candidate, kMax-kMin+1)

	// Each fit is independently seeded, so parallel order cannot change the
	// outcome.
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for k := kMin; k <= kMax; k++ {
		k := k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			assignments := kmeans(matrix, k, c.seed)
			score := silhouette(matrix, assignments)
			mu.Lock()
			candidates[k-kMin] = candidate{k: k, score: score, assignments: assignments}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.score > best.score {
			best = cand
		}
	}

	logging.Cluster("Chose k=%d score=%.3f over range [%d,%d] (%d features)",
		best.k, best.score, kMin, kMax, len(features))

	return &Result{
		K:           best.k,
		Score:       best.score,
		Assignments: best.assignments,
		Features:    features,
		Stats:       c.stats(subset, vectors, features, best.assignments, best.k),
	}, nil
}

func buildMatrix(vectors []types.FeatureVector, features []string) [][]float64 {
	matrix := make([][]float64, len(vectors))
	for i, v := range vectors {
		row := make([]float64, len(features))
		for j, name := range features {
			row[j] = v.Feature(name)
		}
		matrix[i] = row
	}
	return matrix
}

// standardize zero-means and unit-scales each column in place. Constant
// columns become all zeros rather than dividing by zero.
func standardize(matrix [][]float64) [][]float64 {
	if len(matrix) == 0 {
		return matrix
	}
	n := float64(len(matrix))
	dim := len(matrix[0])

	for j := 0; j < dim; j++ {
		mean := 0.0
		for _, row := range matrix {
			mean += row[j]
		}
		mean /= n

		variance := 0.0
		for _, row := range matrix {
			d := row[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / n)

		for _, row := range matrix {
			if std == 0 {
				row[j] = 0
			} else {
				row[j] = (row[j] - mean) / std
			}
		}
	}
	return matrix
}

// =============================================================================
// CLUSTER STATISTICS
// =============================================================================

func (c *Clusterer) stats(subset []int, vectors []types.FeatureVector, features []string, assignments []int, k int) []types.ClusterStats {
	n := len(subset)
	out := make([]types.ClusterStats, k)

	type agg struct {
		size                        int
		ages                        []int
		gender, income, education   map[string]int
		cityTier, media             map[string]int
		priceSens, privacy, devices float64
		brandAware, techAdoption    float64
		featureSums                 map[string]float64
	}
	aggs := make([]agg, k)
	for i := range aggs {
		aggs[i] = agg{
			gender: make(map[string]int), income: make(map[string]int),
			education: make(map[string]int), cityTier: make(map[string]int),
			media: make(map[string]int), featureSums: make(map[string]float64),
		}
	}

	for row, cid := range assignments {
		a := &aggs[cid]
		r := c.store.Record(subset[row])
		a.size++
		a.ages = append(a.ages, r.Age)
		a.gender[r.Gender]++
		a.income[r.IncomeBand]++
		a.education[r.EducationLevel]++
		a.cityTier[r.CityTier]++
		a.media[r.PreferredMedia]++
		a.priceSens += r.PriceSensitivity
		a.privacy += r.PrivacyPref
		a.devices += float64(r.DeviceCount)
		a.brandAware += r.BrandAwareness
		a.techAdoption += r.TechAdoptionScore
		for _, f := range features {
			a.featureSums[f] += vectors[row].Feature(f)
		}
	}

	for cid := range out {
		a := &aggs[cid]
		s := types.ClusterStats{ClusterID: cid, Size: a.size}
		if a.size == 0 {
			out[cid] = s
			continue
		}
		sz := float64(a.size)
		s.SizePct = sz / float64(n) * 100
		s.AvgAge = meanInt(a.ages)
		s.AgeRange = ageRange(a.ages)
		s.DominantGender = mode(a.gender)
		s.DominantIncome = mode(a.income)
		s.DominantEducation = mode(a.education)
		s.DominantCityTier = mode(a.cityTier)
		s.DominantMedia = mode(a.media)
		s.AvgPriceSensitivity = a.priceSens / sz
		s.AvgPrivacyPref = a.privacy / sz
		s.AvgDeviceCount = a.devices / sz
		s.AvgBrandAwareness = a.brandAware / sz
		s.AvgTechAdoption = a.techAdoption / sz

		s.FeatureMeans = make(map[string]float64, len(a.featureSums))
		for f, sum := range a.featureSums {
			s.FeatureMeans[f] = sum / sz
		}
		s.AvgSpendingPower = s.FeatureMeans["spending_power"]
		s.AvgDigitalEngagement = s.FeatureMeans["digital_engagement"]
		s.AvgLifestyleComplexity = s.FeatureMeans["lifestyle_complexity"]
		out[cid] = s
	}
	return out
}

func meanInt(vals []int) float64 {
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

// ageRange renders the p10-p90 age band of a cluster.
func ageRange(ages []int) string {
	sorted := append([]int(nil), ages...)
	sort.Ints(sorted)
	lo := sorted[int(0.1*float64(len(sorted)-1))]
	hi := sorted[int(0.9*float64(len(sorted)-1))]
	return fmt.Sprintf("%d-%d", lo, hi)
}

// mode picks the most frequent value, smallest lexicographically on ties.
func mode(counts map[string]int) string {
	if len(counts) == 0 {
		return "Unknown"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestCount := keys[0], counts[keys[0]]
	for _, k := range keys[1:] {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}
