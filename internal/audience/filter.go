// Package audience selects the population subset a goal analysis targets.
// Filters are conjunctive and applied in a fixed order; every applied filter
// is recorded by name so a run can always explain its subset.
package audience

import (
	"fmt"
	"math/rand"
	"sort"

	"personagen/internal/logging"
	"personagen/internal/population"
	"personagen/internal/types"
)

// Filter narrows the population to the audience a GoalAnalysis describes.
type Filter struct {
	store *population.Store

	cap       int   // deterministic downsample threshold
	relaxSize int   // top-slice size when strict filtering empties the subset
	seed      int64 // drives every sampling decision
}

// New creates an audience filter over an immutable population store.
func New(store *population.Store, cap, relaxSize int, seed int64) *Filter {
	return &Filter{store: store, cap: cap, relaxSize: relaxSize, seed: seed}
}

// Apply returns indices into the population for the goal's audience, plus the
// names of every filter that was applied. The subset is never empty as long
// as the population is non-empty: an over-constrained goal falls back to a
// relaxed high-propensity cohort.
func (f *Filter) Apply(a *types.GoalAnalysis) (subset []int, applied []string) {
	subset = make([]int, f.store.Len())
	for i := range subset {
		subset[i] = i
	}

	subset, applied = f.applyDemographics(subset, applied, a)
	subset, applied = f.applyHints(subset, applied, a)
	subset, applied = f.applyBehavioral(subset, applied, a)
	subset, applied = f.applyPsychographics(subset, applied, a)
	subset, applied = f.applyCommerce(subset, applied, a)

	if len(subset) > f.cap {
		subset = f.sample(subset, f.cap)
		applied = append(applied, fmt.Sprintf("downsample:%d", f.cap))
	}

	if len(subset) == 0 && f.store.Len() > 0 {
		subset, applied = f.relax(applied)
	}

	logging.Audience("Filtered %d -> %d users (%d filters)", f.store.Len(), len(subset), len(applied))
	return subset, applied
}

func (f *Filter) applyDemographics(subset []int, applied []string, a *types.GoalAnalysis) ([]int, []string) {
	if age, ok := a.Demographics["age_group"]; ok {
		lo, hi := ageRange(age)
		subset = f.keep(subset, func(r *types.UserRecord) bool {
			return r.Age >= lo && r.Age <= hi
		})
		applied = append(applied, "age_group:"+age)
	}

	if income, ok := a.Demographics["income_level"]; ok {
		bands := incomeBands(income)
		if len(bands) > 0 {
			subset = f.keep(subset, func(r *types.UserRecord) bool {
				return bands[types.CanonicalIncomeBand(r.IncomeBand)]
			})
			applied = append(applied, "income_level:"+income)
		}
	}

	if edu, ok := a.Demographics["education_level"]; ok {
		levels := educationLevels(edu)
		if len(levels) > 0 {
			subset = f.keep(subset, func(r *types.UserRecord) bool {
				return levels[r.EducationLevel]
			})
			applied = append(applied, "education_level:"+edu)
		}
	}

	if tier, ok := a.Demographics["city_tier"]; ok {
		want := cityTierValue(tier)
		if want != "" {
			subset = f.keep(subset, func(r *types.UserRecord) bool {
				return r.CityTier == want
			})
			applied = append(applied, "city_tier:"+tier)
		}
	}

	return subset, applied
}

// applyHints enforces numeric thresholds parsed from the goal text.
func (f *Filter) applyHints(subset []int, applied []string, a *types.GoalAnalysis) ([]int, []string) {
	if a.MinDeviceCount > 0 {
		min := a.MinDeviceCount
		subset = f.keep(subset, func(r *types.UserRecord) bool {
			return r.DeviceCount >= min
		})
		applied = append(applied, fmt.Sprintf("device_count>=%d", min))
	}
	if a.MinPrivacyPref > 0 {
		min := a.MinPrivacyPref
		subset = f.keep(subset, func(r *types.UserRecord) bool {
			return r.PrivacyPref >= min
		})
		applied = append(applied, fmt.Sprintf("privacy_pref>=%.2f", min))
	}
	if a.MinPriceSensitivity > 0 {
		min := a.MinPriceSensitivity
		subset = f.keep(subset, func(r *types.UserRecord) bool {
			return r.PriceSensitivity >= min
		})
		applied = append(applied, fmt.Sprintf("price_sensitivity>=%.2f", min))
	}
	return subset, applied
}

func (f *Filter) applyBehavioral(subset []int, applied []string, a *types.GoalAnalysis) ([]int, []string) {
	if a.HasFocus("shopping") {
		// Cut at the subset's own 30th percentile, not the population's.
		cut := f.store.Percentile(subset, 30, func(r *types.UserRecord) float64 { return r.GrocerySpend })
		subset = f.keep(subset, func(r *types.UserRecord) bool { return r.GrocerySpend > cut })
		applied = append(applied, "shopping:grocery_spend>p30")
	}
	if a.HasFocus("media") {
		subset = f.keep(subset, func(r *types.UserRecord) bool { return r.SocialMediaUsage > 0.5 })
		applied = append(applied, "media:social_media_usage>0.5")
	}
	if a.HasFocus("travel") {
		subset = f.keep(subset, func(r *types.UserRecord) bool {
			return r.TravelFrequency == "Occasionally" || r.TravelFrequency == "Frequently"
		})
		applied = append(applied, "travel:frequency")
	}
	if a.HasFocus("health") {
		subset = f.keep(subset, func(r *types.UserRecord) bool { return r.FitnessInterest > 0.5 })
		applied = append(applied, "health:fitness_interest>0.5")
	}
	if a.HasFocus("finance") {
		subset = f.keep(subset, func(r *types.UserRecord) bool { return r.InvestmentInterest > 0.5 })
		applied = append(applied, "finance:investment_interest>0.5")
	}
	if a.HasFocus("technology") {
		subset = f.keep(subset, func(r *types.UserRecord) bool { return r.TechAdoptionScore > 0.6 })
		applied = append(applied, "technology:tech_adoption_score>0.6")
	}
	return subset, applied
}

func (f *Filter) applyPsychographics(subset []int, applied []string, a *types.GoalAnalysis) ([]int, []string) {
	type psychoFilter struct {
		name string
		pred func(*types.UserRecord) bool
	}
	filters := []psychoFilter{
		{"innovators", func(r *types.UserRecord) bool { return r.InnovationPreference > 0.6 }},
		{"conservatives", func(r *types.UserRecord) bool { return r.Conscientiousness > 0.6 }},
		{"socially_conscious", func(r *types.UserRecord) bool { return r.EnvironmentalConsciousness > 0.6 }},
		{"achievers", func(r *types.UserRecord) bool { return r.Conscientiousness > 0.6 }},
		{"experiencers", func(r *types.UserRecord) bool { return r.Extraversion > 0.6 }},
	}
	for _, pf := range filters {
		if a.Psychographics[pf.name] {
			subset = f.keep(subset, pf.pred)
			applied = append(applied, "psychographic:"+pf.name)
		}
	}
	return subset, applied
}

func (f *Filter) applyCommerce(subset []int, applied []string, a *types.GoalAnalysis) ([]int, []string) {
	if a.HasCommercePattern("frequent_shoppers") {
		subset = f.keep(subset, func(r *types.UserRecord) bool {
			return r.GroceryFrequency == "Daily" || r.GroceryFrequency == "Weekly"
		})
		applied = append(applied, "commerce:frequent_shoppers")
	}
	if a.HasCommercePattern("bargain_hunters") {
		subset = f.keep(subset, func(r *types.UserRecord) bool {
			return r.CouponUsageRate > 0.4 || r.PriceSensitivity > 0.5
		})
		applied = append(applied, "commerce:bargain_hunters")
	}
	if a.HasCommercePattern("premium_buyers") {
		cut := f.store.Percentile(subset, 70, func(r *types.UserRecord) float64 { return r.BeautySpend })
		subset = f.keep(subset, func(r *types.UserRecord) bool { return r.BeautySpend > cut })
		applied = append(applied, "commerce:premium_buyers:beauty_spend>p70")
	}
	if a.HasCommercePattern("online_shoppers") {
		subset = f.keep(subset, func(r *types.UserRecord) bool { return r.TechAdoptionScore > 0.6 })
		applied = append(applied, "commerce:online_shoppers")
	}
	return subset, applied
}

// relax builds a fallback cohort when strict filtering left nothing: the top
// slice by purchase propensity, then by tech adoption, then a seeded sample.
func (f *Filter) relax(applied []string) ([]int, []string) {
	all := make([]int, f.store.Len())
	for i := range all {
		all[i] = i
	}

	byField := func(extract func(*types.UserRecord) float64) ([]int, bool) {
		any := false
		for _, i := range all {
			if extract(f.store.Record(i)) > 0 {
				any = true
				break
			}
		}
		if !any {
			return nil, false
		}
		sorted := append([]int(nil), all...)
		sort.SliceStable(sorted, func(a, b int) bool {
			return extract(f.store.Record(sorted[a])) > extract(f.store.Record(sorted[b]))
		})
		if len(sorted) > f.relaxSize {
			sorted = sorted[:f.relaxSize]
		}
		return sorted, true
	}

	if subset, ok := byField(func(r *types.UserRecord) float64 { return r.PropensityToBuy }); ok {
		logging.AudienceDebug("Relaxed to top %d by propensity_to_buy", len(subset))
		return subset, append(applied, "relaxed:propensity_to_buy")
	}
	if subset, ok := byField(func(r *types.UserRecord) float64 { return r.TechAdoptionScore }); ok {
		logging.AudienceDebug("Relaxed to top %d by tech_adoption_score", len(subset))
		return subset, append(applied, "relaxed:tech_adoption_score")
	}

	n := f.relaxSize
	if n > len(all) {
		n = len(all)
	}
	subset := f.sample(all, n)
	return subset, append(applied, "relaxed:sample")
}

func (f *Filter) keep(subset []int, pred func(*types.UserRecord) bool) []int {
	out := subset[:0]
	for _, idx := range subset {
		if pred(f.store.Record(idx)) {
			out = append(out, idx)
		}
	}
	return out
}

// sample takes n elements with a seeded shuffle, then restores index order so
// downstream stages see a stable subset.
func (f *Filter) sample(subset []int, n int) []int {
	r := rand.New(rand.NewSource(f.seed))
	shuffled := append([]int(nil), subset...)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	picked := shuffled[:n]
	sort.Ints(picked)
	return picked
}

func ageRange(group string) (int, int) {
	switch group {
	case "gen_z":
		return 18, 25
	case "millennial":
		return 26, 40
	case "gen_x":
		return 41, 55
	case "boomer":
		return 56, 130
	default:
		return 0, 130
	}
}

func incomeBands(level string) map[string]bool {
	switch level {
	case "high_income":
		return map[string]bool{"10L-20L": true, "20L-50L": true, "50L+": true}
	case "middle_income":
		return map[string]bool{"2L-5L": true, "5L-10L": true}
	case "low_income":
		return map[string]bool{"Under 2L": true}
	default:
		return nil
	}
}

func educationLevels(level string) map[string]bool {
	switch level {
	case "high_education":
		return map[string]bool{"Graduate": true, "Postgraduate": true, "Doctorate": true}
	case "medium_education":
		return map[string]bool{"Secondary": true}
	case "basic_education":
		return map[string]bool{"Primary": true}
	default:
		return nil
	}
}

func cityTierValue(tier string) string {
	switch tier {
	case "tier_1":
		return "Tier-1"
	case "tier_2":
		return "Tier-2"
	case "tier_3":
		return "Tier-3"
	case "rural":
		return "Rural"
	default:
		return ""
	}
}
