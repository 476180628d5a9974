package population

import (
	"math"
	"math/rand"

	"personagen/internal/types"
)

// =============================================================================
// SYNTHETIC POPULATION
// =============================================================================
// Synthetic generates a deterministic in-memory population for demos and
// tests. Distributions mirror the dataset script that produces the SQLite
// database, so filters and clustering behave the same against either source.

var (
	genders          = []string{"Male", "Female", "Other"}
	genderWeights    = []float64{0.48, 0.50, 0.02}
	incomeBands      = []string{"Under 2L", "2L-5L", "5L-10L", "10L-20L", "20L-50L", "50L+"}
	incomeWeights    = []float64{0.15, 0.25, 0.30, 0.20, 0.08, 0.02}
	educationLevels  = []string{"Primary", "Secondary", "Graduate", "Postgraduate", "Doctorate"}
	educationWeights = []float64{0.20, 0.30, 0.35, 0.13, 0.02}
	regions          = []string{"North", "South", "East", "West", "Central"}
	regionWeights    = []float64{0.25, 0.25, 0.20, 0.20, 0.10}
	cityTiers        = []string{"Tier-1", "Tier-2", "Tier-3", "Rural"}
	cityTierWeights  = []float64{0.30, 0.35, 0.25, 0.10}
	maritalStatuses  = []string{"Single", "Married", "Divorced", "Widowed"}
	maritalWeights   = []float64{0.35, 0.55, 0.08, 0.02}
	groceryFreqs     = []string{"Daily", "Weekly", "Bi-weekly", "Monthly"}
	groceryWeights   = []float64{0.15, 0.50, 0.25, 0.10}
	travelFreqs      = []string{"Never", "Rarely", "Occasionally", "Frequently"}
	travelWeights    = []float64{0.10, 0.30, 0.45, 0.15}
	fitnessFreqs     = []string{"Never", "Rarely", "Weekly", "Daily"}
	fitnessWeights   = []float64{0.20, 0.30, 0.35, 0.15}
	loyaltyTiers     = []string{"None", "Bronze", "Silver", "Gold", "Platinum"}
	loyaltyWeights   = []float64{0.50, 0.20, 0.20, 0.08, 0.02}
	mediaChannels    = []string{"YouTube", "Instagram", "Facebook", "TikTok", "TV"}
	mediaWeights     = []float64{0.30, 0.25, 0.20, 0.10, 0.15}
	streamers        = []string{"Netflix", "Amazon Prime", "Disney+", "Hotstar", "None"}
	streamerWeights  = []float64{0.30, 0.25, 0.15, 0.20, 0.10}
	brands           = []string{"bose", "apple", "samsung", "nike", "amazon"}
)

// Synthetic builds n deterministic records from the given seed.
func Synthetic(n int, seed int64) *Store {
	r := rand.New(rand.NewSource(seed))
	records := make([]types.UserRecord, 0, n)

	for i := 0; i < n; i++ {
		rec := types.UserRecord{
			ID: int64(i + 1),

			Age:            clampInt(int(r.NormFloat64()*12+35), 18, 75),
			Gender:         choose(r, genders, genderWeights),
			IncomeBand:     choose(r, incomeBands, incomeWeights),
			EducationLevel: choose(r, educationLevels, educationWeights),
			Region:         choose(r, regions, regionWeights),
			CityTier:       choose(r, cityTiers, cityTierWeights),
			MaritalStatus:  choose(r, maritalStatuses, maritalWeights),
			NumChildren:    int(r.Int63n(4)),

			GrocerySpend:     clampF(r.NormFloat64()*3000+8000, 2000, 25000),
			GroceryFrequency: choose(r, groceryFreqs, groceryWeights),
			BeautySpend:      clampF(r.NormFloat64()*1000+2000, 0, 10000) * beta(r, 3, 2),
			HouseholdSpend:   clampF(r.NormFloat64()*2000+5000, 1000, 15000),
			HealthSpend:      clampF(r.NormFloat64()*1500+3000, 0, 15000) * beta(r, 3, 2),
			AvgOrderValue:    clampF(r.NormFloat64()*1200+2500, 200, 15000),
			CartAbandonRate:  beta(r, 3, 3),
			PropensityToBuy:  beta(r, 3, 2),
			PriceSensitivity: beta(r, 4, 3),
			EMIFlag:          r.Float64() < 0.25,

			ElectronicsInterest:   beta(r, 2, 3),
			AutoInterest:          beta(r, 2, 4),
			BeautyInterest:        beta(r, 3, 2),
			EntertainmentInterest: beta(r, 3, 2),
			NewsInterest:          beta(r, 2, 3),
			TechnologyInterest:    beta(r, 2, 3),
			FitnessInterest:       beta(r, 2, 3),
			HealthInterest:        beta(r, 3, 2),
			HealthProductInterest: beta(r, 3, 2),
			InvestmentInterest:    beta(r, 2, 3),

			PreferredMedia:    choose(r, mediaChannels, mediaWeights),
			StreamingServices: choose(r, streamers, streamerWeights),
			SocialMediaUsage:  beta(r, 3, 2),
			TechAdoptionScore: beta(r, 3, 2),
			DeviceCount:       1 + int(r.Int63n(3)),
			FBUsage:           float64(r.Int63n(2)),
			IGUsage:           float64(r.Int63n(2)),
			YTUsage:           float64(r.Int63n(2)),
			TTUsage:           float64(r.Int63n(2)),
			EmailOpenRate:     beta(r, 2, 4),
			EmailClickRate:    beta(r, 2, 6),

			TravelFrequency:  choose(r, travelFreqs, travelWeights),
			FitnessFrequency: choose(r, fitnessFreqs, fitnessWeights),

			LoyaltyTier:      choose(r, loyaltyTiers, loyaltyWeights),
			CouponUsageRate:  beta(r, 2, 3),
			ReferralTendency: beta(r, 2, 3),
			ChurnRisk:        beta(r, 2, 3),

			BrandAffinities: make(map[string]float64, len(brands)),

			Openness:                   clampF(r.NormFloat64()*0.2+0.5, 0, 1),
			Conscientiousness:          clampF(r.NormFloat64()*0.2+0.5, 0, 1),
			Extraversion:               clampF(r.NormFloat64()*0.2+0.5, 0, 1),
			Agreeableness:              clampF(r.NormFloat64()*0.2+0.5, 0, 1),
			Neuroticism:                clampF(r.NormFloat64()*0.2+0.5, 0, 1),
			EnvironmentalConsciousness: beta(r, 3, 2),
			SocialResponsibility:       beta(r, 2, 3),
			InnovationPreference:       beta(r, 2, 3),

			PrivacyPref: beta(r, 2, 3),
		}

		sum := 0.0
		for _, b := range brands {
			a := beta(r, 2, 3)
			rec.BrandAffinities[b] = a
			sum += a
		}
		rec.BrandAwareness = sum / float64(len(brands))

		records = append(records, rec)
	}

	return NewFromRecords(records)
}

// choose picks a weighted element. Weights need not sum to exactly one.
func choose(r *rand.Rand, items []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	roll := r.Float64() * total
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return items[i]
		}
	}
	return items[len(items)-1]
}

// beta draws Beta(a,b) for small integer shapes as a ratio of two gamma
// variates. Integer-shape gammas are sums of exponentials, so the draw is
// exact and fully determined by the seeded source.
func beta(r *rand.Rand, a, b int) float64 {
	ga := gammaInt(r, a)
	gb := gammaInt(r, b)
	if ga+gb == 0 {
		return 0.5
	}
	return ga / (ga + gb)
}

func gammaInt(r *rand.Rand, k int) float64 {
	prod := 1.0
	for i := 0; i < k; i++ {
		u := r.Float64()
		for u == 0 {
			u = r.Float64()
		}
		prod *= u
	}
	return -math.Log(prod)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
