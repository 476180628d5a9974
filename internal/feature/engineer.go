// Package feature turns filtered user records into numeric feature vectors
// for clustering. Composite scores carry fixed, documented weights; raw spend
// fields are normalized against the subset maximum so subsets of different
// scales cluster comparably.
package feature

import (
	"personagen/internal/logging"
	"personagen/internal/population"
	"personagen/internal/types"
)

// =============================================================================
// MAPPING TABLES
// =============================================================================

var travelFreqScore = map[string]float64{
	"Never": 0, "Rarely": 1, "Occasionally": 2, "Frequently": 3,
}

var fitnessFreqScore = map[string]float64{
	"Never": 0, "Rarely": 1, "Weekly": 2, "Daily": 3,
}

var cityTierScore = map[string]float64{
	"Tier-1": 1.0, "Tier-2": 0.7, "Tier-3": 0.4, "Rural": 0.1,
}

var educationScore = map[string]float64{
	"Primary": 0.2, "Secondary": 0.4, "Graduate": 0.7, "Postgraduate": 0.9, "Doctorate": 1.0,
}

var loyaltyTierScore = map[string]float64{
	"None": 0.0, "Bronze": 0.25, "Silver": 0.5, "Gold": 0.75, "Platinum": 1.0,
}

var watchedBrands = []string{"bose", "apple", "samsung", "nike", "amazon"}

// =============================================================================
// ENGINEER
// =============================================================================

// Engineer computes feature vectors for a subset of the population.
type Engineer struct {
	store *population.Store
}

// New creates a feature engineer over the population store.
func New(store *population.Store) *Engineer {
	return &Engineer{store: store}
}

// Engineer builds one FeatureVector per subset row. Vector order matches the
// subset order; Row holds the position within the subset.
func (e *Engineer) Engineer(subset []int) []types.FeatureVector {
	maxGrocery, maxBeauty, maxOrder := e.subsetMaxima(subset)

	vectors := make([]types.FeatureVector, 0, len(subset))
	for row, idx := range subset {
		r := e.store.Record(idx)
		v := types.FeatureVector{Row: row, Values: make(map[string]float64, 24)}

		// Raw numeric inputs kept alongside composites.
		v.Values["age"] = float64(r.Age)
		v.Values["price_sensitivity"] = r.PriceSensitivity
		v.Values["privacy_pref"] = r.PrivacyPref
		v.Values["device_count"] = float64(r.DeviceCount)
		v.Values["brand_awareness"] = r.BrandAwareness
		v.Values["tech_adoption_score"] = r.TechAdoptionScore
		v.Values["propensity_to_buy"] = r.PropensityToBuy

		// Raw fields drawn in by intent-specific cluster feature sets.
		v.Values["electronics_interest"] = r.ElectronicsInterest
		v.Values["auto_interest"] = r.AutoInterest
		v.Values["beauty_interest"] = r.BeautyInterest
		v.Values["avg_order_value"] = r.AvgOrderValue
		v.Values["social_media_usage"] = r.SocialMediaUsage
		v.Values["entertainment_interest"] = r.EntertainmentInterest
		v.Values["fitness_interest"] = r.FitnessInterest
		v.Values["email_open_rate"] = r.EmailOpenRate
		v.Values["email_click_rate"] = r.EmailClickRate
		v.Values["investment_interest"] = r.InvestmentInterest
		v.Values["travel_frequency"] = travelFreqScore[r.TravelFrequency]
		v.Values["churn_risk"] = r.ChurnRisk

		digital := digitalEngagement(r)

		v.Values["spending_power"] = spendingPower(r, maxGrocery, maxBeauty, maxOrder)
		v.Values["digital_engagement"] = digital
		v.Values["lifestyle_complexity"] = lifestyleComplexity(r)

		v.Values["shopping_behavior_score"] = shoppingBehavior(r, maxGrocery, maxBeauty)
		v.Values["media_consumption_score"] = mediaConsumption(r)
		v.Values["health_consciousness_score"] = healthConsciousness(r)

		v.Values["innovation_profile"] = r.InnovationPreference*0.4 + r.TechAdoptionScore*0.3 + r.Openness*0.3
		v.Values["social_responsibility_profile"] = r.SocialResponsibility*0.4 + r.EnvironmentalConsciousness*0.3 + r.Agreeableness*0.3
		v.Values["achievement_orientation"] = r.Conscientiousness*0.4 + r.InvestmentInterest*0.3 + r.Extraversion*0.3

		v.Values["family_orientation"] = familyOrientation(r, maxGrocery)
		v.Values["urban_sophistication"] = cityTierScore[r.CityTier]*0.4 + educationScore[r.EducationLevel]*0.3 + r.TechAdoptionScore*0.3

		loyalty := loyaltyTierScore[r.LoyaltyTier]*0.5 + r.CouponUsageRate*0.25 + r.ReferralTendency*0.25
		v.Values["loyalty_score"] = loyalty
		v.Values["brand_affinity_score"] = brandAffinity(r)
		v.Values["retention_risk_index"] = r.ChurnRisk*0.6 + (1-loyalty)*0.4
		v.Values["conversion_opportunity_index"] = r.PropensityToBuy*0.6 + digital*0.4

		vectors = append(vectors, v)
	}

	if len(vectors) > 0 {
		logging.Features("Engineered %d vectors x %d features", len(vectors), len(vectors[0].Values))
	}
	return vectors
}

func (e *Engineer) subsetMaxima(subset []int) (grocery, beauty, order float64) {
	grocery, beauty, order = 1, 1, 1
	for _, idx := range subset {
		r := e.store.Record(idx)
		if r.GrocerySpend > grocery {
			grocery = r.GrocerySpend
		}
		if r.BeautySpend > beauty {
			beauty = r.BeautySpend
		}
		if r.AvgOrderValue > order {
			order = r.AvgOrderValue
		}
	}
	return grocery, beauty, order
}

func spendingPower(r *types.UserRecord, maxGrocery, maxBeauty, maxOrder float64) float64 {
	return r.GrocerySpend/maxGrocery*0.3 +
		r.BeautySpend/maxBeauty*0.2 +
		r.HouseholdSpend/15000*0.3 +
		r.HealthSpend/15000*0.2 +
		r.AvgOrderValue/maxOrder*0.2
}

func digitalEngagement(r *types.UserRecord) float64 {
	streaming := 0.0
	if r.StreamingServices != "" && r.StreamingServices != "None" {
		streaming = 1.0
	}
	platforms := (r.FBUsage + r.IGUsage + r.YTUsage + r.TTUsage) / 4
	return r.SocialMediaUsage*0.4 + r.TechAdoptionScore*0.3 + streaming*0.2 + platforms*0.1
}

func lifestyleComplexity(r *types.UserRecord) float64 {
	return travelFreqScore[r.TravelFrequency]*0.3 +
		fitnessFreqScore[r.FitnessFrequency]*0.3 +
		r.InvestmentInterest*0.4
}

func shoppingBehavior(r *types.UserRecord, maxGrocery, maxBeauty float64) float64 {
	return r.GrocerySpend/maxGrocery*0.3 +
		r.BeautySpend/maxBeauty*0.2 +
		r.ElectronicsInterest*0.3 +
		r.AutoInterest*0.2 +
		(1-r.CartAbandonRate)*0.2 +
		r.PropensityToBuy*0.4
}

func mediaConsumption(r *types.UserRecord) float64 {
	return r.SocialMediaUsage*0.3 +
		r.EntertainmentInterest*0.2 +
		r.NewsInterest*0.2 +
		r.TechnologyInterest*0.2 +
		r.EmailOpenRate*0.05 + r.EmailClickRate*0.05
}

func healthConsciousness(r *types.UserRecord) float64 {
	return r.FitnessInterest*0.4 + r.HealthProductInterest*0.3 + r.HealthInterest*0.3
}

func familyOrientation(r *types.UserRecord, maxGrocery float64) float64 {
	children := float64(r.NumChildren)
	if children > 4 {
		children = 4
	}
	married := 0.0
	if r.MaritalStatus == "Married" {
		married = 1.0
	}
	return children/4*0.4 + married*0.3 + r.GrocerySpend/maxGrocery*0.3
}

func brandAffinity(r *types.UserRecord) float64 {
	sum := 0.0
	for _, b := range watchedBrands {
		sum += r.Affinity(b) * 0.2
	}
	return sum
}
