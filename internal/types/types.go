// Package types defines the shared value types that flow through the persona
// generation pipeline. Everything here is a request-scoped value: the pipeline
// creates a GoalAnalysis per request, derives FeatureVectors and ClusterStats
// from the immutable population, and discards all of it when the request ends.
package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// INTENT
// =============================================================================

// Intent is the coarse marketing objective behind a goal. It parameterizes the
// clustering k range and the strategy templates.
type Intent string

const (
	IntentReach      Intent = "reach"
	IntentEngagement Intent = "engagement"
	IntentConversion Intent = "conversion"
	IntentRetention  Intent = "retention"
)

// ValidIntents lists every intent value, in resolution order.
var ValidIntents = []Intent{IntentReach, IntentEngagement, IntentConversion, IntentRetention}

// ParseIntent maps a string to an Intent, defaulting to reach for anything
// unrecognized so an LLM response can never produce an invalid intent.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentReach, IntentEngagement, IntentConversion, IntentRetention:
		return Intent(s)
	default:
		return IntentReach
	}
}

// =============================================================================
// POPULATION ROW
// =============================================================================

// UserRecord is one row of the fixed-schema synthetic population table.
// Records are loaded once at process start and never mutated afterwards.
type UserRecord struct {
	ID int64 `json:"id"`

	// Demographics
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	IncomeBand     string `json:"income_band"`      // Under 2L, 2L-5L, 5L-10L, 10L-20L, 20L-50L, 50L+
	EducationLevel string `json:"education_level"`  // Primary, Secondary, Graduate, Postgraduate, Doctorate
	Region         string `json:"region"`
	CityTier       string `json:"city_tier"` // Tier-1, Tier-2, Tier-3, Rural
	MaritalStatus  string `json:"marital_status"`
	NumChildren    int    `json:"num_children"`

	// Commerce
	GrocerySpend     float64 `json:"grocery_spend"`
	GroceryFrequency string  `json:"grocery_frequency"` // Daily, Weekly, Monthly, Rarely
	BeautySpend      float64 `json:"beauty_spend"`
	HouseholdSpend   float64 `json:"household_spend"`
	HealthSpend      float64 `json:"health_spend"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	CartAbandonRate  float64 `json:"cart_abandon_rate"`
	PropensityToBuy  float64 `json:"propensity_to_buy"`
	PriceSensitivity float64 `json:"price_sensitivity"`
	EMIFlag          bool    `json:"emi_flag"`

	// Interests (0-1)
	ElectronicsInterest   float64 `json:"electronics_interest"`
	AutoInterest          float64 `json:"auto_interest"`
	BeautyInterest        float64 `json:"beauty_interest"`
	EntertainmentInterest float64 `json:"entertainment_interest"`
	NewsInterest          float64 `json:"news_interest"`
	TechnologyInterest    float64 `json:"technology_interest"`
	FitnessInterest       float64 `json:"fitness_interest"`
	HealthInterest        float64 `json:"health_interest"`
	HealthProductInterest float64 `json:"health_product_interest"`
	InvestmentInterest    float64 `json:"investment_interest"`

	// Media and devices
	PreferredMedia    string  `json:"preferred_media"` // YouTube, Instagram, TV, Twitter, Reddit
	StreamingServices string  `json:"streaming_services"`
	SocialMediaUsage  float64 `json:"social_media_usage"`
	TechAdoptionScore float64 `json:"tech_adoption_score"`
	DeviceCount       int     `json:"device_count"`
	FBUsage           float64 `json:"fb_usage"`
	IGUsage           float64 `json:"ig_usage"`
	YTUsage           float64 `json:"yt_usage"`
	TTUsage           float64 `json:"tt_usage"`
	EmailOpenRate     float64 `json:"email_open_rate"`
	EmailClickRate    float64 `json:"email_click_rate"`

	// Lifestyle
	TravelFrequency  string `json:"travel_frequency"`  // Never, Rarely, Occasionally, Frequently
	FitnessFrequency string `json:"fitness_frequency"` // Never, Rarely, Weekly, Daily

	// Loyalty and retention
	LoyaltyTier     string  `json:"loyalty_tier"` // None, Bronze, Silver, Gold, Platinum
	CouponUsageRate float64 `json:"coupon_usage_rate"`
	ReferralTendency float64 `json:"referral_tendency"`
	ChurnRisk       float64 `json:"churn_risk"`

	// Brand signals
	BrandAwareness  float64            `json:"brand_awareness"`
	BrandAffinities map[string]float64 `json:"brand_affinities,omitempty"`

	// Psychographics (0-1)
	Openness                   float64 `json:"openness"`
	Conscientiousness          float64 `json:"conscientiousness"`
	Extraversion               float64 `json:"extraversion"`
	Agreeableness              float64 `json:"agreeableness"`
	Neuroticism                float64 `json:"neuroticism"`
	EnvironmentalConsciousness float64 `json:"environmental_consciousness"`
	SocialResponsibility       float64 `json:"social_responsibility"`
	InnovationPreference       float64 `json:"innovation_preference"`

	PrivacyPref float64 `json:"privacy_pref"`
}

// Affinity returns the user's affinity for a brand, zero when unknown.
// Sparse schemas are expected; missing optional fields read as zero.
func (u *UserRecord) Affinity(brand string) float64 {
	if u.BrandAffinities == nil {
		return 0
	}
	return u.BrandAffinities[brand]
}

// CanonicalIncomeBand maps the band spellings found across dataset versions
// onto one scheme: currency glyphs are stripped ("₹10L-₹20L" -> "10L-20L")
// and the coarse Low/Mid/High labels of older generators land on a
// representative band.
func CanonicalIncomeBand(band string) string {
	band = strings.TrimSpace(strings.ReplaceAll(band, "₹", ""))
	switch strings.ToLower(band) {
	case "low":
		return "Under 2L"
	case "mid", "middle":
		return "5L-10L"
	case "high":
		return "20L-50L"
	}
	return band
}

// =============================================================================
// GOAL ANALYSIS
// =============================================================================

// GoalAnalysis is the structured interpretation of one free-text marketing
// goal. It is ephemeral: built once per request and handed read-only to every
// downstream stage.
type GoalAnalysis struct {
	Goal string `json:"goal"`

	// Demographics maps coarse category -> matched value, e.g.
	// age_group -> gen_z, income_level -> high_income, city_tier -> tier_2.
	Demographics map[string]string `json:"demographics"`

	BehavioralFocus   []string        `json:"behavioral_focus"`
	Psychographics    map[string]bool `json:"psychographics"`
	CommercePatterns  []string        `json:"commerce_patterns"`
	MediaPreferences  []string        `json:"media_preferences"`
	LifestyleSegments []string        `json:"lifestyle_segments"`

	// Threshold hints parsed directly from the goal text (multi-device
	// commuters, privacy-minded, price-worried audiences).
	MinDeviceCount      int     `json:"min_device_count,omitempty"`
	MinPrivacyPref      float64 `json:"min_privacy_pref,omitempty"`
	MinPriceSensitivity float64 `json:"min_price_sensitivity,omitempty"`

	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// HasFocus reports whether the analysis carries the given behavioral focus.
func (g *GoalAnalysis) HasFocus(topic string) bool {
	for _, f := range g.BehavioralFocus {
		if f == topic {
			return true
		}
	}
	return false
}

// HasCommercePattern reports whether the analysis carries the given pattern.
func (g *GoalAnalysis) HasCommercePattern(p string) bool {
	for _, c := range g.CommercePatterns {
		if c == p {
			return true
		}
	}
	return false
}

// =============================================================================
// ENGINEERED FEATURES
// =============================================================================

// FeatureVector is one user's numeric row after feature engineering: the raw
// numeric fields plus the composite scores, keyed by feature name.
type FeatureVector struct {
	Row    int                `json:"row"` // index into the filtered subset
	Values map[string]float64 `json:"values"`
}

// Feature returns a named feature value, zero when the column is absent.
func (v *FeatureVector) Feature(name string) float64 {
	if v.Values == nil {
		return 0
	}
	return v.Values[name]
}

// Has reports whether the vector carries the named feature.
func (v *FeatureVector) Has(name string) bool {
	_, ok := v.Values[name]
	return ok
}

// =============================================================================
// CLUSTERS
// =============================================================================

// ClusterStats summarizes one cluster of the filtered subset. It is computed
// once after clustering and never mutated afterwards.
type ClusterStats struct {
	ClusterID int     `json:"cluster_id"`
	Size      int     `json:"size"`
	SizePct   float64 `json:"size_pct"` // percent of the filtered subset, 0-100

	AvgAge            float64 `json:"avg_age"`
	AgeRange          string  `json:"age_range"` // p10-p90 of member ages
	DominantGender    string  `json:"dominant_gender"`
	DominantIncome    string  `json:"dominant_income"`
	DominantEducation string  `json:"dominant_education"`
	DominantCityTier  string  `json:"dominant_city_tier"`
	DominantMedia     string  `json:"dominant_media"`

	AvgSpendingPower       float64 `json:"avg_spending_power"`
	AvgDigitalEngagement   float64 `json:"avg_digital_engagement"`
	AvgLifestyleComplexity float64 `json:"avg_lifestyle_complexity"`
	AvgPriceSensitivity    float64 `json:"avg_price_sensitivity"`
	AvgPrivacyPref         float64 `json:"avg_privacy_pref"`
	AvgDeviceCount         float64 `json:"avg_device_count"`
	AvgBrandAwareness      float64 `json:"avg_brand_awareness"`
	AvgTechAdoption        float64 `json:"avg_tech_adoption"`

	// FeatureMeans holds the mean of every clustered feature column.
	FeatureMeans map[string]float64 `json:"feature_means,omitempty"`
}

// =============================================================================
// PERSONA
// =============================================================================

// DemographicSummary is the human-readable demographic slice of a persona.
type DemographicSummary struct {
	AvgAge    float64 `json:"avg_age"`
	AgeRange  string  `json:"age_range"`
	Gender    string  `json:"gender"`
	Income    string  `json:"income"`
	Education string  `json:"education"`
	Geo       string  `json:"geo"`
}

// BehavioralScores carries the headline composite scores of a persona.
type BehavioralScores struct {
	SpendingPower       float64 `json:"spending_power"`
	DigitalEngagement   float64 `json:"digital_engagement"`
	LifestyleComplexity float64 `json:"lifestyle_complexity"`
}

// Persona is a labeled, described cluster ready for downstream targeting.
// Personas are created after clustering and discarded at end of request.
type Persona struct {
	ID        string `json:"id"` // e.g. dyn_2
	ClusterID int    `json:"cluster_id"`
	Label     string `json:"label"`

	SizePct   float64 `json:"size_pct"`
	SizeUsers int     `json:"size_users"`

	Demographics DemographicSummary `json:"demographics"`
	Scores       BehavioralScores   `json:"behavioral_scores"`

	CareAbout []string `json:"care_about"`
	Barriers  []string `json:"barriers"`

	AdoptionLikelihood string  `json:"adoption_likelihood"`
	TechAdoptionScore  float64 `json:"tech_adoption_score"`
}

// =============================================================================
// STRATEGY
// =============================================================================

// Strategy is the intent-specific recommendation bundle for one persona.
type Strategy struct {
	ClusterID     int      `json:"cluster_id"`
	AudienceLabel string   `json:"audience_label"`
	Objective     string   `json:"objective"`
	Tactics       []string `json:"tactics"`
	FocusAreas    []string `json:"focus_areas"`
	Budget        string   `json:"budget_recommendation"`
	Channels      []string `json:"channel_recommendation"`
	Timeline      string   `json:"timeline"`
	Metrics       []string `json:"success_metrics"`

	// LLMSuggestions is advisory free text appended when the collaborator is
	// enabled; its absence never changes the required fields.
	LLMSuggestions string `json:"llm_suggestions,omitempty"`
}

// =============================================================================
// PIPELINE RESULT
// =============================================================================

// Meta carries per-run diagnostics alongside the personas.
type Meta struct {
	SubsetSize     int      `json:"subset_size"`
	ChosenK        int      `json:"chosen_k"`
	CohesionScore  float64  `json:"cohesion_score"`
	FiltersApplied []string `json:"filters_applied"`
	Warning        string   `json:"warning,omitempty"`
}

// Result is the output of one pipeline run.
type Result struct {
	Goal       string       `json:"goal"`
	RequestID  string       `json:"request_id"`
	Analysis   GoalAnalysis `json:"goal_analysis"`
	Personas   []Persona    `json:"personas"`
	Strategies []Strategy   `json:"strategies"`
	Meta       Meta         `json:"meta"`
}

// SummarizationError marks a single cluster whose stats could not be turned
// into a persona. The labeler substitutes a fallback persona for the cluster
// instead of dropping it.
type SummarizationError struct {
	ClusterID int
	Reason    string
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("cluster %d summarization failed: %s", e.ClusterID, e.Reason)
}
