package population

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"personagen/internal/logging"
	"personagen/internal/types"
)

// =============================================================================
// SQLITE LOADER
// =============================================================================
// The users table is produced by an external dataset script and its column set
// drifts between dataset versions, so the loader maps columns by name and
// leaves anything missing at its zero value.

// Open loads up to limit records from the users table of a SQLite database.
// limit <= 0 loads everything.
func Open(path, table string, limit int) (*Store, error) {
	if table == "" {
		table = "users"
	}

	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open population database: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT * FROM %s", table)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query population: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var records []types.UserRecord
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := types.UserRecord{}
		for i, col := range cols {
			assign(&rec, col, raw[i])
		}
		normalize(&rec)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("population scan failed: %w", err)
	}

	logging.Store("Loaded %d records from %s (%d columns)", len(records), path, len(cols))

	store := NewFromRecords(records)
	if err := store.Validate(); err != nil {
		return nil, err
	}
	return store, nil
}

// assign maps one column value into the record. Unknown columns are ignored.
func assign(r *types.UserRecord, col string, v any) {
	if v == nil {
		return
	}

	// Brand affinity columns follow the brand_<name>_affinity convention.
	if strings.HasPrefix(col, "brand_") && strings.HasSuffix(col, "_affinity") {
		brand := strings.TrimSuffix(strings.TrimPrefix(col, "brand_"), "_affinity")
		if r.BrandAffinities == nil {
			r.BrandAffinities = make(map[string]float64)
		}
		r.BrandAffinities[brand] = toFloat(v)
		return
	}

	switch col {
	case "user_id", "id":
		r.ID = toInt(v)
	case "age":
		r.Age = int(toInt(v))
	case "gender":
		r.Gender = toString(v)
	case "annual_hhi", "income_band":
		r.IncomeBand = toString(v)
	case "education_level":
		r.EducationLevel = toString(v)
	case "region":
		r.Region = toString(v)
	case "city_tier":
		r.CityTier = toString(v)
	case "marital_status":
		r.MaritalStatus = toString(v)
	case "num_children":
		r.NumChildren = int(toInt(v))

	case "grocery_spend":
		r.GrocerySpend = toFloat(v)
	case "grocery_frequency":
		r.GroceryFrequency = toString(v)
	case "beauty_spend":
		r.BeautySpend = toFloat(v)
	case "household_spend":
		r.HouseholdSpend = toFloat(v)
	case "health_spend":
		r.HealthSpend = toFloat(v)
	case "avg_order_value":
		r.AvgOrderValue = toFloat(v)
	case "cart_abandon_rate":
		r.CartAbandonRate = toFloat(v)
	case "propensity_to_buy":
		r.PropensityToBuy = toFloat(v)
	case "price_sensitivity":
		r.PriceSensitivity = toFloat(v)
	case "emi_preference", "emi_flag":
		r.EMIFlag = toInt(v) != 0

	case "electronics_interest":
		r.ElectronicsInterest = toFloat(v)
	case "auto_interest":
		r.AutoInterest = toFloat(v)
	case "beauty_interest":
		r.BeautyInterest = toFloat(v)
	case "entertainment_interest":
		r.EntertainmentInterest = toFloat(v)
	case "news_interest":
		r.NewsInterest = toFloat(v)
	case "technology_interest":
		r.TechnologyInterest = toFloat(v)
	case "fitness_interest":
		r.FitnessInterest = toFloat(v)
	case "health_interest":
		r.HealthInterest = toFloat(v)
	case "health_product_interest":
		r.HealthProductInterest = toFloat(v)
	case "investment_interest":
		r.InvestmentInterest = toFloat(v)

	case "preferred_media":
		r.PreferredMedia = toString(v)
	case "streaming_services":
		r.StreamingServices = toString(v)
	case "social_media_usage":
		r.SocialMediaUsage = toFloat(v)
	case "tech_adoption_score":
		r.TechAdoptionScore = toFloat(v)
	case "device_count":
		r.DeviceCount = int(toInt(v))
	case "smartphone_ownership", "laptop_ownership", "tablet_ownership":
		r.DeviceCount += int(toInt(v))
	case "fb_usage":
		r.FBUsage = toFloat(v)
	case "ig_usage":
		r.IGUsage = toFloat(v)
	case "yt_usage":
		r.YTUsage = toFloat(v)
	case "tt_usage":
		r.TTUsage = toFloat(v)
	case "email_open_rate":
		r.EmailOpenRate = toFloat(v)
	case "email_click_rate":
		r.EmailClickRate = toFloat(v)

	case "travel_frequency":
		r.TravelFrequency = toString(v)
	case "fitness_frequency":
		r.FitnessFrequency = toString(v)

	case "loyalty_tier":
		r.LoyaltyTier = toString(v)
	case "coupon_usage_rate":
		r.CouponUsageRate = toFloat(v)
	case "referral_tendency":
		r.ReferralTendency = toFloat(v)
	case "churn_risk":
		r.ChurnRisk = toFloat(v)

	case "brand_awareness":
		r.BrandAwareness = toFloat(v)

	case "openness":
		r.Openness = toFloat(v)
	case "conscientiousness":
		r.Conscientiousness = toFloat(v)
	case "extraversion":
		r.Extraversion = toFloat(v)
	case "agreeableness":
		r.Agreeableness = toFloat(v)
	case "neuroticism":
		r.Neuroticism = toFloat(v)
	case "environmental_consciousness":
		r.EnvironmentalConsciousness = toFloat(v)
	case "social_responsibility":
		r.SocialResponsibility = toFloat(v)
	case "innovation_preference":
		r.InnovationPreference = toFloat(v)

	case "privacy_pref":
		r.PrivacyPref = toFloat(v)
	}
}

// normalize fills derivable fields that older dataset versions leave out and
// canonicalizes categorical spellings that vary across dataset versions.
func normalize(r *types.UserRecord) {
	r.IncomeBand = types.CanonicalIncomeBand(r.IncomeBand)
	if r.PreferredMedia == "" {
		r.PreferredMedia = dominantPlatform(r)
	}
	if r.PriceSensitivity == 0 && (r.CouponUsageRate > 0 || r.CartAbandonRate > 0) {
		r.PriceSensitivity = clamp01(0.6*r.CouponUsageRate + 0.4*r.CartAbandonRate)
	}
	if r.BrandAwareness == 0 && len(r.BrandAffinities) > 0 {
		sum := 0.0
		for _, a := range r.BrandAffinities {
			sum += a
		}
		r.BrandAwareness = clamp01(sum / float64(len(r.BrandAffinities)))
	}
}

func dominantPlatform(r *types.UserRecord) string {
	best, bestScore := "TV", 0.0
	for _, c := range []struct {
		name  string
		score float64
	}{
		{"YouTube", r.YTUsage},
		{"Instagram", r.IGUsage},
		{"Facebook", r.FBUsage},
		{"TikTok", r.TTUsage},
	} {
		if c.score > bestScore {
			best, bestScore = c.name, c.score
		}
	}
	return best
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case []byte:
		f, _ := strconv.ParseFloat(string(x), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toInt(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	case []byte:
		n, _ := strconv.ParseInt(string(x), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
