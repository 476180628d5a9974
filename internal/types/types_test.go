package types

import "testing"

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"reach", IntentReach},
		{"engagement", IntentEngagement},
		{"conversion", IntentConversion},
		{"retention", IntentRetention},
		{"", IntentReach},
		{"awareness", IntentReach},
		{"REACH", IntentReach}, // case-sensitive on purpose; defaulting applies
	}
	for _, tt := range tests {
		if got := ParseIntent(tt.in); got != tt.want {
			t.Errorf("ParseIntent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAffinity_MissingIsZero(t *testing.T) {
	u := UserRecord{}
	if got := u.Affinity("apple"); got != 0 {
		t.Errorf("Affinity on nil map = %v, want 0", got)
	}
	u.BrandAffinities = map[string]float64{"apple": 0.8}
	if got := u.Affinity("apple"); got != 0.8 {
		t.Errorf("Affinity(apple) = %v, want 0.8", got)
	}
	if got := u.Affinity("samsung"); got != 0 {
		t.Errorf("Affinity(samsung) = %v, want 0", got)
	}
}

func TestCanonicalIncomeBand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10L-20L", "10L-20L"},
		{"₹10L-₹20L", "10L-20L"},
		{"Under ₹2L", "Under 2L"},
		{"₹50L+", "50L+"},
		{" ₹5L-₹10L ", "5L-10L"},
		{"Low", "Under 2L"},
		{"Mid", "5L-10L"},
		{"High", "20L-50L"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CanonicalIncomeBand(tt.in); got != tt.want {
			t.Errorf("CanonicalIncomeBand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFeatureVector_MissingIsZero(t *testing.T) {
	v := FeatureVector{}
	if got := v.Feature("spending_power"); got != 0 {
		t.Errorf("Feature on nil map = %v, want 0", got)
	}
	v.Values = map[string]float64{"spending_power": 0.42}
	if !v.Has("spending_power") {
		t.Error("Has(spending_power) = false, want true")
	}
	if v.Has("unknown_column") {
		t.Error("Has(unknown_column) = true, want false")
	}
}

func TestGoalAnalysis_Membership(t *testing.T) {
	g := GoalAnalysis{
		BehavioralFocus:  []string{"shopping", "technology"},
		CommercePatterns: []string{"bargain_hunters"},
	}
	if !g.HasFocus("shopping") || g.HasFocus("travel") {
		t.Error("HasFocus membership mismatch")
	}
	if !g.HasCommercePattern("bargain_hunters") || g.HasCommercePattern("premium_buyers") {
		t.Error("HasCommercePattern membership mismatch")
	}
}
