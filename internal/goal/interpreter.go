// Package goal turns a free-text marketing goal into a structured
// GoalAnalysis. Interpretation is rule-based over keyword tables; when a
// collaborator is available a structured-output prompt runs first and the
// rules serve as the fallback.
package goal

import (
	"context"
	"strings"

	"personagen/internal/llm"
	"personagen/internal/logging"
	"personagen/internal/types"
)

// =============================================================================
// KEYWORD TABLES
// =============================================================================
// Tables are ordered slices, not maps: the first matching group wins, so
// iteration order is part of the contract.

type keywordGroup struct {
	name     string
	keywords []string
}

var ageGroups = []keywordGroup{
	{"gen_z", []string{"gen z", "gen-z", "genz", "18-25", "young", "teen", "college", "student"}},
	{"millennial", []string{"millennial", "millennials", "26-40", "young adult"}},
	{"gen_x", []string{"gen x", "gen-x", "41-55", "middle age"}},
	{"boomer", []string{"boomer", "baby boomer", "56+", "senior", "elderly"}},
}

var incomeLevels = []keywordGroup{
	{"high_income", []string{"high income", "affluent", "wealthy", "premium", "luxury"}},
	{"middle_income", []string{"middle income", "middle class", "moderate"}},
	{"low_income", []string{"low income", "budget", "affordable", "value"}},
}

var educationLevels = []keywordGroup{
	{"high_education", []string{"graduate", "postgraduate", "doctorate", "educated", "professional"}},
	{"medium_education", []string{"secondary", "high school", "diploma"}},
	{"basic_education", []string{"primary", "basic", "elementary"}},
}

var cityTiers = []keywordGroup{
	{"tier_1", []string{"tier-1", "tier 1", "metro"}},
	{"tier_2", []string{"tier-2", "tier 2"}},
	{"tier_3", []string{"tier-3", "tier 3"}},
	{"rural", []string{"rural", "village"}},
}

var behavioralTopics = []keywordGroup{
	{"shopping", []string{"shopping", "purchase", "buy", "retail", "ecommerce", "consumer"}},
	{"media", []string{"media", "entertainment", "content", "streaming", "social media"}},
	{"travel", []string{"travel", "tourism", "vacation", "trip", "journey"}},
	{"health", []string{"health", "fitness", "wellness", "medical", "pharma"}},
	{"finance", []string{"finance", "banking", "investment", "money", "wealth"}},
	{"technology", []string{"tech", "technology", "digital", "innovation", "gadgets"}},
	{"lifestyle", []string{"lifestyle", "luxury", "premium", "quality", "experience"}},
}

var psychographicProfiles = []keywordGroup{
	{"innovators", []string{"innovator", "early adopter", "tech-savvy", "cutting edge"}},
	{"conservatives", []string{"conservative", "traditional", "conventional", "stable"}},
	{"socially_conscious", []string{"social", "environmental", "sustainable", "ethical"}},
	{"achievers", []string{"achiever", "successful", "ambitious", "career-focused"}},
	{"experiencers", []string{"experiencer", "adventurous", "spontaneous", "fun-loving"}},
}

var commercePatterns = []keywordGroup{
	{"frequent_shoppers", []string{"frequent", "regular", "loyal", "repeat"}},
	{"bargain_hunters", []string{"bargain", "discount", "deal", "sale", "cheap", "price"}},
	{"premium_buyers", []string{"premium", "luxury", "high-end", "quality"}},
	{"online_shoppers", []string{"online", "digital", "ecommerce", "internet"}},
}

var mediaKeywords = []string{"social", "video", "streaming", "content", "entertainment", "news"}

var lifestyleKeywords = []string{"luxury", "premium", "budget", "family", "single", "professional"}

// intentGroups is checked in order; the first group with a hit decides.
var intentGroups = []struct {
	intent   types.Intent
	keywords []string
}{
	{types.IntentReach, []string{"reach", "awareness", "visibility"}},
	{types.IntentEngagement, []string{"engagement", "interaction", "social"}},
	{types.IntentConversion, []string{"conversion", "sales", "purchase"}},
	{types.IntentRetention, []string{"retention", "loyalty", "repeat"}},
}

// =============================================================================
// INTERPRETER
// =============================================================================

// Interpreter analyzes marketing goals.
type Interpreter struct {
	gen llm.Generator
}

// New creates a goal interpreter. gen may be llm.Disabled.
func New(gen llm.Generator) *Interpreter {
	if gen == nil {
		gen = llm.Disabled{}
	}
	return &Interpreter{gen: gen}
}

// Analyze interprets a goal. An empty or unintelligible goal still produces a
// valid analysis (intent reach, focus shopping); interpretation never fails.
func (in *Interpreter) Analyze(ctx context.Context, goal string) types.GoalAnalysis {
	lower := strings.ToLower(strings.TrimSpace(goal))

	if in.gen.Enabled() {
		if a, ok := in.analyzeWithLLM(ctx, goal); ok {
			logging.Goal("LLM analysis: intent=%s confidence=%.2f", a.Intent, a.Confidence)
			return a
		}
		logging.Goal("LLM analysis unavailable, using rules")
	}

	a := in.analyzeWithRules(lower)
	a.Goal = goal
	logging.Goal("Rule analysis: intent=%s confidence=%.2f demographics=%v focus=%v",
		a.Intent, a.Confidence, a.Demographics, a.BehavioralFocus)
	return a
}

func (in *Interpreter) analyzeWithRules(goal string) types.GoalAnalysis {
	a := types.GoalAnalysis{
		Demographics:   make(map[string]string),
		Psychographics: make(map[string]bool),
	}

	if g := firstMatch(goal, ageGroups); g != "" {
		a.Demographics["age_group"] = g
	}
	if g := firstMatch(goal, incomeLevels); g != "" {
		a.Demographics["income_level"] = g
	}
	if g := firstMatch(goal, educationLevels); g != "" {
		a.Demographics["education_level"] = g
	}
	if g := firstMatch(goal, cityTiers); g != "" {
		a.Demographics["city_tier"] = g
	}

	for _, t := range behavioralTopics {
		if anyKeyword(goal, t.keywords) {
			a.BehavioralFocus = append(a.BehavioralFocus, t.name)
		}
	}
	if len(a.BehavioralFocus) == 0 {
		a.BehavioralFocus = []string{"shopping"}
	}

	for _, p := range psychographicProfiles {
		if anyKeyword(goal, p.keywords) {
			a.Psychographics[p.name] = true
		}
	}

	for _, c := range commercePatterns {
		if anyKeyword(goal, c.keywords) {
			a.CommercePatterns = append(a.CommercePatterns, c.name)
		}
	}

	for _, k := range mediaKeywords {
		if strings.Contains(goal, k) {
			a.MediaPreferences = append(a.MediaPreferences, k)
		}
	}
	for _, k := range lifestyleKeywords {
		if strings.Contains(goal, k) {
			a.LifestyleSegments = append(a.LifestyleSegments, k)
		}
	}

	applyHints(goal, &a)

	a.Intent = determineIntent(goal)
	a.Confidence = confidence(&a)
	return a
}

// applyHints extracts numeric threshold hints from the goal text.
func applyHints(goal string, a *types.GoalAnalysis) {
	if strings.Contains(goal, "commut") {
		a.MinDeviceCount = 2
	}
	if strings.Contains(goal, "privacy") {
		a.MinPrivacyPref = 0.6
	}
	if strings.Contains(goal, "budget") || strings.Contains(goal, "price") {
		a.MinPriceSensitivity = 0.55
	}
}

func determineIntent(goal string) types.Intent {
	for _, g := range intentGroups {
		if anyKeyword(goal, g.keywords) {
			return g.intent
		}
	}
	return types.IntentReach
}

// confidence starts at 0.5 and rewards demographic hits, multiple behavioral
// focuses, and psychographic hits, capped at 1.0.
func confidence(a *types.GoalAnalysis) float64 {
	c := 0.5
	if len(a.Demographics) > 0 {
		c += 0.2
	}
	if len(a.BehavioralFocus) > 1 {
		c += 0.2
	}
	if len(a.Psychographics) > 0 {
		c += 0.1
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}

func firstMatch(goal string, groups []keywordGroup) string {
	for _, g := range groups {
		if anyKeyword(goal, g.keywords) {
			return g.name
		}
	}
	return ""
}

func anyKeyword(goal string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(goal, k) {
			return true
		}
	}
	return false
}
