package goal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"personagen/internal/logging"
	"personagen/internal/types"
)

// llmAnalysis mirrors the JSON contract in the analysis prompt.
type llmAnalysis struct {
	Demographics      map[string]string `json:"demographics"`
	BehavioralFocus   []string          `json:"behavioral_focus"`
	Psychographics    map[string]bool   `json:"psychographics"`
	CommercePatterns  []string          `json:"commerce_patterns"`
	MediaPreferences  []string          `json:"media_preferences"`
	LifestyleSegments []string          `json:"lifestyle_segments"`
	Intent            string            `json:"intent"`
	Confidence        float64           `json:"confidence"`
}

const analysisPrompt = `You are an expert marketing analyst. Analyze this goal and extract structured information in JSON format.

Goal: %q

Extract the following information:
1. Demographics: age_group (gen_z/millennial/gen_x/boomer), income_level (low_income/middle_income/high_income), education_level (basic_education/medium_education/high_education), city_tier (tier_1/tier_2/tier_3/rural)
2. behavioral_focus: shopping, media, travel, health, finance, technology, lifestyle
3. psychographics: innovators, conservatives, socially_conscious, achievers, experiencers
4. commerce_patterns: frequent_shoppers, bargain_hunters, premium_buyers, online_shoppers
5. media_preferences: social, video, streaming, content, entertainment, news
6. lifestyle_segments: luxury, premium, budget, family, single, professional
7. intent: reach, engagement, conversion, retention
8. confidence: 0.0 to 1.0 based on how clear the goal is

Return ONLY valid JSON in this exact format:
{
    "demographics": {"age_group": "millennial", "income_level": "high_income"},
    "behavioral_focus": ["shopping", "technology"],
    "psychographics": {"innovators": true},
    "commerce_patterns": ["premium_buyers"],
    "media_preferences": ["social"],
    "lifestyle_segments": ["luxury"],
    "intent": "conversion",
    "confidence": 0.85
}

Only include fields that are clearly present in the goal.`

// analyzeWithLLM asks the collaborator for a structured analysis. Any failure
// returns ok=false and the caller falls back to rules.
func (in *Interpreter) analyzeWithLLM(ctx context.Context, goal string) (types.GoalAnalysis, bool) {
	resp, err := in.gen.Generate(ctx, fmt.Sprintf(analysisPrompt, goal))
	if err != nil {
		logging.LLMWarn("Goal analysis generation failed: %v", err)
		return types.GoalAnalysis{}, false
	}

	var parsed llmAnalysis
	if err := json.Unmarshal([]byte(stripFences(resp)), &parsed); err != nil {
		logging.LLMWarn("Goal analysis parse failed: %v", err)
		return types.GoalAnalysis{}, false
	}

	a := types.GoalAnalysis{
		Goal:              goal,
		Demographics:      parsed.Demographics,
		BehavioralFocus:   parsed.BehavioralFocus,
		Psychographics:    parsed.Psychographics,
		CommercePatterns:  parsed.CommercePatterns,
		MediaPreferences:  parsed.MediaPreferences,
		LifestyleSegments: parsed.LifestyleSegments,
		Intent:            types.ParseIntent(parsed.Intent),
		Confidence:        parsed.Confidence,
	}
	if a.Demographics == nil {
		a.Demographics = make(map[string]string)
	}
	if a.Psychographics == nil {
		a.Psychographics = make(map[string]bool)
	}
	if len(a.BehavioralFocus) == 0 {
		a.BehavioralFocus = []string{"shopping"}
	}
	if a.Confidence <= 0 || a.Confidence > 1 {
		a.Confidence = 0.5
	}

	// Numeric hints stay rule-based regardless of which path produced the
	// categorical analysis.
	applyHints(strings.ToLower(goal), &a)
	return a, true
}

// stripFences removes a markdown code fence wrapper if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
