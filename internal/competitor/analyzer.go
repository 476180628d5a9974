// Package competitor detects competitor brands mentioned in a marketing goal
// and produces positioning recommendations from a fixed profile table.
package competitor

import (
	"fmt"
	"strings"

	"personagen/internal/logging"
)

// Profile describes a known competitor brand.
type Profile struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Demographics  []string `json:"target_demographics"`
	PricePosition string   `json:"price_position"`
}

// Analysis is the result of scanning one goal for competitor mentions.
type Analysis struct {
	Detected        bool               `json:"competitors_detected"`
	Competitors     []string           `json:"competitors,omitempty"`
	Profiles        map[string]Profile `json:"analysis,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	Message         string             `json:"message,omitempty"`
}

// brandKeywords maps canonical brand names to trigger words, checked in this
// order so detection output is stable.
var brandKeywords = []struct {
	brand    string
	keywords []string
}{
	{"Sonos", []string{"sonos"}},
	{"Apple", []string{"apple", "homepod", "siri"}},
	{"JBL", []string{"jbl"}},
	{"Bose", []string{"bose"}},
	{"Amazon", []string{"amazon", "echo", "alexa"}},
	{"Google", []string{"google", "nest", "assistant"}},
	{"Samsung", []string{"samsung", "galaxy"}},
	{"Sony", []string{"sony"}},
	{"Bowers", []string{"bowers", "wilkins"}},
}

var profiles = map[string]Profile{
	"Sonos": {
		Strengths:     []string{"Premium sound quality", "Multi-room audio", "Design"},
		Weaknesses:    []string{"High price", "Limited smart features", "Setup complexity"},
		Demographics:  []string{"High-income", "Audiophiles", "Tech-savvy"},
		PricePosition: "Premium",
	},
	"Apple": {
		Strengths:     []string{"Ecosystem integration", "Siri", "Design", "Brand loyalty"},
		Weaknesses:    []string{"Limited compatibility", "High price", "Limited features"},
		Demographics:  []string{"Apple users", "Premium segment", "Tech enthusiasts"},
		PricePosition: "Premium",
	},
	"JBL": {
		Strengths:     []string{"Portable", "Affordable", "Good sound", "Brand recognition"},
		Weaknesses:    []string{"Limited smart features", "Build quality", "Ecosystem"},
		Demographics:  []string{"Budget-conscious", "Young adults", "Casual users"},
		PricePosition: "Budget",
	},
	"Bose": {
		Strengths:     []string{"Sound quality", "Noise cancellation", "Brand reputation"},
		Weaknesses:    []string{"Price", "Limited smart features", "Ecosystem"},
		Demographics:  []string{"Professionals", "Audiophiles", "Premium segment"},
		PricePosition: "Premium",
	},
}

// unknownProfile stands in for detected brands without a table entry.
var unknownProfile = Profile{
	Strengths:     []string{"Brand recognition"},
	Weaknesses:    []string{"Unknown"},
	Demographics:  []string{"General market"},
	PricePosition: "Unknown",
}

// Analyze scans a goal for competitor mentions.
func Analyze(goal string) Analysis {
	brands := detect(goal)
	if len(brands) == 0 {
		return Analysis{Detected: false, Message: "No competitors mentioned in goal"}
	}

	byBrand := make(map[string]Profile, len(brands))
	for _, b := range brands {
		p, ok := profiles[b]
		if !ok {
			p = unknownProfile
		}
		byBrand[b] = p
	}

	logging.Goal("Detected %d competitor brands: %v", len(brands), brands)

	return Analysis{
		Detected:        true,
		Competitors:     brands,
		Profiles:        byBrand,
		Recommendations: recommend(brands, byBrand),
	}
}

func detect(goal string) []string {
	lower := strings.ToLower(goal)
	var brands []string
	for _, b := range brandKeywords {
		for _, k := range b.keywords {
			if strings.Contains(lower, k) {
				brands = append(brands, b.brand)
				break
			}
		}
	}
	return brands
}

// recommend derives positioning advice from price position and known
// weaknesses, capped at three entries.
func recommend(brands []string, byBrand map[string]Profile) []string {
	var recs []string
	for _, b := range brands {
		p := byBrand[b]
		switch p.PricePosition {
		case "Premium":
			recs = append(recs, fmt.Sprintf("Focus on value proposition vs %s", b))
		case "Budget":
			recs = append(recs, fmt.Sprintf("Emphasize premium quality vs %s", b))
		}
		for _, w := range p.Weaknesses {
			if w == "Limited smart features" {
				recs = append(recs, fmt.Sprintf("Highlight smart features vs %s", b))
				break
			}
		}
	}
	if len(recs) > 3 {
		recs = recs[:3]
	}
	return recs
}
