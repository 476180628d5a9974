// Package persona turns cluster statistics into labeled personas. Labeling
// never fails: a cluster whose stats cannot be summarized gets a fallback
// persona with an explicit error marker instead of being dropped.
package persona

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"personagen/internal/llm"
	"personagen/internal/logging"
	"personagen/internal/types"
)

// =============================================================================
// LABEL TABLES
// =============================================================================
// One table keyed by (intent, threshold bucket) instead of per-intent label
// functions; additions are rows, not code paths.

type labelBucket struct {
	match      func(*types.ClusterStats) bool
	descriptor string
}

var intensityBuckets = map[types.Intent][]labelBucket{
	types.IntentConversion: {
		{func(s *types.ClusterStats) bool { return s.AvgSpendingPower > 0.7 }, "High-Value Shoppers"},
		{func(s *types.ClusterStats) bool { return s.AvgDigitalEngagement > 0.7 }, "Digital-First Buyers"},
		{nil, "Traditional Consumers"},
	},
	types.IntentEngagement: {
		{func(s *types.ClusterStats) bool { return s.AvgDigitalEngagement > 0.7 }, "Highly Engaged Users"},
		{func(s *types.ClusterStats) bool { return s.AvgLifestyleComplexity > 0.7 }, "Active Lifestyle Users"},
		{nil, "Moderate Engagers"},
	},
	types.IntentRetention: {
		{func(s *types.ClusterStats) bool { return s.AvgLifestyleComplexity > 0.7 }, "Complex Lifestyle Users"},
		{func(s *types.ClusterStats) bool { return s.AvgSpendingPower > 0.7 }, "Premium Customers"},
		{nil, "Standard Users"},
	},
	types.IntentReach: {
		{func(s *types.ClusterStats) bool { return s.AvgAge < 30 }, "Young Audience"},
		{func(s *types.ClusterStats) bool { return s.AvgAge > 50 }, "Mature Audience"},
		{nil, "Mid-Age Audience"},
	},
}

var priceBuckets = []labelBucket{
	{func(s *types.ClusterStats) bool { return s.AvgPriceSensitivity > 0.55 }, "Price-Conscious"},
	{func(s *types.ClusterStats) bool { return s.AvgPriceSensitivity < 0.45 }, "Price-Insensitive"},
	{nil, "Price-Neutral"},
}

const labelSeparator = " • "

// maxLLMLabel bounds collaborator-rewritten labels.
const maxLLMLabel = 120

// =============================================================================
// LABELER
// =============================================================================

// Labeler builds personas from cluster statistics.
type Labeler struct {
	gen           llm.Generator
	minClusterPct float64 // drop threshold, fraction of subset
	maxPersonas   int
}

// New creates a labeler. gen may be llm.Disabled.
func New(gen llm.Generator, minClusterPct float64, maxPersonas int) *Labeler {
	if gen == nil {
		gen = llm.Disabled{}
	}
	return &Labeler{gen: gen, minClusterPct: minClusterPct, maxPersonas: maxPersonas}
}

// Label converts cluster stats to personas: tiny clusters are dropped first,
// each survivor is labeled behind a failure boundary, and the result is
// sorted by descending size and truncated.
func (l *Labeler) Label(ctx context.Context, stats []types.ClusterStats, a *types.GoalAnalysis) []types.Persona {
	personas := make([]types.Persona, 0, len(stats))

	for i := range stats {
		s := &stats[i]
		if s.SizePct < l.minClusterPct*100 {
			logging.PersonaWarn("Dropping cluster %d: %.1f%% below %.1f%% minimum",
				s.ClusterID, s.SizePct, l.minClusterPct*100)
			continue
		}

		p, err := l.summarize(s, a)
		if err != nil {
			logging.PersonaWarn("Cluster %d: %v, substituting fallback persona", s.ClusterID, err)
			p = fallbackPersona(s, err)
		} else if l.gen.Enabled() {
			if label, ok := l.rewriteLabel(ctx, s, a); ok {
				p.Label = label
			}
		}
		personas = append(personas, p)
	}

	sort.SliceStable(personas, func(i, j int) bool {
		return personas[i].SizePct > personas[j].SizePct
	})
	if len(personas) > l.maxPersonas {
		personas = personas[:l.maxPersonas]
	}

	logging.Persona("Labeled %d personas from %d clusters", len(personas), len(stats))
	return personas
}

// summarize builds one persona. It returns a SummarizationError on broken
// stats instead of letting bad values flow into output.
func (l *Labeler) summarize(s *types.ClusterStats, a *types.GoalAnalysis) (types.Persona, error) {
	if s.Size <= 0 {
		return types.Persona{}, &types.SummarizationError{ClusterID: s.ClusterID, Reason: "empty cluster"}
	}
	if math.IsNaN(s.AvgAge) || math.IsNaN(s.AvgSpendingPower) {
		return types.Persona{}, &types.SummarizationError{ClusterID: s.ClusterID, Reason: "non-numeric statistics"}
	}

	care, barriers := careAndBarriers(s)

	return types.Persona{
		ID:        fmt.Sprintf("dyn_%d", s.ClusterID),
		ClusterID: s.ClusterID,
		Label:     deterministicLabel(s, a.Intent),
		SizePct:   round1(s.SizePct),
		SizeUsers: s.Size,
		Demographics: types.DemographicSummary{
			AvgAge:    round1(s.AvgAge),
			AgeRange:  s.AgeRange,
			Gender:    s.DominantGender,
			Income:    s.DominantIncome,
			Education: s.DominantEducation,
			Geo:       s.DominantCityTier,
		},
		Scores: types.BehavioralScores{
			SpendingPower:       round2(s.AvgSpendingPower),
			DigitalEngagement:   round2(s.AvgDigitalEngagement),
			LifestyleComplexity: round2(s.AvgLifestyleComplexity),
		},
		CareAbout:          care,
		Barriers:           barriers,
		AdoptionLikelihood: adoptionLikelihood(s),
		TechAdoptionScore:  round2(techAdoptionScore(s)),
	}, nil
}

// deterministicLabel joins intensity, geography, and price descriptors.
// Identical stats always yield an identical label.
func deterministicLabel(s *types.ClusterStats, intent types.Intent) string {
	return strings.Join([]string{
		bucketOf(intensityBuckets[intent], s),
		s.DominantCityTier,
		bucketOf(priceBuckets, s),
	}, labelSeparator)
}

func bucketOf(buckets []labelBucket, s *types.ClusterStats) string {
	for _, b := range buckets {
		if b.match == nil || b.match(s) {
			return b.descriptor
		}
	}
	return ""
}

// careAndBarriers applies the fixed threshold rules. Each rule contributes at
// most one tag; rules run in priority order and the lists are capped at two
// care-about entries and one barrier.
func careAndBarriers(s *types.ClusterStats) (care, barriers []string) {
	if s.AvgPriceSensitivity > 0.55 {
		care = append(care, "discounts")
		barriers = append(barriers, "price premium")
	}
	if s.AvgPrivacyPref > 0.55 {
		care = append(care, "local control")
		barriers = append(barriers, "always-on mics")
	}
	if s.AvgBrandAwareness > 0.65 {
		care = append(care, "brand reputation")
	}
	if s.AvgDeviceCount >= 3 {
		care = append(care, "seamless casting")
	}
	if s.DominantMedia != "" && s.DominantMedia != "Unknown" {
		care = append(care, "content on "+s.DominantMedia)
	}

	if len(care) > 2 {
		care = care[:2]
	}
	if len(barriers) > 1 {
		barriers = barriers[:1]
	}
	return care, barriers
}

// fallbackPersona carries the raw stats plus an explicit error marker so the
// cluster stays visible in output.
func fallbackPersona(s *types.ClusterStats, err error) types.Persona {
	return types.Persona{
		ID:        fmt.Sprintf("dyn_%d", s.ClusterID),
		ClusterID: s.ClusterID,
		Label:     fmt.Sprintf("Unclassified Segment %d", s.ClusterID),
		SizePct:   round1(s.SizePct),
		SizeUsers: s.Size,
		Demographics: types.DemographicSummary{
			AvgAge:   round1(s.AvgAge),
			AgeRange: s.AgeRange,
			Gender:   s.DominantGender,
			Income:   s.DominantIncome,
			Geo:      s.DominantCityTier,
		},
		Barriers:           []string{"summarization_error: " + err.Error()},
		AdoptionLikelihood: "Unknown",
	}
}

// adoptionLikelihood scores the segment additively: age window, spending
// power, digital engagement, and lifestyle complexity each contribute points.
func adoptionLikelihood(s *types.ClusterStats) string {
	score := 0

	switch age := s.AvgAge; {
	case age >= 22 && age <= 35:
		score += 3
	case age >= 36 && age <= 45:
		score += 2
	case age >= 46 && age <= 55:
		score += 1
	}

	switch {
	case s.AvgSpendingPower > 0.8:
		score += 2
	case s.AvgSpendingPower > 0.6:
		score++
	}

	switch {
	case s.AvgDigitalEngagement > 0.7:
		score += 2
	case s.AvgDigitalEngagement > 0.5:
		score++
	}

	if s.AvgLifestyleComplexity > 0.7 {
		score++
	}

	switch {
	case score >= 6:
		return "High"
	case score >= 4:
		return "Medium-high"
	case score >= 2:
		return "Medium"
	default:
		return "Low"
	}
}

// techAdoptionScore is digital engagement adjusted for segment age, clamped
// to [0,1].
func techAdoptionScore(s *types.ClusterStats) float64 {
	score := s.AvgDigitalEngagement
	switch {
	case s.AvgAge < 30:
		score += 0.2
	case s.AvgAge < 40:
		score += 0.1
	case s.AvgAge > 50:
		score -= 0.1
	}
	return math.Min(1.0, math.Max(0.0, score))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
