// Package strategy maps labeled personas to outreach recommendations. The
// mapping is table-driven by intent; threshold rules pick budget and channel
// tiers from cluster statistics.
package strategy

import (
	"context"
	"fmt"

	"personagen/internal/llm"
	"personagen/internal/logging"
	"personagen/internal/types"
)

// =============================================================================
// INTENT TEMPLATES
// =============================================================================

type template struct {
	objective  string
	tactics    []string
	focusAreas []string
	timeline   string
	metrics    []string
	llmPrompt  string // %s receives the audience label
}

var templates = map[types.Intent]template{
	types.IntentConversion: {
		objective: "Drive conversions and sales",
		tactics: []string{
			"Retargeting campaigns for high-intent users",
			"Dynamic product ads based on behavior",
			"Personalized messaging and offers",
			"Conversion-optimized landing pages",
			"Cross-selling and upselling strategies",
		},
		focusAreas: []string{"Purchase funnel optimization", "Cart abandonment recovery", "Product recommendations"},
		timeline:   "2-4 weeks (short-term)",
		metrics:    []string{"Conversions", "ROAS", "CPA", "Revenue"},
		llmPrompt:  "Suggest 3 channel-specific tactics for the audience '%s' focusing on conversion.",
	},
	types.IntentEngagement: {
		objective: "Increase audience engagement and interaction",
		tactics: []string{
			"Interactive content campaigns",
			"Social media engagement programs",
			"User-generated content initiatives",
			"Community building activities",
			"Gamification elements",
		},
		focusAreas: []string{"Social media presence", "Content marketing", "Community engagement"},
		timeline:   "4-8 weeks (medium-term)",
		metrics:    []string{"Engagement Rate", "Click-through Rate", "Time on Site", "Social Shares"},
		llmPrompt:  "Suggest 3 engaging content ideas for '%s' audience with hooks and calls-to-action.",
	},
	types.IntentRetention: {
		objective: "Build customer loyalty and retention",
		tactics: []string{
			"Loyalty program development",
			"Personalized retention campaigns",
			"Customer feedback and improvement",
			"Exclusive offers for existing customers",
			"Long-term relationship building",
		},
		focusAreas: []string{"Customer lifetime value", "Repeat purchase behavior", "Brand loyalty"},
		timeline:   "8-12 weeks (long-term)",
		metrics:    []string{"Retention Rate", "Customer Lifetime Value", "Repeat Purchase Rate", "Churn Rate"},
		llmPrompt:  "Propose 3 retention campaign ideas for '%s' audience with personalization angles.",
	},
	types.IntentReach: {
		objective: "Maximize audience reach and brand visibility",
		tactics: []string{
			"Broad targeting across multiple platforms",
			"High-frequency ad placements",
			"Video content for maximum engagement",
			"Cross-platform campaign coordination",
			"Brand awareness campaigns",
		},
		focusAreas: []string{"Brand visibility", "Market penetration", "Awareness building"},
		timeline:   "6-10 weeks (medium-term)",
		metrics:    []string{"Impressions", "Reach", "Frequency", "Brand Awareness"},
		llmPrompt:  "Suggest 3 high-reach channel tactics for '%s' audience with creative angles.",
	},
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator produces strategies for labeled personas.
type Generator struct {
	gen llm.Generator
}

// New creates a strategy generator. gen may be llm.Disabled.
func New(gen llm.Generator) *Generator {
	if gen == nil {
		gen = llm.Disabled{}
	}
	return &Generator{gen: gen}
}

// Generate builds one strategy per persona using the persona's cluster stats.
// statsByCluster maps cluster ID to its statistics.
func (g *Generator) Generate(ctx context.Context, personas []types.Persona, statsByCluster map[int]*types.ClusterStats, intent types.Intent) []types.Strategy {
	strategies := make([]types.Strategy, 0, len(personas))
	for i := range personas {
		p := &personas[i]
		s := g.one(ctx, p, statsByCluster[p.ClusterID], intent)
		strategies = append(strategies, s)
	}
	logging.Strategy("Generated %d strategies for intent=%s", len(strategies), intent)
	return strategies
}

func (g *Generator) one(ctx context.Context, p *types.Persona, stats *types.ClusterStats, intent types.Intent) types.Strategy {
	tpl, ok := templates[intent]
	if !ok {
		tpl = templates[types.IntentReach]
	}

	spendingPower, digital, sizePct := p.Scores.SpendingPower, p.Scores.DigitalEngagement, p.SizePct
	if stats != nil {
		spendingPower = stats.AvgSpendingPower
		digital = stats.AvgDigitalEngagement
		sizePct = stats.SizePct
	}

	s := types.Strategy{
		ClusterID:     p.ClusterID,
		AudienceLabel: p.Label,
		Objective:     tpl.objective,
		Tactics:       tpl.tactics,
		FocusAreas:    tpl.focusAreas,
		Budget:        budgetTier(spendingPower, sizePct),
		Channels:      channelTier(digital),
		Timeline:      tpl.timeline,
		Metrics:       tpl.metrics,
	}

	if g.gen.Enabled() {
		if draft, err := g.gen.Generate(ctx, fmt.Sprintf(tpl.llmPrompt, p.Label)); err == nil && draft != "" {
			s.LLMSuggestions = draft
		} else if err != nil {
			logging.LLMWarn("Strategy suggestions failed for cluster %d: %v", p.ClusterID, err)
		}
	}
	return s
}

// budgetTier picks one of three tiers from spending power and segment size.
func budgetTier(spendingPower, sizePct float64) string {
	switch {
	case spendingPower > 0.7 && sizePct > 20:
		return "High Budget (100K-500K)"
	case spendingPower > 0.5 && sizePct > 15:
		return "Medium Budget (50K-100K)"
	default:
		return "Low Budget (10K-50K)"
	}
}

// channelTier picks the channel list from digital engagement.
func channelTier(digital float64) []string {
	switch {
	case digital > 0.7:
		return []string{"Instagram", "TikTok", "YouTube", "Facebook", "Google Display"}
	case digital > 0.4:
		return []string{"Facebook", "Instagram", "Google Search", "YouTube"}
	default:
		return []string{"Google Search", "Facebook", "Traditional Media"}
	}
}
