package feature

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"personagen/internal/llm"
	"personagen/internal/logging"
	"personagen/internal/types"
)

// =============================================================================
// COLLABORATOR-SUGGESTED TRANSFORMS
// =============================================================================

type llmRecommendation struct {
	Transformations []struct {
		Feature   string `json:"feature"`
		Transform string `json:"transform"`
	} `json:"transformations"`
}

const transformPrompt = `You are a data scientist expert in feature engineering for marketing analytics.

Available features: %s

Goal analysis:
- Demographics: %v
- Behavioral focus: %v
- Intent: %s

Recommend transformations that would improve clustering separation for this goal.
Supported transforms: "log" (log1p) and "sqrt".

Return ONLY valid JSON:
{
    "transformations": [
        {"feature": "spending_power", "transform": "log"}
    ]
}`

// SuggestTransforms asks the collaborator for feature transformations and
// applies the valid ones in place. Unknown features and unsupported transform
// names are discarded without comment; any failure leaves vectors untouched.
func SuggestTransforms(ctx context.Context, gen llm.Generator, vectors []types.FeatureVector, a *types.GoalAnalysis) {
	if gen == nil || !gen.Enabled() || len(vectors) == 0 {
		return
	}

	names := featureNames(vectors[0])
	resp, err := gen.Generate(ctx, fmt.Sprintf(transformPrompt,
		strings.Join(names, ", "), a.Demographics, a.BehavioralFocus, a.Intent))
	if err != nil {
		logging.LLMWarn("Transform suggestion failed: %v", err)
		return
	}

	var rec llmRecommendation
	if err := json.Unmarshal([]byte(stripFences(resp)), &rec); err != nil {
		logging.LLMWarn("Transform suggestion parse failed: %v", err)
		return
	}

	applied := 0
	for _, t := range rec.Transformations {
		if !vectors[0].Has(t.Feature) {
			continue
		}
		switch t.Transform {
		case "log":
			for i := range vectors {
				vectors[i].Values[t.Feature+"_log"] = math.Log1p(vectors[i].Values[t.Feature])
			}
			applied++
		case "sqrt":
			for i := range vectors {
				v := vectors[i].Values[t.Feature]
				if v < 0 {
					v = 0
				}
				vectors[i].Values[t.Feature+"_sqrt"] = math.Sqrt(v)
			}
			applied++
		}
	}
	if applied > 0 {
		logging.Features("Applied %d collaborator transforms", applied)
	}
}

func featureNames(v types.FeatureVector) []string {
	names := make([]string, 0, len(v.Values))
	for name := range v.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

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
