package persona

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"personagen/internal/logging"
	"personagen/internal/types"
)

const labelPrompt = `You are a marketing analyst creating audience segment labels. Based on these cluster characteristics, create a concise, descriptive label (max 80 characters) that captures the key traits and marketing potential.

Cluster characteristics:
- Demographics: %s, age %.1f, %s, %s
- Size: %.1f%% of audience
- Spending power: %.2f (0-1 scale)
- Digital engagement: %.2f (0-1 scale)
- Lifestyle complexity: %.2f (0-1 scale)
- Marketing intent: %s

Guidelines:
- Include key demographic info and a behavioral descriptor
- Use format: "[Behavioral Trait] [Demographic] • [Income/Context]"

Label:`

// rewriteLabel asks the collaborator for a nicer label. The rewrite is
// accepted only when non-empty, trimmed and truncated; on any failure the
// deterministic label stands.
func (l *Labeler) rewriteLabel(ctx context.Context, s *types.ClusterStats, a *types.GoalAnalysis) (string, bool) {
	resp, err := l.gen.Generate(ctx, fmt.Sprintf(labelPrompt,
		s.DominantGender, s.AvgAge, s.DominantIncome, s.DominantEducation,
		s.SizePct, s.AvgSpendingPower, s.AvgDigitalEngagement, s.AvgLifestyleComplexity,
		a.Intent))
	if err != nil {
		logging.LLMWarn("Label rewrite failed for cluster %d: %v", s.ClusterID, err)
		return "", false
	}

	label := strings.TrimSpace(strings.Trim(strings.TrimSpace(resp), `"`))
	if label == "" {
		return "", false
	}
	if len(label) > maxLLMLabel {
		cut := maxLLMLabel
		for cut > 0 && !utf8.RuneStart(label[cut]) {
			cut--
		}
		label = label[:cut]
	}
	return label, true
}
