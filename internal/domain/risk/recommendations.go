package risk

import "github.com/okian/posekit/internal/domain/model"

// Generic recommendation pairs, one pair per overall-risk bracket.
// Ids stay stable because clients key display text off them.
var bracketRecommendations = []struct {
	floor float64
	msgs  [2]string
}{
	{75, [2]string{
		"Consult a physiotherapist about your posture as soon as possible.",
		"Pause long sitting sessions every 20 minutes and reset your posture.",
	}},
	{50, [2]string{
		"Schedule daily corrective exercises for your neck and shoulders.",
		"Raise your screen to eye level to reduce forward head load.",
	}},
	{25, [2]string{
		"Add short posture breaks to your routine to stop early imbalances.",
		"Strengthen your upper back with rows or band pull-aparts.",
	}},
	{0, [2]string{
		"Your posture is in good shape; keep your current habits.",
		"Re-check your posture weekly to catch regressions early.",
	}},
}

// recommendations assembles the ordered, deduplicated list: the
// bracket pair first, then one tip per disease at or above the tip
// floor in descending-risk order, truncated at the limit.
func (e *Engine) recommendations(overall float64, diseases []model.DiseaseRisk) []string {
	out := make([]string, 0, e.recommendationLimit)
	seen := make(map[string]struct{}, e.recommendationLimit)

	add := func(msg string) {
		if msg == "" || len(out) >= e.recommendationLimit {
			return
		}
		if _, dup := seen[msg]; dup {
			return
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}

	for _, b := range bracketRecommendations {
		if overall >= b.floor {
			add(b.msgs[0])
			add(b.msgs[1])
			break
		}
	}

	tips := make(map[string]string, len(e.diseases))
	for _, d := range e.diseases {
		tips[d.ID] = d.Tip
	}
	// diseases arrive sorted descending by risk
	for _, d := range diseases {
		if d.Risk >= tipFloor {
			add(tips[d.ID])
		}
	}

	return out
}
