// Package badge evaluates achievement badges against a history
// snapshot. Earning is monotonic: once a badge has an earned
// timestamp, no later evaluation re-checks or revokes it.
package badge

import (
	"time"

	"github.com/okian/posekit/internal/domain/model"
)

// Badge ids. Keep these stable: clients and the storage collaborator
// key persisted records off them.
const (
	FirstAnalysis    = "first_analysis"
	Streak3          = "streak_3"
	Streak7          = "streak_7"
	Streak30         = "streak_30"
	FirstImprovement = "first_improvement"
	TurtleNeckEscape = "turtle_neck_escape"
	ShoulderBalance  = "shoulder_balance"
	PerfectPosture   = "perfect_posture"
)

// Predicate thresholds.
const (
	improvementDelta  = 5
	postureScoreFloor = 75
	perfectScoreFloor = 90
)

// Definition is one catalog entry. Rendering metadata (icons, colors,
// display names) is a UI concern and deliberately absent.
type Definition struct {
	ID       string
	Category string
	earned   func(model.BadgeContext) bool
}

// Catalog returns the static badge catalog in evaluation order.
func Catalog() []Definition {
	return []Definition{
		{ID: FirstAnalysis, Category: "milestone", earned: func(c model.BadgeContext) bool {
			return c.TotalAnalyses >= 1
		}},
		{ID: Streak3, Category: "streak", earned: streakAtLeast(3)},
		{ID: Streak7, Category: "streak", earned: streakAtLeast(7)},
		{ID: Streak30, Category: "streak", earned: streakAtLeast(30)},
		{ID: FirstImprovement, Category: "improvement", earned: func(c model.BadgeContext) bool {
			return c.PreviousScore != nil && c.LatestScore-*c.PreviousScore >= improvementDelta
		}},
		{ID: TurtleNeckEscape, Category: "posture", earned: func(c model.BadgeContext) bool {
			return c.HeadForwardScore >= postureScoreFloor
		}},
		{ID: ShoulderBalance, Category: "posture", earned: func(c model.BadgeContext) bool {
			return c.ShoulderBalanceScore >= postureScoreFloor
		}},
		{ID: PerfectPosture, Category: "posture", earned: func(c model.BadgeContext) bool {
			return c.OverallScore >= perfectScoreFloor
		}},
	}
}

func streakAtLeast(days int) func(model.BadgeContext) bool {
	return func(c model.BadgeContext) bool { return c.CurrentStreak >= days }
}

// Outcome is one evaluation's result: the full badge list in catalog
// order plus the ids newly earned this round.
type Outcome struct {
	Badges      []model.UserBadge
	NewlyEarned []string
}

// Evaluate applies every catalog predicate to ctx, carrying earned
// badges through untouched. The output always has exactly one entry
// per catalog definition, in catalog order.
func Evaluate(prior []model.UserBadge, ctx model.BadgeContext, now time.Time) Outcome {
	earnedAt := make(map[string]*time.Time, len(prior))
	for _, b := range prior {
		if b.EarnedAt != nil {
			earnedAt[b.ID] = b.EarnedAt
		}
	}

	defs := Catalog()
	out := Outcome{Badges: make([]model.UserBadge, 0, len(defs))}
	for _, def := range defs {
		if at, ok := earnedAt[def.ID]; ok {
			out.Badges = append(out.Badges, model.UserBadge{ID: def.ID, EarnedAt: at})
			continue
		}
		if def.earned(ctx) {
			stamp := now
			out.Badges = append(out.Badges, model.UserBadge{ID: def.ID, EarnedAt: &stamp})
			out.NewlyEarned = append(out.NewlyEarned, def.ID)
			continue
		}
		out.Badges = append(out.Badges, model.UserBadge{ID: def.ID, EarnedAt: nil})
	}
	return out
}

// Initial returns the all-unearned badge set, the safe fallback when
// prior state is absent or unreadable.
func Initial() []model.UserBadge {
	defs := Catalog()
	out := make([]model.UserBadge, 0, len(defs))
	for _, def := range defs {
		out = append(out, model.UserBadge{ID: def.ID})
	}
	return out
}
