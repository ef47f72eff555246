// Package model contains domain values passed between layers.
package model

import "time"

// Landmark is one tracked body point. Coordinates are normalized to
// [0,1] on x and y; z is depth relative to the hips. Visibility is a
// confidence in [0,1]; an absent field decodes to 0 and the point is
// treated as occluded.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Frame is one pose-estimation callback: the full 33-point landmark
// array for a single video frame, addressed to one session.
type Frame struct {
	SessionID string
	Landmarks []Landmark
}

// Axis selects which coordinate of a landmark is tracked.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Phase is the discrete state of a repetition state machine.
type Phase string

const (
	PhaseRest    Phase = "rest"
	PhaseEngaged Phase = "engaged"
)

// ExerciseResult is the immutable snapshot produced when a session
// completes or is explicitly finalized. The core hands it to the
// caller and keeps nothing.
type ExerciseResult struct {
	ExerciseID    string    `json:"exercise_id"`
	ExerciseName  string    `json:"exercise_name"`
	CompletedSets int       `json:"completed_sets"`
	CompletedReps []int     `json:"completed_reps"`
	TotalReps     int       `json:"total_reps"`
	Duration      float64   `json:"duration_sec"`
	Accuracy      float64   `json:"accuracy"`
	Date          time.Time `json:"date"`
}

// AnalysisItem is one named postural measurement submitted for risk
// scoring, e.g. {"forward_head", 3.2}.
type AnalysisItem struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// RiskLevel buckets a 0-100 risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskSevere   RiskLevel = "severe"
)

// DiseaseRisk is the derived score for one tracked condition.
type DiseaseRisk struct {
	ID    string    `json:"id"`
	Risk  float64   `json:"risk"`
	Level RiskLevel `json:"level"`
}

// RiskAnalysis is the full output of the risk scoring engine.
// Recomputed fresh on every call; carries no persisted identity.
type RiskAnalysis struct {
	OverallRisk     float64       `json:"overall_risk"`
	OverallLevel    RiskLevel     `json:"overall_level"`
	Diseases        []DiseaseRisk `json:"diseases"`
	PrimaryConcern  string        `json:"primary_concern,omitempty"`
	Recommendations []string      `json:"recommendations"`
}

// UserBadge pairs a catalog badge id with the time it was earned.
// A non-nil EarnedAt is permanent: no later evaluation resets it.
type UserBadge struct {
	ID       string     `json:"id"`
	EarnedAt *time.Time `json:"earned_at"`
}

// BadgeContext is the history snapshot a badge evaluation runs
// against, supplied by the storage collaborator.
type BadgeContext struct {
	TotalAnalyses        int      `json:"total_analyses"`
	CurrentStreak        int      `json:"current_streak"`
	LatestScore          float64  `json:"latest_score"`
	PreviousScore        *float64 `json:"previous_score"`
	HeadForwardScore     float64  `json:"head_forward_score"`
	ShoulderBalanceScore float64  `json:"shoulder_balance_score"`
	OverallScore         float64  `json:"overall_score"`
}

// HistoryEntry is one persisted analysis outcome, appended per
// submission and used to build the next BadgeContext.
type HistoryEntry struct {
	Date                 time.Time `json:"date"`
	OverallScore         float64   `json:"overall_score"`
	HeadForwardScore     float64   `json:"head_forward_score"`
	ShoulderBalanceScore float64   `json:"shoulder_balance_score"`
}

// AnalysisOutcome bundles everything one analysis submission produces:
// the fresh risk scores plus the badge set after re-evaluation.
type AnalysisOutcome struct {
	Analysis    RiskAnalysis `json:"analysis"`
	Badges      []UserBadge  `json:"badges"`
	NewlyEarned []string     `json:"newly_earned"`
}
