// Package risk computes per-condition and overall postural risk from
// named measurements. Evaluation is a pure function: identical inputs
// always produce identical output and nothing is mutated.
package risk

import (
	"math"
	"sort"

	"github.com/okian/posekit/internal/domain/model"
)

// Scoring constants.
const (
	maxRisk      = 100
	midRisk      = 50 // risk at the danger threshold
	angleSlope   = 5  // risk points per unit below danger (angle kind)
	distSlope    = 10 // risk points per unit above danger (distance kind)
	concernFloor = 30 // minimum risk for a primary concern
	tipFloor     = 40 // minimum disease risk for a specific tip
)

// defaultRecommendationLimit caps the assembled recommendation list.
const defaultRecommendationLimit = 5

// MeasureKind states which direction of a measurement is unhealthy.
type MeasureKind string

const (
	// KindAngle measurements are healthier when larger (e.g. the
	// craniovertebral angle); risk grows as the value falls.
	KindAngle MeasureKind = "angle"
	// KindDistance measurements are worse when larger (offsets, tilts);
	// risk grows as the value rises.
	KindDistance MeasureKind = "distance"
)

// ItemThreshold holds the warning/danger boundaries for one
// measurement, interpreted per its kind.
type ItemThreshold struct {
	Kind    MeasureKind
	Warning float64
	Danger  float64
}

// Disease is one tracked postural condition: which measurements
// contribute, how much each weighs, and its share of the overall risk.
type Disease struct {
	ID         string
	Weight     float64
	Weights    map[string]float64
	Thresholds map[string]ItemThreshold
	Tip        string
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRecommendationLimit caps the recommendation list length.
func WithRecommendationLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.recommendationLimit = n
		}
	}
}

// Engine scores measurements against a fixed disease catalog.
type Engine struct {
	diseases            []Disease
	recommendationLimit int
}

// NewEngine creates an engine over the given catalog. The catalog is
// validated at load time; the engine treats it as immutable.
func NewEngine(diseases []Disease, opts ...Option) *Engine {
	e := &Engine{
		diseases:            diseases,
		recommendationLimit: defaultRecommendationLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores the submitted measurements and assembles the full
// analysis: per-disease risks sorted descending, the fixed-weight
// overall risk, the primary concern, and recommendations.
func (e *Engine) Evaluate(items []model.AnalysisItem) model.RiskAnalysis {
	values := make(map[string]float64, len(items))
	for _, it := range items {
		values[it.ID] = it.Value
	}

	diseases := make([]model.DiseaseRisk, 0, len(e.diseases))
	var overall, weightSum float64
	for _, d := range e.diseases {
		r := diseaseRisk(d, values)
		diseases = append(diseases, model.DiseaseRisk{ID: d.ID, Risk: r, Level: LevelFor(r)})
		overall += r * d.Weight
		weightSum += d.Weight
	}
	if weightSum > 0 {
		overall /= weightSum
	}
	overall = clamp(overall)

	sort.SliceStable(diseases, func(i, j int) bool { return diseases[i].Risk > diseases[j].Risk })

	primary := ""
	if len(diseases) > 0 && diseases[0].Risk >= concernFloor {
		primary = diseases[0].ID
	}

	return model.RiskAnalysis{
		OverallRisk:     overall,
		OverallLevel:    LevelFor(overall),
		Diseases:        diseases,
		PrimaryConcern:  primary,
		Recommendations: e.recommendations(overall, diseases),
	}
}

// diseaseRisk is the weighted average of item risks over the items
// actually present. Absent items contribute neither risk nor weight,
// so a partial submission is never read as "zero risk".
func diseaseRisk(d Disease, values map[string]float64) float64 {
	var sum, weight float64
	for id, w := range d.Weights {
		v, ok := values[id]
		if !ok {
			continue
		}
		th, ok := d.Thresholds[id]
		if !ok {
			continue
		}
		sum += itemRisk(th, v) * w
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return clamp(sum / weight)
}

// itemRisk interpolates one measurement to [0,100] against its
// warning/danger boundaries.
func itemRisk(th ItemThreshold, v float64) float64 {
	if th.Kind == KindAngle {
		switch {
		case v >= th.Warning:
			return 0
		case v >= th.Danger:
			return midRisk * (th.Warning - v) / (th.Warning - th.Danger)
		default:
			return clamp(midRisk + (th.Danger-v)*angleSlope)
		}
	}
	switch {
	case v <= th.Warning:
		return 0
	case v <= th.Danger:
		return midRisk * (v - th.Warning) / (th.Danger - th.Warning)
	default:
		return clamp(midRisk + (v-th.Danger)*distSlope)
	}
}

// LevelFor buckets a risk score into its named level.
func LevelFor(risk float64) model.RiskLevel {
	switch {
	case risk >= 75:
		return model.RiskSevere
	case risk >= 50:
		return model.RiskHigh
	case risk >= 25:
		return model.RiskModerate
	default:
		return model.RiskLow
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(maxRisk, v))
}
