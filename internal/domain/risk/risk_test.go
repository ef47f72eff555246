package risk_test

import (
	"testing"

	"github.com/okian/posekit/internal/domain/model"
	"github.com/okian/posekit/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

func catalog() []risk.Disease {
	return []risk.Disease{
		{
			ID:     "forward_head",
			Weight: 0.5,
			Weights: map[string]float64{
				"forward_head":  0.8,
				"shoulder_tilt": 0.2,
			},
			Thresholds: map[string]risk.ItemThreshold{
				"forward_head":  {Kind: risk.KindDistance, Warning: 2, Danger: 3.5},
				"shoulder_tilt": {Kind: risk.KindDistance, Warning: 1.5, Danger: 3},
			},
			Tip: "Tuck your chin and lengthen the back of your neck hourly.",
		},
		{
			ID:     "shoulder_imbalance",
			Weight: 0.5,
			Weights: map[string]float64{
				"shoulder_tilt":  0.7,
				"shoulder_angle": 0.3,
			},
			Thresholds: map[string]risk.ItemThreshold{
				"shoulder_tilt":  {Kind: risk.KindDistance, Warning: 1.5, Danger: 3},
				"shoulder_angle": {Kind: risk.KindAngle, Warning: 85, Danger: 75},
			},
			Tip: "Stretch the elevated side and carry loads evenly.",
		},
	}
}

func items(pairs map[string]float64) []model.AnalysisItem {
	out := make([]model.AnalysisItem, 0, len(pairs))
	for id, v := range pairs {
		out = append(out, model.AnalysisItem{ID: id, Value: v})
	}
	return out
}

func TestEvaluate(t *testing.T) {
	Convey("Given an engine over the two-disease catalog", t, func() {
		eng := risk.NewEngine(catalog())

		Convey("When a measurement is beyond danger and another below warning", func() {
			out := eng.Evaluate(items(map[string]float64{
				"forward_head":  4,
				"shoulder_tilt": 1,
			}))

			Convey("Then the weighted average keeps the harmless item's weight", func() {
				// forward_head: 50 + (4-3.5)*10 = 55; shoulder_tilt: 0
				// disease risk: (55*0.8 + 0*0.2) / 1.0 = 44
				fh := diseaseByID(out, "forward_head")
				So(fh.Risk, ShouldAlmostEqual, 44)
				So(fh.Risk, ShouldBeGreaterThan, 0)
			})

			Convey("And the diseases are sorted descending by risk", func() {
				So(out.Diseases[0].ID, ShouldEqual, "forward_head")
			})

			Convey("And the primary concern is set above the floor", func() {
				So(out.PrimaryConcern, ShouldEqual, "forward_head")
			})
		})

		Convey("When an item a disease weighs is absent", func() {
			out := eng.Evaluate(items(map[string]float64{"forward_head": 4}))

			Convey("Then the remaining weight renormalizes instead of diluting", func() {
				// Only forward_head present: risk = 55 at full weight share.
				So(diseaseByID(out, "forward_head").Risk, ShouldAlmostEqual, 55)
			})

			Convey("And a disease with no present items scores zero", func() {
				So(diseaseByID(out, "shoulder_imbalance").Risk, ShouldEqual, 0)
			})

			Convey("And overall is the fixed-weight catalog average", func() {
				So(out.OverallRisk, ShouldAlmostEqual, 27.5) // (55*0.5 + 0*0.5)
				So(out.OverallLevel, ShouldEqual, model.RiskModerate)
			})
		})

		Convey("When every measurement is healthy", func() {
			out := eng.Evaluate(items(map[string]float64{
				"forward_head":   1,
				"shoulder_tilt":  0.5,
				"shoulder_angle": 90,
			}))

			Convey("Then nothing is flagged", func() {
				So(out.OverallRisk, ShouldEqual, 0)
				So(out.PrimaryConcern, ShouldBeEmpty)
				So(out.OverallLevel, ShouldEqual, model.RiskLow)
			})
		})

		Convey("When measurements are absurdly far past danger", func() {
			out := eng.Evaluate(items(map[string]float64{
				"forward_head":   1000,
				"shoulder_tilt":  1000,
				"shoulder_angle": -1000,
			}))

			Convey("Then every score stays clamped to [0,100]", func() {
				So(out.OverallRisk, ShouldBeLessThanOrEqualTo, 100)
				for _, d := range out.Diseases {
					So(d.Risk, ShouldBeLessThanOrEqualTo, 100)
					So(d.Risk, ShouldBeGreaterThanOrEqualTo, 0)
				}
				So(out.OverallLevel, ShouldEqual, model.RiskSevere)
			})
		})

		Convey("When evaluated twice with the same input", func() {
			in := items(map[string]float64{"forward_head": 3, "shoulder_tilt": 2})

			Convey("Then the output is identical", func() {
				So(eng.Evaluate(in), ShouldResemble, eng.Evaluate(in))
			})
		})
	})
}

func TestItemInterpolation(t *testing.T) {
	Convey("Given a single-item distance disease", t, func() {
		eng := risk.NewEngine([]risk.Disease{{
			ID:         "d",
			Weight:     1,
			Weights:    map[string]float64{"m": 1},
			Thresholds: map[string]risk.ItemThreshold{"m": {Kind: risk.KindDistance, Warning: 2, Danger: 4}},
		}})
		at := func(v float64) float64 {
			return eng.Evaluate(items(map[string]float64{"m": v})).Diseases[0].Risk
		}

		Convey("Then risk is zero at or below warning", func() {
			So(at(2), ShouldEqual, 0)
			So(at(0), ShouldEqual, 0)
		})
		Convey("Then risk rises linearly to 50 at danger", func() {
			So(at(3), ShouldAlmostEqual, 25)
			So(at(4), ShouldAlmostEqual, 50)
		})
		Convey("Then risk climbs at 10 per unit past danger, capped", func() {
			So(at(6), ShouldAlmostEqual, 70)
			So(at(100), ShouldEqual, 100)
		})
	})

	Convey("Given a single-item angle disease", t, func() {
		eng := risk.NewEngine([]risk.Disease{{
			ID:         "d",
			Weight:     1,
			Weights:    map[string]float64{"m": 1},
			Thresholds: map[string]risk.ItemThreshold{"m": {Kind: risk.KindAngle, Warning: 50, Danger: 40}},
		}})
		at := func(v float64) float64 {
			return eng.Evaluate(items(map[string]float64{"m": v})).Diseases[0].Risk
		}

		Convey("Then risk is zero at or above warning", func() {
			So(at(50), ShouldEqual, 0)
			So(at(80), ShouldEqual, 0)
		})
		Convey("Then risk rises linearly to 50 at danger", func() {
			So(at(45), ShouldAlmostEqual, 25)
			So(at(40), ShouldAlmostEqual, 50)
		})
		Convey("Then risk climbs at 5 per unit below danger, capped", func() {
			So(at(36), ShouldAlmostEqual, 70)
			So(at(-100), ShouldEqual, 100)
		})
	})
}

func TestRecommendations(t *testing.T) {
	Convey("Given the two-disease catalog", t, func() {
		eng := risk.NewEngine(catalog())

		Convey("When overall risk is low", func() {
			out := eng.Evaluate(items(map[string]float64{"forward_head": 1}))

			Convey("Then only the low bracket pair is returned", func() {
				So(out.Recommendations, ShouldHaveLength, 2)
				So(out.Recommendations[0], ShouldContainSubstring, "good shape")
			})
		})

		Convey("When a disease crosses the tip floor", func() {
			out := eng.Evaluate(items(map[string]float64{"forward_head": 4}))

			Convey("Then its specific tip follows the bracket pair", func() {
				So(out.Recommendations, ShouldContain,
					"Tuck your chin and lengthen the back of your neck hourly.")
			})
		})

		Convey("When everything is severe", func() {
			out := eng.Evaluate(items(map[string]float64{
				"forward_head":   20,
				"shoulder_tilt":  20,
				"shoulder_angle": 0,
			}))

			Convey("Then the list is truncated at five without duplicates", func() {
				So(len(out.Recommendations), ShouldBeLessThanOrEqualTo, 5)
				seen := map[string]bool{}
				for _, r := range out.Recommendations {
					So(seen[r], ShouldBeFalse)
					seen[r] = true
				}
			})
		})

		Convey("When the limit is lowered by option", func() {
			tight := risk.NewEngine(catalog(), risk.WithRecommendationLimit(1))
			out := tight.Evaluate(items(map[string]float64{"forward_head": 20}))

			Convey("Then the list honors the limit", func() {
				So(out.Recommendations, ShouldHaveLength, 1)
			})
		})
	})
}

func diseaseByID(out model.RiskAnalysis, id string) model.DiseaseRisk {
	for _, d := range out.Diseases {
		if d.ID == id {
			return d
		}
	}
	return model.DiseaseRisk{}
}
