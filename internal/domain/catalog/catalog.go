// Package catalog holds the static configuration catalogs: exercise
// configs and disease definitions. Catalogs load once at startup and
// are immutable for the process lifetime; anything that fails
// validation is rejected here so no session ever runs a degenerate
// config.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/posekit/internal/domain/counter"
	"github.com/okian/posekit/internal/domain/model"
	"github.com/okian/posekit/internal/domain/pose"
	"github.com/okian/posekit/internal/domain/risk"
)

// Exercise is one immutable exercise configuration record.
type Exercise struct {
	ID            string  `koanf:"id" json:"id"`
	Name          string  `koanf:"name" json:"name"`
	Joint         string  `koanf:"joint" json:"joint"`
	Axis          string  `koanf:"axis" json:"axis"`
	Mirror        bool    `koanf:"mirror" json:"mirror"`
	ThresholdUp   float64 `koanf:"threshold_up" json:"threshold_up"`
	ThresholdDown float64 `koanf:"threshold_down" json:"threshold_down"`
	CooldownMS    int     `koanf:"cooldown_ms" json:"cooldown_ms"`
	SetsTarget    int     `koanf:"sets_target" json:"sets_target"`
	RepsPerSet    int     `koanf:"reps_per_set" json:"reps_per_set"`
	RestTimeSec   int     `koanf:"rest_time_sec" json:"rest_time_sec"`
}

// CounterConfig converts the record into the state machine's config.
func (e Exercise) CounterConfig() counter.Config {
	return counter.Config{
		ExerciseID:    e.ID,
		ExerciseName:  e.Name,
		ThresholdUp:   e.ThresholdUp,
		ThresholdDown: e.ThresholdDown,
		Cooldown:      time.Duration(e.CooldownMS) * time.Millisecond,
		SetsTarget:    e.SetsTarget,
		RepsPerSet:    e.RepsPerSet,
		Rest:          time.Duration(e.RestTimeSec) * time.Second,
	}
}

// DiseaseItem is one weighted measurement inside a disease definition.
type DiseaseItem struct {
	ID      string  `koanf:"id"`
	Weight  float64 `koanf:"weight"`
	Kind    string  `koanf:"kind"` // "angle" or "distance"
	Warning float64 `koanf:"warning"`
	Danger  float64 `koanf:"danger"`
}

// DiseaseDef is the loadable form of one tracked condition.
type DiseaseDef struct {
	ID     string        `koanf:"id"`
	Weight float64       `koanf:"weight"`
	Items  []DiseaseItem `koanf:"items"`
	Tip    string        `koanf:"tip"`
}

// ToRisk converts the loadable form into the engine's catalog entry.
func (d DiseaseDef) ToRisk() risk.Disease {
	out := risk.Disease{
		ID:         d.ID,
		Weight:     d.Weight,
		Weights:    make(map[string]float64, len(d.Items)),
		Thresholds: make(map[string]risk.ItemThreshold, len(d.Items)),
		Tip:        d.Tip,
	}
	for _, it := range d.Items {
		out.Weights[it.ID] = it.Weight
		out.Thresholds[it.ID] = risk.ItemThreshold{
			Kind:    risk.MeasureKind(it.Kind),
			Warning: it.Warning,
			Danger:  it.Danger,
		}
	}
	return out
}

// Catalog bundles every static configuration the pipeline runs on.
type Catalog struct {
	Exercises []Exercise   `koanf:"exercises"`
	Diseases  []DiseaseDef `koanf:"diseases"`
}

// Load builds the catalog: built-in defaults, optionally replaced by a
// YAML file, then validated. An invalid catalog fails startup rather
// than failing a session later.
func Load(ctx context.Context, path string) (*Catalog, error) {
	c := Default()

	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
		}
		var override Catalog
		if err := k.UnmarshalWithConf("", &override, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
		}
		if len(override.Exercises) > 0 {
			c.Exercises = override.Exercises
		}
		if len(override.Diseases) > 0 {
			c.Diseases = override.Diseases
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Exercise looks up one exercise config by id.
func (c *Catalog) Exercise(id string) (Exercise, bool) {
	for _, e := range c.Exercises {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}

// RiskCatalog returns the disease catalog in the engine's form.
func (c *Catalog) RiskCatalog() []risk.Disease {
	out := make([]risk.Disease, 0, len(c.Diseases))
	for _, d := range c.Diseases {
		out = append(out, d.ToRisk())
	}
	return out
}

// Validate rejects degenerate configurations up front: a collapsed or
// inverted hysteresis band, thresholds outside [0,1], zero-width risk
// ranges, and empty targets.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Exercises))
	for _, e := range c.Exercises {
		if err := validateExercise(e); err != nil {
			return err
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate exercise id %q", ErrInvalidExercise, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	for _, d := range c.Diseases {
		if err := validateDisease(d); err != nil {
			return err
		}
	}
	return nil
}

func validateExercise(e Exercise) error {
	wrap := func(format string, args ...any) error {
		return fmt.Errorf("%w: exercise %q: %s", ErrInvalidExercise, e.ID, fmt.Sprintf(format, args...))
	}

	if e.ID == "" {
		return fmt.Errorf("%w: missing exercise id", ErrInvalidExercise)
	}
	if _, err := pose.LookupSelector(e.Joint); err != nil {
		return wrap("%v", err)
	}
	if a := model.Axis(e.Axis); a != model.AxisX && a != model.AxisY {
		return wrap("axis must be x or y, got %q", e.Axis)
	}
	if e.ThresholdUp < 0 || e.ThresholdUp > 1 || e.ThresholdDown < 0 || e.ThresholdDown > 1 {
		return wrap("thresholds must lie in [0,1]")
	}
	if e.ThresholdUp == e.ThresholdDown {
		return wrap("hysteresis band is degenerate")
	}
	if e.ThresholdUp > e.ThresholdDown {
		return wrap("threshold_up must be below threshold_down")
	}
	if e.CooldownMS < 0 {
		return wrap("cooldown_ms must not be negative")
	}
	if e.SetsTarget <= 0 || e.RepsPerSet <= 0 {
		return wrap("sets_target and reps_per_set must be positive")
	}
	if e.RestTimeSec < 0 {
		return wrap("rest_time_sec must not be negative")
	}
	return nil
}

func validateDisease(d DiseaseDef) error {
	wrap := func(format string, args ...any) error {
		return fmt.Errorf("%w: disease %q: %s", ErrInvalidDisease, d.ID, fmt.Sprintf(format, args...))
	}

	if d.ID == "" {
		return fmt.Errorf("%w: missing disease id", ErrInvalidDisease)
	}
	if d.Weight <= 0 {
		return wrap("catalog weight must be positive")
	}
	if len(d.Items) == 0 {
		return wrap("needs at least one measurement item")
	}
	for _, it := range d.Items {
		if it.Weight <= 0 {
			return wrap("item %q weight must be positive", it.ID)
		}
		if it.Warning == it.Danger {
			return wrap("item %q has a zero-width threshold range", it.ID)
		}
		switch risk.MeasureKind(it.Kind) {
		case risk.KindAngle:
			if it.Danger > it.Warning {
				return wrap("item %q: angle danger must sit below warning", it.ID)
			}
		case risk.KindDistance:
			if it.Warning > it.Danger {
				return wrap("item %q: distance warning must sit below danger", it.ID)
			}
		default:
			return wrap("item %q has unknown kind %q", it.ID, it.Kind)
		}
	}
	return nil
}
