// Package counter implements the hysteresis state machine that turns a
// per-frame joint scalar stream into repetition and set counts.
package counter

import (
	"math"
	"time"

	"github.com/okian/posekit/internal/domain/model"
)

const percent = 100

// Config carries the per-exercise parameters one Counter runs with.
// Values are validated at catalog load; a Counter assumes
// ThresholdUp < ThresholdDown and positive targets.
type Config struct {
	ExerciseID   string
	ExerciseName string

	// ThresholdUp is the release boundary (phase returns to rest at or
	// below it); ThresholdDown is the engage boundary. The gap between
	// them is the hysteresis band that absorbs noise.
	ThresholdUp   float64
	ThresholdDown float64

	// Cooldown is the minimum spacing between two counted reps.
	Cooldown time.Duration

	SetsTarget int
	RepsPerSet int

	// Rest is the pause after a closed set. The machine never blocks on
	// it; the caller withholds samples until the rest elapses.
	Rest time.Duration
}

// Event reports what a single observed sample caused.
type Event int

const (
	EventNone Event = iota
	EventRepCounted
	EventSetCompleted
	EventSessionCompleted
)

// State is a read-only snapshot of counting progress.
type State struct {
	Phase         model.Phase
	RepsInSet     int
	CompletedSets int
	Done          bool
}

// Counter is the per-session repetition state machine. It is owned
// exclusively by the one goroutine driving the session and therefore
// carries no locking.
type Counter struct {
	cfg Config

	phase     model.Phase
	lastCount time.Time
	hasCount  bool
	repsInSet int
	setReps   []int
	completed int
	startedAt time.Time
	done      bool
}

// New creates a Counter for one session, started at now. Timestamps
// must come from time.Now so that cooldown arithmetic rides the
// monotonic clock.
func New(cfg Config, now time.Time) *Counter {
	return &Counter{
		cfg:       cfg,
		phase:     model.PhaseRest,
		setReps:   make([]int, 0, cfg.SetsTarget),
		startedAt: now,
	}
}

// Observe advances the machine with one scalar sample. Occluded frames
// never reach here; the caller skips them before calling.
func (c *Counter) Observe(v float64, now time.Time) Event {
	if c.done {
		return EventNone
	}

	switch c.phase {
	case model.PhaseRest:
		if v >= c.cfg.ThresholdDown {
			c.phase = model.PhaseEngaged
		}
	case model.PhaseEngaged:
		if v <= c.cfg.ThresholdUp {
			// Phase always resets so a later intentional rep can count,
			// even when the cooldown suppresses this one.
			c.phase = model.PhaseRest
			if c.hasCount && now.Sub(c.lastCount) < c.cfg.Cooldown {
				return EventNone
			}
			return c.countRep(now)
		}
	}
	return EventNone
}

// countRep registers a rep and closes the set/session when targets are
// reached.
func (c *Counter) countRep(now time.Time) Event {
	c.lastCount = now
	c.hasCount = true
	c.repsInSet++

	if c.repsInSet < c.cfg.RepsPerSet {
		return EventRepCounted
	}

	c.setReps = append(c.setReps, c.repsInSet)
	c.completed++
	c.repsInSet = 0

	if c.completed >= c.cfg.SetsTarget {
		c.done = true
		return EventSessionCompleted
	}
	return EventSetCompleted
}

// State returns the current counting progress.
func (c *Counter) State() State {
	return State{
		Phase:         c.phase,
		RepsInSet:     c.repsInSet,
		CompletedSets: c.completed,
		Done:          c.done,
	}
}

// Done reports whether the session reached its sets target.
func (c *Counter) Done() bool { return c.done }

// RestDuration exposes the configured between-set pause for the caller
// that times it.
func (c *Counter) RestDuration() time.Duration { return c.cfg.Rest }

// Result finalizes the session into an immutable snapshot. A partial
// in-progress set is included in the rep tally so an explicit early
// finalize does not lose counted work.
func (c *Counter) Result(now time.Time) model.ExerciseResult {
	reps := make([]int, len(c.setReps), len(c.setReps)+1)
	copy(reps, c.setReps)
	if c.repsInSet > 0 {
		reps = append(reps, c.repsInSet)
	}

	total := 0
	for _, n := range reps {
		total += n
	}

	target := c.cfg.SetsTarget * c.cfg.RepsPerSet
	accuracy := 0.0
	if target > 0 {
		accuracy = math.Min(percent, float64(total)/float64(target)*percent)
		accuracy = math.Round(accuracy*10) / 10
	}

	return model.ExerciseResult{
		ExerciseID:    c.cfg.ExerciseID,
		ExerciseName:  c.cfg.ExerciseName,
		CompletedSets: c.completed,
		CompletedReps: reps,
		TotalReps:     total,
		Duration:      now.Sub(c.startedAt).Seconds(),
		Accuracy:      accuracy,
		Date:          now,
	}
}
