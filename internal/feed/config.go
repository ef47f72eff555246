// Package feed drives a running posekit instance with synthetic
// landmark streams and verifies the rep counts it reports.
package feed

import "time"

// Config controls one feed run.
type Config struct {
	BaseURL  string
	UserID   string
	Exercise string

	// Reps is the number of engage/release cycles to stream.
	Reps int
	// FramesPerCycle controls how finely each cycle is sampled.
	FramesPerCycle int
	// FrameInterval is the pacing between posted frames.
	FrameInterval time.Duration

	Timeout time.Duration
}

// Default tuning.
const (
	defaultReps           = 5
	defaultFramesPerCycle = 20
	defaultFrameInterval  = 33 * time.Millisecond
	defaultTimeout        = 30 * time.Second
)

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.Reps <= 0 {
		c.Reps = defaultReps
	}
	if c.FramesPerCycle <= 0 {
		c.FramesPerCycle = defaultFramesPerCycle
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = defaultFrameInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}
