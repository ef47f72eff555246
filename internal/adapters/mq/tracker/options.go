package tracker

import "github.com/okian/posekit/pkg/logger"

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithLogger sets a custom logger for the tracker.
func WithLogger(log logger.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.logger = log.Named("tracker")
		}
	}
}
