package feed

import (
	"context"
	"fmt"
	"log"
	"time"
)

// drainPause gives the server's consumer time to work through the
// tail of the stream before the summary is requested.
const drainPause = 250 * time.Millisecond

// Run streams the configured number of rep cycles at one session and
// checks that the service counted every one of them.
func Run(ctx context.Context, cfg *Config) error {
	cfg.Normalize()
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	sessionID, err := client.StartSession(ctx, cfg.UserID, cfg.Exercise)
	if err != nil {
		return err
	}
	log.Printf("session %s started: %d reps of %s at %v/frame",
		sessionID, cfg.Reps, cfg.Exercise, cfg.FrameInterval)

	cycle := RepCycle(cfg.FramesPerCycle)
	sent := 0
	for r := 0; r < cfg.Reps; r++ {
		for _, f := range cycle {
			if err := client.SendFrame(ctx, sessionID, f.Landmarks); err != nil {
				return fmt.Errorf("rep %d: %w", r+1, err)
			}
			sent++

			select {
			case <-ctx.Done():
				return fmt.Errorf("feed interrupted: %w", ctx.Err())
			case <-time.After(cfg.FrameInterval):
			}
		}
	}
	log.Printf("streamed %d frames", sent)

	time.Sleep(drainPause)

	result, err := client.Finish(ctx, sessionID)
	if err != nil {
		// A session that hit its configured target completes on its
		// own and is gone by finish time; its summary is in results.
		results, rerr := client.Results(ctx, cfg.UserID)
		if rerr != nil || len(results) == 0 {
			return fmt.Errorf("no summary available: %w", err)
		}
		result = results[len(results)-1]
	}

	if result.TotalReps != cfg.Reps {
		return fmt.Errorf("rep count mismatch: streamed %d, counted %d", cfg.Reps, result.TotalReps)
	}
	log.Printf("verified: %d reps counted, accuracy %.1f%%", result.TotalReps, result.Accuracy)
	return nil
}
