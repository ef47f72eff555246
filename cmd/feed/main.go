package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/posekit/internal/feed"
)

const runTimeout = 10 * time.Minute

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		userID   = flag.String("user", "feed-user", "User id to stream under")
		exercise = flag.String("exercise", "squat", "Exercise id from the catalog")
		reps     = flag.Int("reps", 5, "Number of rep cycles to stream")
		frames   = flag.Int("frames", 20, "Frames per rep cycle")
		interval = flag.Duration("interval", 33*time.Millisecond, "Pacing between frames")
		timeout  = flag.Duration("timeout", 30*time.Second, "HTTP request timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := &feed.Config{
		BaseURL:        *baseURL,
		UserID:         *userID,
		Exercise:       *exercise,
		Reps:           *reps,
		FramesPerCycle: *frames,
		FrameInterval:  *interval,
		Timeout:        *timeout,
	}

	if err := feed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("feed failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
