package feed

import (
	"math"

	"github.com/okian/posekit/internal/domain/model"
	"github.com/okian/posekit/internal/domain/pose"
)

// Motion extremes for the simulated squat. The hips sweep between
// these y values, comfortably past the default thresholds.
const (
	restY    = 0.75
	engagedY = 0.20
)

// RepCycle produces the frames of one engage/release sweep: the hips
// follow a cosine from rest down to engaged and back. The last frame
// lands on rest so cycles chain cleanly.
func RepCycle(frames int) []model.Frame {
	out := make([]model.Frame, 0, frames)
	for i := 0; i < frames; i++ {
		// 0 -> 2π over the cycle; (1-cos)/2 sweeps 0 -> 1 -> 0.
		phase := (1 - math.Cos(2*math.Pi*float64(i)/float64(frames-1))) / 2
		y := restY + (engagedY-restY)*phase
		out = append(out, frameAt(y))
	}
	return out
}

// frameAt builds a fully visible landmark array with the hips at y.
func frameAt(y float64) model.Frame {
	lms := make([]model.Landmark, pose.LandmarkCount)
	for i := range lms {
		lms[i] = model.Landmark{X: 0.5, Y: 0.5, Visibility: 1}
	}
	lms[pose.IdxLeftHip].Y = y
	lms[pose.IdxRightHip].Y = y
	return model.Frame{Landmarks: lms}
}
