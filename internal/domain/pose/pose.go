// Package pose reduces a full landmark array to the single scalar an
// exercise configuration tracks.
package pose

import (
	"fmt"

	"github.com/okian/posekit/internal/domain/model"
)

// Landmark indices follow the fixed 33-point anatomical numbering of
// the pose-estimation collaborator.
const (
	IdxNose          = 0
	IdxLeftShoulder  = 11
	IdxRightShoulder = 12
	IdxLeftElbow     = 13
	IdxRightElbow    = 14
	IdxLeftWrist     = 15
	IdxRightWrist    = 16
	IdxLeftHip       = 23
	IdxRightHip      = 24
	IdxLeftKnee      = 25
	IdxRightKnee     = 26
	IdxLeftAnkle     = 27
	IdxRightAnkle    = 28

	// LandmarkCount is the expected array length per frame.
	LandmarkCount = 33

	// minVisibility gates occluded points out of the projection.
	minVisibility = 0.5
)

// Selector names either a single landmark or a left/right pair whose
// midpoint is tracked.
type Selector struct {
	Left  int
	Right int // -1 for single-point selectors
}

// Single reports whether the selector tracks one landmark.
func (s Selector) Single() bool { return s.Right < 0 }

// selectors maps the joint names allowed in exercise configs.
var selectors = map[string]Selector{
	"nose":     {Left: IdxNose, Right: -1},
	"shoulder": {Left: IdxLeftShoulder, Right: IdxRightShoulder},
	"elbow":    {Left: IdxLeftElbow, Right: IdxRightElbow},
	"wrist":    {Left: IdxLeftWrist, Right: IdxRightWrist},
	"hip":      {Left: IdxLeftHip, Right: IdxRightHip},
	"knee":     {Left: IdxLeftKnee, Right: IdxRightKnee},
	"ankle":    {Left: IdxLeftAnkle, Right: IdxRightAnkle},
}

// LookupSelector resolves a joint name from an exercise config.
func LookupSelector(joint string) (Selector, error) {
	sel, ok := selectors[joint]
	if !ok {
		return Selector{}, fmt.Errorf("unknown joint %q", joint)
	}
	return sel, nil
}

// Project reduces landmarks to one scalar on the requested axis.
// It returns ok=false when every selected landmark is occluded; the
// caller skips the sample and no state transition happens. For paired
// selectors a single visible side stands in for the midpoint, because
// partial occlusion is common and must not stall the pipeline.
func Project(landmarks []model.Landmark, sel Selector, axis model.Axis, mirror bool) (float64, bool) {
	left, leftOK := coord(landmarks, sel.Left, axis)
	if sel.Single() {
		return finish(left, leftOK, axis, mirror)
	}

	right, rightOK := coord(landmarks, sel.Right, axis)
	switch {
	case leftOK && rightOK:
		return finish((left+right)/2, true, axis, mirror)
	case leftOK:
		return finish(left, true, axis, mirror)
	case rightOK:
		return finish(right, true, axis, mirror)
	default:
		return 0, false
	}
}

// coord extracts one axis coordinate, gated on visibility.
func coord(landmarks []model.Landmark, idx int, axis model.Axis) (float64, bool) {
	if idx < 0 || idx >= len(landmarks) {
		return 0, false
	}
	lm := landmarks[idx]
	if lm.Visibility < minVisibility {
		return 0, false
	}
	if axis == model.AxisX {
		return lm.X, true
	}
	return lm.Y, true
}

// finish applies the mirror compensation for front-facing cameras:
// only the x axis flips.
func finish(v float64, ok bool, axis model.Axis, mirror bool) (float64, bool) {
	if !ok {
		return 0, false
	}
	if mirror && axis == model.AxisX {
		return 1 - v, true
	}
	return v, true
}
