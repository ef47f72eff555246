package pose_test

import (
	"testing"

	"github.com/okian/posekit/internal/domain/model"
	"github.com/okian/posekit/internal/domain/pose"
	. "github.com/smartystreets/goconvey/convey"
)

func frame() []model.Landmark {
	lms := make([]model.Landmark, pose.LandmarkCount)
	for i := range lms {
		lms[i] = model.Landmark{X: 0.5, Y: 0.5, Visibility: 1.0}
	}
	return lms
}

func TestProject(t *testing.T) {
	Convey("Given a full landmark frame", t, func() {
		lms := frame()
		shoulder, err := pose.LookupSelector("shoulder")
		So(err, ShouldBeNil)

		Convey("When both sides of a pair are visible", func() {
			lms[pose.IdxLeftShoulder].Y = 0.4
			lms[pose.IdxRightShoulder].Y = 0.6

			Convey("Then the midpoint is returned", func() {
				v, ok := pose.Project(lms, shoulder, model.AxisY, false)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 0.5)
			})
		})

		Convey("When only one side is visible", func() {
			lms[pose.IdxLeftShoulder].Y = 0.4
			lms[pose.IdxRightShoulder].Visibility = 0.2

			Convey("Then the visible side stands in", func() {
				v, ok := pose.Project(lms, shoulder, model.AxisY, false)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 0.4)
			})
		})

		Convey("When neither side is visible", func() {
			lms[pose.IdxLeftShoulder].Visibility = 0.49
			lms[pose.IdxRightShoulder].Visibility = 0

			Convey("Then the sample is skipped, not failed", func() {
				_, ok := pose.Project(lms, shoulder, model.AxisY, false)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When visibility sits exactly on the 0.5 gate", func() {
			lms[pose.IdxNose].Visibility = 0.5
			nose, nerr := pose.LookupSelector("nose")
			So(nerr, ShouldBeNil)

			Convey("Then the landmark is usable", func() {
				_, ok := pose.Project(lms, nose, model.AxisY, false)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When mirroring on the x axis", func() {
			lms[pose.IdxLeftShoulder].X = 0.3
			lms[pose.IdxRightShoulder].X = 0.3

			Convey("Then the value flips around the frame center", func() {
				v, ok := pose.Project(lms, shoulder, model.AxisX, true)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 0.7)
			})
		})

		Convey("When mirroring on the y axis", func() {
			lms[pose.IdxLeftShoulder].Y = 0.3
			lms[pose.IdxRightShoulder].Y = 0.3

			Convey("Then the mirror flag has no effect", func() {
				v, ok := pose.Project(lms, shoulder, model.AxisY, true)
				So(ok, ShouldBeTrue)
				So(v, ShouldAlmostEqual, 0.3)
			})
		})

		Convey("When the landmark array is truncated", func() {
			short := lms[:10]

			Convey("Then projection degrades to a skipped sample", func() {
				_, ok := pose.Project(short, shoulder, model.AxisY, false)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestLookupSelector(t *testing.T) {
	Convey("Given the joint selector table", t, func() {
		Convey("When resolving a paired joint", func() {
			sel, err := pose.LookupSelector("hip")
			So(err, ShouldBeNil)
			So(sel.Single(), ShouldBeFalse)
		})

		Convey("When resolving a single-point joint", func() {
			sel, err := pose.LookupSelector("nose")
			So(err, ShouldBeNil)
			So(sel.Single(), ShouldBeTrue)
		})

		Convey("When resolving an unknown joint", func() {
			_, err := pose.LookupSelector("tail")
			So(err, ShouldNotBeNil)
		})
	})
}
