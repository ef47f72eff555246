package tracker_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/posekit/internal/adapters/mq/queue"
	"github.com/okian/posekit/internal/adapters/mq/tracker"
	"github.com/okian/posekit/internal/domain/catalog"
	"github.com/okian/posekit/internal/domain/model"
	"github.com/okian/posekit/internal/domain/pose"
	"github.com/okian/posekit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// captureSink collects results handed off by the tracker.
type captureSink struct {
	ch chan model.ExerciseResult
}

func newCaptureSink() *captureSink {
	return &captureSink{ch: make(chan model.ExerciseResult, 4)}
}

func (c *captureSink) RecordResult(_ context.Context, _ string, result model.ExerciseResult) {
	c.ch <- result
}

func (c *captureSink) wait() (model.ExerciseResult, bool) {
	select {
	case r := <-c.ch:
		return r, true
	case <-time.After(2 * time.Second):
		return model.ExerciseResult{}, false
	}
}

func exercise() catalog.Exercise {
	return catalog.Exercise{
		ID:            "squat",
		Name:          "Squat",
		Joint:         "hip",
		Axis:          "y",
		ThresholdUp:   0.3,
		ThresholdDown: 0.6,
		CooldownMS:    0,
		SetsTarget:    1,
		RepsPerSet:    2,
		RestTimeSec:   0,
	}
}

// hipFrame builds a full frame with both hips at the given y.
func hipFrame(session string, y float64) model.Frame {
	lms := make([]model.Landmark, pose.LandmarkCount)
	for i := range lms {
		lms[i] = model.Landmark{X: 0.5, Y: 0.5, Visibility: 1}
	}
	lms[pose.IdxLeftHip].Y = y
	lms[pose.IdxRightHip].Y = y
	return model.Frame{SessionID: session, Landmarks: lms}
}

// occludedFrame hides both hips.
func occludedFrame(session string) model.Frame {
	f := hipFrame(session, 0.7)
	f.Landmarks[pose.IdxLeftHip].Visibility = 0
	f.Landmarks[pose.IdxRightHip].Visibility = 0
	return f
}

func TestTracker(t *testing.T) {
	Convey("Given a running tracker", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		sink := newCaptureSink()
		tr := tracker.New(q, sink)
		go tr.Run(ctx)

		Reset(func() {
			cancel()
		})

		Convey("When a session completes its target", func() {
			So(tr.StartSession(ctx, "s1", "u1", exercise(), time.Now()), ShouldBeNil)
			// Two engage/release sweeps, with occluded frames mixed in.
			for _, f := range []model.Frame{
				hipFrame("s1", 0.7),
				occludedFrame("s1"),
				hipFrame("s1", 0.2),
				hipFrame("s1", 0.7),
				hipFrame("s1", 0.2),
			} {
				So(q.Enqueue(ctx, f), ShouldBeTrue)
			}

			Convey("Then the result reaches the sink", func() {
				result, ok := sink.wait()
				So(ok, ShouldBeTrue)
				So(result.ExerciseID, ShouldEqual, "squat")
				So(result.TotalReps, ShouldEqual, 2)
				So(result.CompletedSets, ShouldEqual, 1)
				So(result.Accuracy, ShouldEqual, 100.0)
			})

			Convey("And the session is gone afterwards", func() {
				_, ok := sink.wait()
				So(ok, ShouldBeTrue)
				So(tr.ActiveSessions(ctx), ShouldEqual, 0)
			})
		})

		Convey("When frames address an unknown session", func() {
			So(q.Enqueue(ctx, hipFrame("ghost", 0.7)), ShouldBeTrue)

			Convey("Then they are skipped without effect", func() {
				So(tr.ActiveSessions(ctx), ShouldEqual, 0)
			})
		})

		Convey("When a session is cancelled mid-flight", func() {
			So(tr.StartSession(ctx, "s2", "u1", exercise(), time.Now()), ShouldBeNil)
			So(tr.CancelSession(ctx, "s2"), ShouldBeTrue)

			Convey("Then its state is discarded and no result is emitted", func() {
				So(tr.ActiveSessions(ctx), ShouldEqual, 0)
				select {
				case <-time.After(100 * time.Millisecond):
				case r := <-sink.ch:
					So(r, ShouldBeZeroValue)
				}
			})

			Convey("And cancelling again reports absence", func() {
				So(tr.CancelSession(ctx, "s2"), ShouldBeFalse)
			})
		})

		Convey("When a session is finished early", func() {
			So(tr.StartSession(ctx, "s3", "u1", exercise(), time.Now()), ShouldBeNil)
			So(q.Enqueue(ctx, hipFrame("s3", 0.7)), ShouldBeTrue)
			So(q.Enqueue(ctx, hipFrame("s3", 0.2)), ShouldBeTrue)

			// Wait for the one rep to land before finalizing.
			deadline := time.Now().Add(2 * time.Second)
			for {
				st, ok := tr.SessionState(ctx, "s3")
				if ok && st.RepsInSet == 1 {
					break
				}
				if time.Now().After(deadline) {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}

			result, ok := tr.FinishSession(ctx, "s3")

			Convey("Then a partial summary is returned", func() {
				So(ok, ShouldBeTrue)
				So(result.TotalReps, ShouldEqual, 1)
				So(result.CompletedSets, ShouldEqual, 0)
				So(result.Accuracy, ShouldEqual, 50.0)
			})
		})

		Convey("When a duplicate session id is started", func() {
			So(tr.StartSession(ctx, "s4", "u1", exercise(), time.Now()), ShouldBeNil)
			err := tr.StartSession(ctx, "s4", "u1", exercise(), time.Now())

			Convey("Then the second start is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the tracker shuts down", func() {
			So(tr.Shutdown(context.Background()), ShouldBeNil)
		})
	})
}
