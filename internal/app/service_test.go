package service_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	service "github.com/okian/posekit/internal/app"
	"github.com/okian/posekit/internal/domain/badge"
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

// brokenStore refuses every write and holds nothing.
type brokenStore struct{}

func (brokenStore) Load(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (brokenStore) Save(_ context.Context, _ string, _ []byte) error {
	return errors.New("disk on fire")
}

// quickCatalog is a one-rep squat so session tests finish fast.
func quickCatalog() *catalog.Catalog {
	c := catalog.Default()
	c.Exercises = []catalog.Exercise{{
		ID:            "squat",
		Name:          "Squat",
		Joint:         "hip",
		Axis:          "y",
		ThresholdUp:   0.3,
		ThresholdDown: 0.6,
		SetsTarget:    1,
		RepsPerSet:    1,
	}}
	return c
}

func hipFrame(session string, y float64) model.Frame {
	lms := make([]model.Landmark, pose.LandmarkCount)
	for i := range lms {
		lms[i] = model.Landmark{X: 0.5, Y: 0.5, Visibility: 1}
	}
	lms[pose.IdxLeftHip].Y = y
	lms[pose.IdxRightHip].Y = y
	return model.Frame{SessionID: session, Landmarks: lms}
}

func items(forwardHead, shoulderTilt, shoulderAngle float64) []model.AnalysisItem {
	return []model.AnalysisItem{
		{ID: "forward_head", Value: forwardHead},
		{ID: "shoulder_tilt", Value: shoulderTilt},
		{ID: "shoulder_angle", Value: shoulderAngle},
	}
}

func earned(badges []model.UserBadge, id string) bool {
	for _, b := range badges {
		if b.ID == id {
			return b.EarnedAt != nil
		}
	}
	return false
}

func TestServiceSessions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := service.New(service.WithCatalog(quickCatalog()), service.WithQueueCapacity(64))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When starting a session for a known exercise", func() {
			id, err := svc.StartSession(ctx, "u1", "squat")
			So(err, ShouldBeNil)
			So(id, ShouldNotBeEmpty)

			Convey("Then frames drive it to completion and the result is stored", func() {
				So(svc.SubmitFrame(ctx, hipFrame(id, 0.7)), ShouldBeTrue)
				So(svc.SubmitFrame(ctx, hipFrame(id, 0.2)), ShouldBeTrue)

				deadline := time.Now().Add(2 * time.Second)
				var results []model.ExerciseResult
				for time.Now().Before(deadline) {
					results = svc.Results(ctx, "u1")
					if len(results) > 0 {
						break
					}
					time.Sleep(5 * time.Millisecond)
				}
				So(results, ShouldHaveLength, 1)
				So(results[0].TotalReps, ShouldEqual, 1)
				So(results[0].Accuracy, ShouldEqual, 100.0)
			})

			Convey("And cancelling discards it", func() {
				So(svc.CancelSession(ctx, id), ShouldBeTrue)
				_, ok := svc.SessionState(ctx, id)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When starting a session for an unknown exercise", func() {
			_, err := svc.StartSession(ctx, "u1", "moonwalk")

			Convey("Then the request is rejected", func() {
				So(errors.Is(err, catalog.ErrUnknownExercise), ShouldBeTrue)
			})
		})

		Convey("When finishing an unknown session", func() {
			_, ok := svc.FinishSession(ctx, "ghost")
			So(ok, ShouldBeFalse)
		})

		Convey("When listing exercises", func() {
			exercises := svc.Exercises(ctx)
			So(exercises, ShouldHaveLength, 1)
			So(exercises[0].ID, ShouldEqual, "squat")
		})

		Convey("When asking for stats", func() {
			stats := svc.GetStats(ctx)
			So(stats["queue_capacity"], ShouldEqual, 64)
			So(stats["exercises"], ShouldEqual, 1)
		})
	})
}

func TestServiceAnalyses(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When the first analysis is submitted", func() {
			out, err := svc.SubmitAnalysis(ctx, "u1", items(3.5, 3.0, 75))
			So(err, ShouldBeNil)

			Convey("Then first-analysis is newly earned and history grows", func() {
				So(out.NewlyEarned, ShouldContain, badge.FirstAnalysis)
				So(earned(out.Badges, badge.FirstAnalysis), ShouldBeTrue)
				So(svc.History(ctx, "u1"), ShouldHaveLength, 1)
			})

			Convey("And a later healthy analysis earns the improvement badges", func() {
				out2, err2 := svc.SubmitAnalysis(ctx, "u1", items(1.0, 1.0, 90))
				So(err2, ShouldBeNil)
				So(out2.NewlyEarned, ShouldContain, badge.FirstImprovement)
				So(earned(out2.Badges, badge.TurtleNeckEscape), ShouldBeTrue)
				So(earned(out2.Badges, badge.ShoulderBalance), ShouldBeTrue)
				So(earned(out2.Badges, badge.PerfectPosture), ShouldBeTrue)

				Convey("And earned badges never regress", func() {
					out3, err3 := svc.SubmitAnalysis(ctx, "u1", items(3.5, 3.0, 75))
					So(err3, ShouldBeNil)
					So(earned(out3.Badges, badge.PerfectPosture), ShouldBeTrue)
					So(out3.NewlyEarned, ShouldBeEmpty)
				})
			})
		})

		Convey("When analyses for one user land concurrently", func() {
			const n = 50
			errs := make(chan error, n)
			var wg sync.WaitGroup
			wg.Add(n)
			for i := 0; i < n; i++ {
				go func() {
					defer wg.Done()
					_, err := svc.SubmitAnalysis(ctx, "u2", items(3.5, 3.0, 75))
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}

			Convey("Then no history entry is lost", func() {
				So(svc.History(ctx, "u2"), ShouldHaveLength, n)
			})

			Convey("And the stored badge record keeps its earned stamp", func() {
				So(earned(svc.Badges(ctx, "u2"), badge.FirstAnalysis), ShouldBeTrue)
			})
		})

		Convey("When results for one user are recorded concurrently", func() {
			const n = 20
			var wg sync.WaitGroup
			wg.Add(n)
			for i := 0; i < n; i++ {
				go func() {
					defer wg.Done()
					svc.RecordResult(ctx, "u3", model.ExerciseResult{ExerciseID: "squat", TotalReps: 1})
				}()
			}
			wg.Wait()

			Convey("Then every result is appended", func() {
				So(svc.Results(ctx, "u3"), ShouldHaveLength, n)
			})
		})

		Convey("When the user id is missing", func() {
			_, err := svc.SubmitAnalysis(ctx, "", items(1, 1, 90))
			So(errors.Is(err, service.ErrMissingUser), ShouldBeTrue)
		})

		Convey("When no state exists for a user", func() {
			badges := svc.Badges(ctx, "nobody")

			Convey("Then the initial all-unearned set comes back", func() {
				So(badges, ShouldHaveLength, len(badge.Catalog()))
				for _, b := range badges {
					So(b.EarnedAt, ShouldBeNil)
				}
			})
		})
	})

	Convey("Given a service whose storage rejects writes", t, func() {
		svc := service.New(service.WithStore(brokenStore{}))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When an analysis is submitted", func() {
			out, err := svc.SubmitAnalysis(ctx, "u1", items(3.5, 3.0, 75))

			Convey("Then the in-memory outcome still comes back whole", func() {
				So(err, ShouldBeNil)
				So(out.NewlyEarned, ShouldContain, badge.FirstAnalysis)
				So(out.Analysis.OverallRisk, ShouldBeGreaterThan, 0)
			})
		})
	})
}
