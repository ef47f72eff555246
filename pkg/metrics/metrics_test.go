package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("pipeline"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it registers without collision", func() {
				So(m, ShouldNotBeNil)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording every metric once", func() {
			Convey("Then no helper panics", func() {
				So(func() {
					RecordFrameProcessed()
					RecordFrameSkipped()
					RecordRepCounted()
					RecordSetCompleted()
					RecordTrackerLatency(1.2)
					RecordSessionStarted()
					RecordSessionCompleted()
					RecordSessionCancelled()
					UpdateActiveSessions(2)
					RecordAnalysisEvaluated(44)
					RecordBadgeEarned("first_analysis")
					UpdateQueueSize(3)
					UpdateQueueCapacity(100)
					UpdateQueueUtilization(0.03)
					RecordQueueDropped()
					RecordStoreError()
					RecordHTTPRequest("analyses", "POST", "200")
					RecordHTTPRequestDuration("analyses", "POST", "200", 5.5)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
