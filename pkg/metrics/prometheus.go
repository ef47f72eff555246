// Package metrics provides Prometheus metrics for the posekit service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Pipeline metrics - the per-frame counting path
	framesProcessed prometheus.Counter
	framesSkipped   prometheus.Counter
	repsCounted     prometheus.Counter
	setsCompleted   prometheus.Counter
	trackerLatency  prometheus.Histogram

	// Session metrics
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsCancelled prometheus.Counter
	activeSessions    prometheus.Gauge

	// Analysis metrics
	analysesEvaluated prometheus.Counter
	overallRiskScore  prometheus.Histogram
	badgesEarned      *prometheus.CounterVec

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueDropped     prometheus.Counter

	// Store metrics
	storeErrors prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers every metric.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "posekit",
		enabled:          true,
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.framesProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "frames_processed_total",
		Help: "Landmark frames that reached a repetition counter.",
	})
	m.framesSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "frames_skipped_total",
		Help: "Frames dropped before counting (occlusion, unknown session, rest interval).",
	})
	m.repsCounted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "reps_counted_total",
		Help: "Repetitions registered across all sessions.",
	})
	m.setsCompleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sets_completed_total",
		Help: "Sets closed across all sessions.",
	})
	m.trackerLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "tracker_frame_latency_ms",
		Help:    "Per-frame tracker processing latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.sessionsStarted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sessions_started_total",
		Help: "Exercise sessions started.",
	})
	m.sessionsCompleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sessions_completed_total",
		Help: "Exercise sessions that reached their sets target or were finalized.",
	})
	m.sessionsCancelled = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "sessions_cancelled_total",
		Help: "Exercise sessions discarded without a result.",
	})
	m.activeSessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "active_sessions",
		Help: "Sessions currently tracked.",
	})

	m.analysesEvaluated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "analyses_evaluated_total",
		Help: "Risk analyses computed.",
	})
	m.overallRiskScore = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "overall_risk_score",
		Help:    "Distribution of overall risk scores.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
	m.badgesEarned = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "badges_earned_total",
		Help: "Badges newly earned, by badge id.",
	}, []string{"badge"})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "frame_queue_size",
		Help: "Frames waiting in the queue.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "frame_queue_capacity",
		Help: "Configured frame queue capacity.",
	})
	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "frame_queue_utilization",
		Help: "Queue fill ratio in [0,1].",
	})
	m.queueDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "frame_queue_dropped_total",
		Help: "Frames rejected because the queue was full or closed.",
	})

	m.storeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "store_errors_total",
		Help: "Storage read/write failures surfaced as warnings.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests, by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_bytes",
		Help: "Allocated heap bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutines",
		Help: "Current goroutine count.",
	})

	return m
}

// Package-level helpers over the global manager.

func RecordFrameProcessed() { globalManager.framesProcessed.Inc() }
func RecordFrameSkipped()   { globalManager.framesSkipped.Inc() }
func RecordRepCounted()     { globalManager.repsCounted.Inc() }
func RecordSetCompleted()   { globalManager.setsCompleted.Inc() }

func RecordTrackerLatency(latencyMs float64) {
	globalManager.trackerLatency.Observe(latencyMs)
}

func RecordSessionStarted()   { globalManager.sessionsStarted.Inc() }
func RecordSessionCompleted() { globalManager.sessionsCompleted.Inc() }
func RecordSessionCancelled() { globalManager.sessionsCancelled.Inc() }

func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

func RecordAnalysisEvaluated(overallRisk float64) {
	globalManager.analysesEvaluated.Inc()
	globalManager.overallRiskScore.Observe(overallRisk)
}

func RecordBadgeEarned(badgeID string) {
	globalManager.badgesEarned.WithLabelValues(badgeID).Inc()
}

func UpdateQueueSize(size int)         { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

func RecordQueueDropped() { globalManager.queueDropped.Inc() }
func RecordStoreError()   { globalManager.storeErrors.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
