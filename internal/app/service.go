// Package service wires the analysis core together and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/posekit/internal/adapters/mq/queue"
	"github.com/okian/posekit/internal/adapters/mq/tracker"
	"github.com/okian/posekit/internal/adapters/repository"
	"github.com/okian/posekit/internal/domain/badge"
	"github.com/okian/posekit/internal/domain/catalog"
	"github.com/okian/posekit/internal/domain/counter"
	"github.com/okian/posekit/internal/domain/model"
	"github.com/okian/posekit/internal/domain/risk"
	"github.com/okian/posekit/pkg/logger"
	"github.com/okian/posekit/pkg/metrics"
)

const (
	defaultQueueCapacity       = 10_000
	defaultRecommendationLimit = 5
	shutdownTimeout            = 5 * time.Second
)

// dayFormat keys calendar days for streak counting.
const dayFormat = "2006-01-02"

// Service implements the API dependencies for the posture analysis
// system: session lifecycle, frame intake, risk analysis and the
// badge/history reads derived from it.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    *catalog.Catalog
	engine     *risk.Engine
	frameQueue *queue.InMemoryQueue
	tracker    *tracker.Tracker
	store      repository.Store
	snapshots  *repository.Snapshots

	// Configuration
	queueCapacity       int
	recommendationLimit int
	catalogPath         string

	// userMu guards the lock registry; each user's lock serializes the
	// load-append-save cycles on that user's persisted records so
	// concurrent requests never clobber each other's writes.
	userMu    sync.Mutex
	userLocks map[string]*sync.Mutex

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueCapacity sets the frame queue capacity.
func WithQueueCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueCapacity = n
		}
	}
}

// WithRecommendationLimit caps the recommendation list per analysis.
func WithRecommendationLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recommendationLimit = n
		}
	}
}

// WithCatalog injects a pre-loaded exercise/disease catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithCatalogPath sets the YAML catalog override loaded at Start.
// Ignored when WithCatalog supplied one directly.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		s.catalogPath = path
	}
}

// WithStore injects the persistence backend. Defaults to the
// in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueCapacity:       defaultQueueCapacity,
		recommendationLimit: defaultRecommendationLimit,
		userLocks:           make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.catalog == nil {
		c, err := catalog.Load(ctx, s.catalogPath)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.catalog = c
	}

	if s.store == nil {
		s.store = repository.NewInMemoryStore()
	}
	s.snapshots = repository.NewSnapshots(s.store, s.logger.Named("repository"))

	s.engine = risk.NewEngine(s.catalog.RiskCatalog(),
		risk.WithRecommendationLimit(s.recommendationLimit))

	s.frameQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueCapacity))
	metrics.UpdateQueueCapacity(s.queueCapacity)

	s.tracker = tracker.New(s.frameQueue, s, tracker.WithLogger(s.logger))

	// The run context outlives the Start call; Stop cancels it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.tracker.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "posture service started",
		logger.Int("queue_capacity", s.queueCapacity),
		logger.Int("exercises", len(s.catalog.Exercises)),
		logger.Int("diseases", len(s.catalog.Diseases)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping posture service...")

	if err := s.tracker.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "tracker shutdown incomplete", logger.Error(err))
	}
	_ = s.frameQueue.Close()
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "posture service stopped")
}

// Exercises lists the configured exercise catalog.
func (s *Service) Exercises(_ context.Context) []catalog.Exercise {
	return s.catalog.Exercises
}

// StartSession begins tracking one exercise session and returns its id.
func (s *Service) StartSession(ctx context.Context, userID, exerciseID string) (string, error) {
	ex, ok := s.catalog.Exercise(exerciseID)
	if !ok {
		return "", fmt.Errorf("%w: %s", catalog.ErrUnknownExercise, exerciseID)
	}

	id := uuid.NewString()
	if err := s.tracker.StartSession(ctx, id, userID, ex, time.Now()); err != nil {
		return "", err
	}
	return id, nil
}

// SubmitFrame hands one landmark frame to the counting pipeline.
// Returns false when the queue is full or closed; the frame is
// dropped, never waited on.
func (s *Service) SubmitFrame(ctx context.Context, f model.Frame) bool {
	accepted := s.frameQueue.Enqueue(ctx, f)
	if accepted {
		metrics.UpdateQueueUtilization(float64(s.frameQueue.Len(ctx)) / float64(s.queueCapacity))
	}
	return accepted
}

// FinishSession finalizes a session early and returns the partial
// summary. ok=false when the session id is unknown.
func (s *Service) FinishSession(ctx context.Context, id string) (model.ExerciseResult, bool) {
	return s.tracker.FinishSession(ctx, id)
}

// CancelSession discards a session without emitting a result.
func (s *Service) CancelSession(ctx context.Context, id string) bool {
	return s.tracker.CancelSession(ctx, id)
}

// SessionState reports counting progress for one active session.
func (s *Service) SessionState(ctx context.Context, id string) (counter.State, bool) {
	return s.tracker.SessionState(ctx, id)
}

// SubmitAnalysis scores one measurement set, appends it to the user's
// history and re-evaluates badges. Storage write failures are logged
// and swallowed; the returned outcome always reflects the in-memory
// evaluation.
func (s *Service) SubmitAnalysis(ctx context.Context, userID string, items []model.AnalysisItem) (model.AnalysisOutcome, error) {
	if userID == "" {
		return model.AnalysisOutcome{}, ErrMissingUser
	}

	analysis := s.engine.Evaluate(items)
	metrics.RecordAnalysisEvaluated(analysis.OverallRisk)

	lock := s.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	entry := model.HistoryEntry{
		Date:                 now,
		OverallScore:         healthScore(analysis.OverallRisk),
		HeadForwardScore:     conditionScore(analysis, "forward_head"),
		ShoulderBalanceScore: conditionScore(analysis, "shoulder_imbalance"),
	}
	history := append(s.snapshots.History(ctx, userID), entry)

	bctx := model.BadgeContext{
		TotalAnalyses:        len(history),
		CurrentStreak:        streak(history, now),
		LatestScore:          entry.OverallScore,
		HeadForwardScore:     entry.HeadForwardScore,
		ShoulderBalanceScore: entry.ShoulderBalanceScore,
		OverallScore:         entry.OverallScore,
	}
	if n := len(history); n >= 2 {
		prev := history[n-2].OverallScore
		bctx.PreviousScore = &prev
	}

	prior, ok := s.snapshots.Badges(ctx, userID)
	if !ok {
		prior = badge.Initial()
	}
	outcome := badge.Evaluate(prior, bctx, now)
	for _, id := range outcome.NewlyEarned {
		metrics.RecordBadgeEarned(id)
	}

	if err := s.snapshots.SaveHistory(ctx, userID, history); err != nil {
		s.logger.Warn(ctx, "history write failed; keeping in-memory result",
			logger.String("user", userID), logger.Error(err))
	}
	if err := s.snapshots.SaveBadges(ctx, userID, outcome.Badges, now); err != nil {
		s.logger.Warn(ctx, "badge write failed; keeping in-memory result",
			logger.String("user", userID), logger.Error(err))
	}

	s.logger.Info(ctx, "analysis evaluated",
		logger.String("user", userID),
		logger.Float64("overall_risk", analysis.OverallRisk),
		logger.Int("newly_earned", len(outcome.NewlyEarned)),
	)

	return model.AnalysisOutcome{
		Analysis:    analysis,
		Badges:      outcome.Badges,
		NewlyEarned: outcome.NewlyEarned,
	}, nil
}

// Badges returns the user's badge set, falling back to the
// all-unearned catalog when no readable state exists.
func (s *Service) Badges(ctx context.Context, userID string) []model.UserBadge {
	if badges, ok := s.snapshots.Badges(ctx, userID); ok {
		return badges
	}
	return badge.Initial()
}

// History returns the user's analysis history, oldest first.
func (s *Service) History(ctx context.Context, userID string) []model.HistoryEntry {
	return s.snapshots.History(ctx, userID)
}

// Results returns the user's completed session results.
func (s *Service) Results(ctx context.Context, userID string) []model.ExerciseResult {
	return s.snapshots.Results(ctx, userID)
}

// GetStats reports current pipeline occupancy and catalog sizes.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	return map[string]any{
		"active_sessions": s.tracker.ActiveSessions(ctx),
		"queue_depth":     s.frameQueue.Len(ctx),
		"queue_capacity":  s.queueCapacity,
		"exercises":       len(s.catalog.Exercises),
		"diseases":        len(s.catalog.Diseases),
	}
}

// RecordResult persists one completed session. Called by the tracker
// off the frame path; failures are warnings, the summary already
// reached the caller.
func (s *Service) RecordResult(ctx context.Context, userID string, result model.ExerciseResult) {
	lock := s.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.snapshots.AppendResult(ctx, userID, result); err != nil {
		s.logger.Warn(ctx, "result write failed",
			logger.String("user", userID),
			logger.String("exercise", result.ExerciseID),
			logger.Error(err))
	}
}

// lockUser returns the mutex serializing one user's persisted-state
// mutations. Locks are kept for the process lifetime; the registry
// grows with the user population, not the request rate.
func (s *Service) lockUser(userID string) *sync.Mutex {
	s.userMu.Lock()
	defer s.userMu.Unlock()

	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	return l
}

// healthScore inverts a 0-100 risk into a 0-100 health score.
func healthScore(riskValue float64) float64 {
	return 100 - riskValue
}

// conditionScore pulls one disease out of an analysis as a health
// score. An unscored condition reads as fully healthy.
func conditionScore(a model.RiskAnalysis, id string) float64 {
	for _, d := range a.Diseases {
		if d.ID == id {
			return healthScore(d.Risk)
		}
	}
	return 100
}

// streak counts consecutive calendar days with at least one analysis,
// ending today.
func streak(entries []model.HistoryEntry, now time.Time) int {
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[e.Date.Format(dayFormat)] = struct{}{}
	}

	n := 0
	for d := now; ; d = d.AddDate(0, 0, -1) {
		if _, ok := days[d.Format(dayFormat)]; !ok {
			break
		}
		n++
	}
	return n
}
