// Package tracker runs the counting side of the pipeline: one consumer
// goroutine drains the frame queue, projects each frame to the
// exercise's joint scalar and advances that session's repetition state
// machine. Every CounterState is owned here and nowhere else, so the
// machines themselves carry no locking.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/posekit/internal/domain/catalog"
	"github.com/okian/posekit/internal/domain/counter"
	"github.com/okian/posekit/internal/domain/model"
	"github.com/okian/posekit/internal/domain/pose"
	"github.com/okian/posekit/pkg/logger"
	"github.com/okian/posekit/pkg/metrics"
)

// Frame is what the tracker reads off the queue.
type Frame = model.Frame

// Queue defines how the tracker receives frames.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Frame
}

// ResultSink receives completed session results. Implementations write
// to storage; the tracker calls it off the frame path so a slow write
// never delays the next frame's counting decision.
type ResultSink interface {
	RecordResult(ctx context.Context, userID string, result model.ExerciseResult)
}

// session bundles everything one active exercise session needs.
type session struct {
	id        string
	userID    string
	selector  pose.Selector
	axis      model.Axis
	mirror    bool
	counter   *counter.Counter
	restUntil time.Time
}

// Tracker consumes frames and drives per-session counters.
type Tracker struct {
	queue   Queue
	results ResultSink

	// mu guards the session registry. Counters are only ever advanced
	// from the Run goroutine; the lock exists for lifecycle calls
	// arriving from the API side.
	mu       sync.Mutex
	sessions map[string]*session

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a tracker over the given queue and result sink.
func New(q Queue, results ResultSink, opts ...Option) *Tracker {
	t := &Tracker{
		queue:    q,
		results:  results,
		sessions: make(map[string]*session),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartSession registers a new session for an already-validated
// exercise config.
func (t *Tracker) StartSession(ctx context.Context, id, userID string, ex catalog.Exercise, now time.Time) error {
	sel, err := pose.LookupSelector(ex.Joint)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.sessions[id]; exists {
		return fmt.Errorf("start session: %w", ErrDuplicateSession)
	}
	t.sessions[id] = &session{
		id:       id,
		userID:   userID,
		selector: sel,
		axis:     model.Axis(ex.Axis),
		mirror:   ex.Mirror,
		counter:  counter.New(ex.CounterConfig(), now),
	}

	metrics.RecordSessionStarted()
	metrics.UpdateActiveSessions(len(t.sessions))
	t.logger.Info(ctx, "session started",
		logger.String("session", id),
		logger.String("exercise", ex.ID))
	return nil
}

// CancelSession discards a session's state. No result is emitted.
func (t *Tracker) CancelSession(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sessions[id]; !ok {
		return false
	}
	delete(t.sessions, id)

	metrics.RecordSessionCancelled()
	metrics.UpdateActiveSessions(len(t.sessions))
	t.logger.Info(ctx, "session cancelled", logger.String("session", id))
	return true
}

// FinishSession finalizes a session early, returning the partial
// summary and discarding the state.
func (t *Tracker) FinishSession(ctx context.Context, id string) (model.ExerciseResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return model.ExerciseResult{}, false
	}
	delete(t.sessions, id)

	result := s.counter.Result(time.Now())
	metrics.RecordSessionCompleted()
	metrics.UpdateActiveSessions(len(t.sessions))
	go t.results.RecordResult(context.WithoutCancel(ctx), s.userID, result)
	return result, true
}

// SessionState reports counting progress for one session.
func (t *Tracker) SessionState(_ context.Context, id string) (counter.State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return counter.State{}, false
	}
	return s.counter.State(), true
}

// ActiveSessions returns the number of sessions currently tracked.
func (t *Tracker) ActiveSessions(_ context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Run drains the queue until ctx is cancelled, the queue closes, or
// Shutdown is called.
func (t *Tracker) Run(ctx context.Context) {
	defer close(t.done)

	frames := t.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.shutdown:
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			t.handleFrame(ctx, f)
		}
	}
}

// Shutdown gracefully stops the tracker.
func (t *Tracker) Shutdown(ctx context.Context) error {
	close(t.shutdown)
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		t.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// handleFrame advances one session by one sample. Timestamps come from
// time.Now here, never from the caller, so cooldown arithmetic rides
// the monotonic clock.
func (t *Tracker) handleFrame(ctx context.Context, f Frame) {
	start := time.Now()
	defer func() {
		metrics.RecordTrackerLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[f.SessionID]
	if !ok {
		metrics.RecordFrameSkipped()
		return
	}

	now := start
	if now.Before(s.restUntil) {
		// Between-set rest: sampling is withheld, not failed.
		metrics.RecordFrameSkipped()
		return
	}

	v, usable := pose.Project(f.Landmarks, s.selector, s.axis, s.mirror)
	if !usable {
		// Occlusion is routine; skip the sample, keep the phase.
		metrics.RecordFrameSkipped()
		return
	}

	ev := s.counter.Observe(v, now)
	metrics.RecordFrameProcessed()

	switch ev {
	case counter.EventRepCounted:
		metrics.RecordRepCounted()
	case counter.EventSetCompleted:
		metrics.RecordRepCounted()
		metrics.RecordSetCompleted()
		s.restUntil = now.Add(s.counter.RestDuration())
		t.logger.Debug(ctx, "set completed",
			logger.String("session", s.id),
			logger.Int("completed_sets", s.counter.State().CompletedSets))
	case counter.EventSessionCompleted:
		metrics.RecordRepCounted()
		metrics.RecordSetCompleted()
		metrics.RecordSessionCompleted()

		result := s.counter.Result(now)
		delete(t.sessions, s.id)
		metrics.UpdateActiveSessions(len(t.sessions))
		t.logger.Info(ctx, "session completed",
			logger.String("session", s.id),
			logger.Int("total_reps", result.TotalReps),
			logger.Float64("accuracy", result.Accuracy))
		go t.results.RecordResult(context.WithoutCancel(ctx), s.userID, result)
	case counter.EventNone:
	}
}
