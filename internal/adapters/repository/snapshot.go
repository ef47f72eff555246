package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/posekit/internal/domain/model"
	"github.com/okian/posekit/pkg/logger"
	"github.com/okian/posekit/pkg/metrics"
)

// BadgeRecord is the persisted badge state for one user.
type BadgeRecord struct {
	UserID      string            `json:"user_id"`
	Badges      []model.UserBadge `json:"badges"`
	LastUpdated time.Time         `json:"last_updated"`
}

// HistoryRecord is the persisted analysis history for one user.
type HistoryRecord struct {
	UserID  string               `json:"user_id"`
	Entries []model.HistoryEntry `json:"entries"`
}

// ResultRecord is the persisted session results for one user.
type ResultRecord struct {
	UserID  string                 `json:"user_id"`
	Results []model.ExerciseResult `json:"results"`
}

// Snapshots layers typed records over the opaque Store. Read failures
// and corrupt payloads decode to "absent" so a session never fails on
// bad prior data; only genuine storage errors are logged and counted.
type Snapshots struct {
	store  Store
	logger logger.Logger
}

// NewSnapshots wraps a store with the typed codecs.
func NewSnapshots(store Store, log logger.Logger) *Snapshots {
	return &Snapshots{store: store, logger: log}
}

// Badges loads the prior badge set. ok=false means the caller should
// fall back to the initial (all-unearned) set.
func (s *Snapshots) Badges(ctx context.Context, userID string) ([]model.UserBadge, bool) {
	var rec BadgeRecord
	if !s.load(ctx, BadgeKey(userID), &rec) {
		return nil, false
	}
	// A wrong user id in a shared record is treated as absence.
	if rec.UserID != userID || len(rec.Badges) == 0 {
		return nil, false
	}
	return rec.Badges, true
}

// SaveBadges persists the badge set. The caller keeps the in-memory
// result regardless; a returned error is a non-fatal warning.
func (s *Snapshots) SaveBadges(ctx context.Context, userID string, badges []model.UserBadge, now time.Time) error {
	return s.save(ctx, BadgeKey(userID), BadgeRecord{
		UserID:      userID,
		Badges:      badges,
		LastUpdated: now,
	})
}

// History loads prior analysis entries; absent or corrupt decodes to
// an empty history.
func (s *Snapshots) History(ctx context.Context, userID string) []model.HistoryEntry {
	var rec HistoryRecord
	if !s.load(ctx, HistoryKey(userID), &rec) || rec.UserID != userID {
		return nil
	}
	return rec.Entries
}

// SaveHistory persists the full entry list for a user.
func (s *Snapshots) SaveHistory(ctx context.Context, userID string, entries []model.HistoryEntry) error {
	return s.save(ctx, HistoryKey(userID), HistoryRecord{UserID: userID, Entries: entries})
}

// Results loads completed session results for a user.
func (s *Snapshots) Results(ctx context.Context, userID string) []model.ExerciseResult {
	var rec ResultRecord
	if !s.load(ctx, ResultKey(userID), &rec) || rec.UserID != userID {
		return nil
	}
	return rec.Results
}

// AppendResult adds one completed session to the user's record.
func (s *Snapshots) AppendResult(ctx context.Context, userID string, result model.ExerciseResult) error {
	results := append(s.Results(ctx, userID), result)
	return s.save(ctx, ResultKey(userID), ResultRecord{UserID: userID, Results: results})
}

func (s *Snapshots) load(ctx context.Context, key string, out any) bool {
	raw, ok, err := s.store.Load(ctx, key)
	if err != nil {
		metrics.RecordStoreError()
		s.logger.Error(ctx, "storage read failed; using initial state",
			logger.String("key", key), logger.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn(ctx, "corrupt persisted payload; using initial state",
			logger.String("key", key), logger.Error(err))
		return false
	}
	return true
}

func (s *Snapshots) save(ctx context.Context, key string, rec any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := s.store.Save(ctx, key, raw); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}
