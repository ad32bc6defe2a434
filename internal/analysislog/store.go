// Package analysislog persists analysis outcomes and the feedback users
// later attach to them. The log is the raw material for judging how often
// recommendations get followed.
package analysislog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zulandar/sprintdeck/internal/models"
)

// ErrNotFound is returned when feedback targets a log entry that was never
// recorded.
var ErrNotFound = errors.New("analysislog: entry not found")

// ErrInvalidAction is returned when feedback carries an unknown taken action.
var ErrInvalidAction = errors.New("analysislog: invalid taken action")

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Store reads and writes analysis log entries.
type Store struct {
	DB *gorm.DB
}

// Record persists a new log entry, assigning an id when the caller left it
// empty. The entry's own timestamps come from gorm.
func (s *Store) Record(entry *models.AnalysisLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := s.DB.Create(entry).Error; err != nil {
		return fmt.Errorf("analysislog: record: %w", err)
	}
	return nil
}

// Feedback is a user's verdict on a recorded recommendation. A nil Accepted
// leaves the existing value untouched; TakenAction may be empty.
type Feedback struct {
	Accepted    *bool
	TakenAction string
}

// Patch applies feedback to an existing entry. Re-applying the same feedback
// is a no-op beyond the timestamp bump.
func (s *Store) Patch(id string, fb Feedback) (*models.AnalysisLog, error) {
	if fb.TakenAction != "" &&
		fb.TakenAction != models.ActionFollowed &&
		fb.TakenAction != models.ActionIgnored {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, fb.TakenAction)
	}

	var entry models.AnalysisLog
	if err := s.DB.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("analysislog: patch: %w", err)
	}

	updates := map[string]any{}
	if fb.Accepted != nil {
		entry.Accepted = fb.Accepted
		updates["accepted"] = *fb.Accepted
	}
	if fb.TakenAction != "" {
		entry.TakenAction = &fb.TakenAction
		updates["taken_action"] = fb.TakenAction
	}
	if len(updates) == 0 {
		return &entry, nil
	}
	if err := s.DB.Model(&entry).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("analysislog: patch: %w", err)
	}
	return &entry, nil
}

// History returns a space's log entries newest first. A non-positive limit
// falls back to the default; limits above the cap are clamped.
func (s *Store) History(spaceID string, limit int) ([]models.AnalysisLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	var entries []models.AnalysisLog
	err := s.DB.
		Where("space_id = ?", spaceID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("analysislog: history: %w", err)
	}
	return entries, nil
}

// Classify maps what the user actually did against what was recommended.
// Matching actions count as followed, anything else as ignored.
func Classify(executed, recommended string) string {
	if executed == recommended {
		return models.ActionFollowed
	}
	return models.ActionIgnored
}
