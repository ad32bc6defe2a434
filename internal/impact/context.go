// Package impact computes a sprint's live capacity snapshot and scores the
// risk of adding a candidate requirement to it.
package impact

import (
	"fmt"
	"math"
	"time"

	"github.com/zulandar/sprintdeck/internal/models"
	"gorm.io/gorm"
)

// SprintContext is the live capacity snapshot of a sprint. It is recomputed
// on every request; item membership changes between calls, so it is never
// cached.
type SprintContext struct {
	SprintID       string               `json:"sprint_id"`
	SpaceID        string               `json:"space_id"`
	SprintName     string               `json:"sprint_name"`
	SprintStatus   string               `json:"sprint_status"`
	CurrentLoad    int                  `json:"current_load"`
	ItemCount      int                  `json:"item_count"`
	DaysRemaining  int                  `json:"days_remaining"`
	SprintProgress float64              `json:"sprint_progress"` // elapsed-time percentage, 0..100
	TeamVelocity   int                  `json:"team_velocity"`
	SpaceAvgPoints float64              `json:"space_avg_points"`
	Items          []models.BacklogItem `json:"items"`
}

// Utilization returns current load as a fraction of team velocity.
func (c SprintContext) Utilization() float64 {
	if c.TeamVelocity <= 0 {
		return 0
	}
	return float64(c.CurrentLoad) / float64(c.TeamVelocity)
}

// RemainingFraction returns the unelapsed share of the sprint window.
func (c SprintContext) RemainingFraction() float64 {
	return 1 - c.SprintProgress/100
}

// Provider builds sprint contexts from stored sprint and backlog state.
type Provider struct {
	DB               *gorm.DB
	DefaultVelocity  int
	DefaultAvgPoints float64
}

// Context computes the snapshot for one sprint. Load and item count include
// items of every status; a Done item still occupies capacity.
func (p *Provider) Context(sprintID string) (SprintContext, error) {
	var sprint models.Sprint
	if err := p.DB.First(&sprint, "id = ?", sprintID).Error; err != nil {
		return SprintContext{}, fmt.Errorf("impact: sprint %s: %w", sprintID, err)
	}

	var items []models.BacklogItem
	if err := p.DB.Where("sprint_id = ?", sprintID).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return SprintContext{}, fmt.Errorf("impact: items for sprint %s: %w", sprintID, err)
	}

	load := 0
	for _, it := range items {
		load += it.StoryPoints
	}

	days, progress := sprintWindow(&sprint, time.Now().UTC())

	velocity := sprint.TeamVelocity
	if velocity <= 0 {
		velocity = p.DefaultVelocity
	}

	avg, err := p.spaceAveragePoints(sprint.SpaceID)
	if err != nil {
		return SprintContext{}, err
	}

	return SprintContext{
		SprintID:       sprint.ID,
		SpaceID:        sprint.SpaceID,
		SprintName:     sprint.Name,
		SprintStatus:   sprint.Status,
		CurrentLoad:    load,
		ItemCount:      len(items),
		DaysRemaining:  days,
		SprintProgress: progress,
		TeamVelocity:   velocity,
		SpaceAvgPoints: avg,
		Items:          items,
	}, nil
}

// spaceAveragePoints returns the historical average item size in the space,
// falling back to the configured default when the space has no items yet.
func (p *Provider) spaceAveragePoints(spaceID string) (float64, error) {
	var avg float64
	err := p.DB.Model(&models.BacklogItem{}).
		Where("space_id = ?", spaceID).
		Select("COALESCE(AVG(story_points), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("impact: average item size for space %s: %w", spaceID, err)
	}
	if avg <= 0 {
		avg = p.DefaultAvgPoints
	}
	return avg, nil
}

// sprintWindow returns calendar days remaining (ceiling, floored at zero)
// and the elapsed-time progress percentage clamped to [0,100]. Sprints
// without dates report zero progress and their planned duration.
func sprintWindow(s *models.Sprint, now time.Time) (int, float64) {
	if s.StartDate == nil || s.EndDate == nil {
		return s.PlannedDays(), 0
	}

	days := int(math.Ceil(s.EndDate.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}

	total := s.EndDate.Sub(*s.StartDate)
	if total <= 0 {
		if now.Before(*s.EndDate) {
			return days, 0
		}
		return days, 100
	}

	progress := now.Sub(*s.StartDate).Hours() / total.Hours() * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return days, progress
}
