// Package charts builds the data series behind the sprint dashboards:
// burndown, burnup, and historical velocity.
package charts

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/sprintdeck/internal/models"
)

// ErrNoSprintDates is returned when a chart needs a sprint window the sprint
// does not have.
var ErrNoSprintDates = errors.New("charts: sprint has no start or end date")

// ErrSprintNotFound is returned when the sprint id resolves to nothing.
var ErrSprintNotFound = errors.New("charts: sprint not found")

// How many completed sprints feed the velocity chart.
const velocityWindow = 10

// BurndownPoint is one day on the ideal glide path.
type BurndownPoint struct {
	Date  string  `json:"date"`
	Ideal float64 `json:"ideal"`
}

// BurndownChart carries the ideal series plus the sprint's current point
// totals. The actuals are scalars, not a second series; the glide path is
// what the UI plots them against.
type BurndownChart struct {
	Ideal           []BurndownPoint `json:"ideal_burndown"`
	TotalPoints     float64         `json:"total_points"`
	DonePoints      float64         `json:"done_points"`
	RemainingPoints float64         `json:"remaining_points"`
}

// BurnupPoint is one day on the burnup chart. Target is cumulative completed
// points; Scope can grow mid-sprint when items are added.
type BurnupPoint struct {
	Date   string  `json:"date"`
	Target float64 `json:"target"`
	Scope  float64 `json:"scope"`
}

// VelocityBar is one completed sprint on the velocity chart.
type VelocityBar struct {
	SprintID   string  `json:"sprint_id"`
	SprintName string  `json:"sprint_name"`
	Points     float64 `json:"completed_points"`
}

// VelocityChart is the historical velocity series plus its mean.
type VelocityChart struct {
	Sprints []VelocityBar `json:"velocity_data"`
	Average float64       `json:"average_velocity"`
}

// Generator builds chart series from the database.
type Generator struct {
	DB *gorm.DB
}

func (g *Generator) sprintWithItems(sprintID string) (*models.Sprint, []models.BacklogItem, error) {
	var sprint models.Sprint
	if err := g.DB.First(&sprint, "id = ?", sprintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSprintNotFound
		}
		return nil, nil, fmt.Errorf("charts: load sprint: %w", err)
	}
	var items []models.BacklogItem
	err := g.DB.
		Where("sprint_id = ?", sprintID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, nil, fmt.Errorf("charts: load items: %w", err)
	}
	return &sprint, items, nil
}

// BurndownFor builds the burndown chart for a sprint. The ideal line runs
// linearly from the total committed points down to zero, one point per day
// from start to end inclusive; the done and remaining totals reflect the
// items' current status.
func (g *Generator) BurndownFor(sprintID string) (*BurndownChart, error) {
	sprint, items, err := g.sprintWithItems(sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.StartDate == nil || sprint.EndDate == nil {
		return nil, ErrNoSprintDates
	}

	total, done := 0, 0
	for _, it := range items {
		total += it.StoryPoints
		if it.Status == models.StatusDone {
			done += it.StoryPoints
		}
	}

	days := dayRange(*sprint.StartDate, *sprint.EndDate)
	steps := len(days) - 1
	points := make([]BurndownPoint, 0, len(days))
	for i, day := range days {
		ideal := float64(total)
		if steps > 0 {
			ideal = float64(total) * float64(steps-i) / float64(steps)
		}
		points = append(points, BurndownPoint{
			Date:  day.Format("2006-01-02"),
			Ideal: round1(ideal),
		})
	}
	return &BurndownChart{
		Ideal:           points,
		TotalPoints:     float64(total),
		DonePoints:      float64(done),
		RemainingPoints: float64(total - done),
	}, nil
}

// BurnupFor builds the burnup series: cumulative completed points against
// total scope, per day.
func (g *Generator) BurnupFor(sprintID string) ([]BurnupPoint, error) {
	sprint, items, err := g.sprintWithItems(sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.StartDate == nil || sprint.EndDate == nil {
		return nil, ErrNoSprintDates
	}

	days := dayRange(*sprint.StartDate, *sprint.EndDate)
	points := make([]BurnupPoint, 0, len(days))
	for _, day := range days {
		cutoff := endOfDay(day)
		scope := 0
		for _, it := range items {
			if !it.CreatedAt.After(cutoff) {
				scope += it.StoryPoints
			}
		}
		points = append(points, BurnupPoint{
			Date:   day.Format("2006-01-02"),
			Target: round1(float64(completedBy(items, cutoff))),
			Scope:  round1(float64(scope)),
		})
	}
	return points, nil
}

// VelocityFor builds the velocity chart for a space from its completed
// sprints, oldest completion first, at most velocityWindow bars. A sprint's
// velocity is the points of its Done items.
func (g *Generator) VelocityFor(spaceID string) (*VelocityChart, error) {
	var sprints []models.Sprint
	err := g.DB.
		Where("space_id = ? AND status = ?", spaceID, models.SprintCompleted).
		Order("completed_at ASC, id ASC").
		Find(&sprints).Error
	if err != nil {
		return nil, fmt.Errorf("charts: load sprints: %w", err)
	}
	if len(sprints) > velocityWindow {
		sprints = sprints[len(sprints)-velocityWindow:]
	}

	chart := &VelocityChart{Sprints: []VelocityBar{}}
	sum := 0.0
	for _, s := range sprints {
		var done float64
		err := g.DB.Model(&models.BacklogItem{}).
			Where("sprint_id = ? AND status = ?", s.ID, models.StatusDone).
			Select("COALESCE(SUM(story_points), 0)").
			Scan(&done).Error
		if err != nil {
			return nil, fmt.Errorf("charts: sum sprint %s: %w", s.ID, err)
		}
		chart.Sprints = append(chart.Sprints, VelocityBar{
			SprintID:   s.ID,
			SprintName: s.Name,
			Points:     round1(done),
		})
		sum += done
	}
	if len(chart.Sprints) > 0 {
		chart.Average = round1(sum / float64(len(chart.Sprints)))
	}
	return chart, nil
}

// completedBy sums story points of items completed at or before the cutoff.
func completedBy(items []models.BacklogItem, cutoff time.Time) int {
	sum := 0
	for _, it := range items {
		if it.CompletedAt != nil && !it.CompletedAt.After(cutoff) {
			sum += it.StoryPoints
		}
	}
	return sum
}

// dayRange returns each calendar day from start to end inclusive, in the
// start date's location.
func dayRange(start, end time.Time) []time.Time {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, start.Location())
	var days []time.Time
	for !day.After(last) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
