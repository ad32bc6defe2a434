package models

import "time"

// Sprint statuses.
const (
	SprintPlanned   = "Planned"
	SprintActive    = "Active"
	SprintCompleted = "Completed"
)

// Sprint duration types.
const (
	OneWeek    = "1w"
	TwoWeeks   = "2w"
	ThreeWeeks = "3w"
	FourWeeks  = "4w"
	Custom     = "custom"
)

// DefaultSprintDays is the planned length assumed when a sprint has no dates.
const DefaultSprintDays = 14

// Sprint is a time-boxed iteration holding a subset of backlog items.
type Sprint struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	SpaceID      string     `gorm:"size:36;index;not null" json:"space_id"`
	Name         string     `gorm:"not null;size:128" json:"name"`
	Goal         string     `gorm:"type:text" json:"goal"`
	DurationType string     `gorm:"size:16;default:2w" json:"duration_type"`
	Status       string     `gorm:"size:16;default:Planned;index" json:"status"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	TeamVelocity int        `gorm:"default:0" json:"team_velocity"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at"`

	Space *Space        `gorm:"foreignKey:SpaceID" json:"-"`
	Items []BacklogItem `gorm:"foreignKey:SprintID" json:"-"`
}

// PlannedDays returns the sprint length in days implied by its duration type.
// Custom sprints derive the length from their dates; without dates the
// default sprint length applies.
func (s *Sprint) PlannedDays() int {
	switch s.DurationType {
	case OneWeek:
		return 7
	case TwoWeeks:
		return 14
	case ThreeWeeks:
		return 21
	case FourWeeks:
		return 28
	}
	if s.StartDate != nil && s.EndDate != nil {
		days := int(s.EndDate.Sub(*s.StartDate).Hours() / 24)
		if days > 0 {
			return days
		}
	}
	return DefaultSprintDays
}
