package models

import "time"

// Backlog item types.
const (
	TypeTask    = "Task"
	TypeBug     = "Bug"
	TypeStory   = "Story"
	TypeSubtask = "Subtask"
)

// Priorities, lowest to highest.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Item statuses in workflow order.
const (
	StatusTodo       = "To Do"
	StatusInProgress = "In Progress"
	StatusInReview   = "In Review"
	StatusDone       = "Done"
)

// PriorityRank maps a priority to its ordinal, Medium for unknown values.
func PriorityRank(p string) int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 2
}

// StatusStage maps an item status to its workflow ordinal. Earlier stages
// carry less invested work.
func StatusStage(s string) int {
	switch s {
	case StatusTodo:
		return 0
	case StatusInProgress:
		return 1
	case StatusInReview:
		return 2
	case StatusDone:
		return 3
	}
	return 0
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// ValidItemType reports whether t is a known backlog item type.
func ValidItemType(t string) bool {
	switch t {
	case TypeTask, TypeBug, TypeStory, TypeSubtask:
		return true
	}
	return false
}

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

// BacklogItem is a unit of work. A nil SprintID means the item sits in the
// unassigned backlog; reassignment is a field mutation, never a new row.
type BacklogItem struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	SpaceID     string     `gorm:"size:36;index;not null" json:"space_id"`
	SprintID    *string    `gorm:"size:36;index" json:"sprint_id"`
	Title       string     `gorm:"not null;size:300" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Type        string     `gorm:"size:16;default:Task" json:"type"`
	Priority    string     `gorm:"size:16;default:Medium" json:"priority"`
	StoryPoints int        `gorm:"default:1" json:"story_points"`
	Status      string     `gorm:"size:16;default:'To Do';index" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Space  *Space  `gorm:"foreignKey:SpaceID" json:"-"`
	Sprint *Sprint `gorm:"foreignKey:SprintID" json:"-"`
}
