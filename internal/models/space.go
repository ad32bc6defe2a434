package models

import "time"

// Space is the top-level container for sprints and backlog items.
type Space struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"not null;size:128" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	MaxAssignees int       `gorm:"default:5" json:"max_assignees"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Sprints []Sprint      `gorm:"foreignKey:SpaceID" json:"-"`
	Items   []BacklogItem `gorm:"foreignKey:SpaceID" json:"-"`
}
