package models

import "time"

// Actions a user can report after seeing a recommendation.
const (
	ActionFollowed = "FOLLOWED_RECOMMENDATION"
	ActionIgnored  = "IGNORED_RECOMMENDATION"
)

// AnalysisLog is the append-only audit record of one impact analysis.
// Created with nil feedback fields; the feedback patch fills Accepted and
// TakenAction exactly once. Rows are never deleted.
type AnalysisLog struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	SpaceID           string    `gorm:"size:36;index" json:"space_id"`
	SprintID          string    `gorm:"size:36;index" json:"sprint_id"`
	SprintName        string    `gorm:"size:128" json:"sprint_name"`
	ItemTitle         string    `gorm:"size:300" json:"item_title"`
	ItemType          string    `gorm:"size:16" json:"item_type"`
	ItemPriority      string    `gorm:"size:16" json:"item_priority"`
	StoryPoints       int       `json:"story_points"`
	Metrics           string    `gorm:"type:json" json:"metrics"`
	Risk              string    `gorm:"size:16" json:"risk"`
	Recommendation    string    `gorm:"size:16;index" json:"recommendation"`
	Reasoning         string    `gorm:"type:text" json:"reasoning"`
	TargetTicketID    *string   `gorm:"size:36" json:"target_ticket_id"`
	TargetTicketTitle string    `gorm:"size:300" json:"target_ticket_title"`
	Accepted          *bool     `json:"accepted"`
	TakenAction       *string   `gorm:"size:32" json:"taken_action"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
