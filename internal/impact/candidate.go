package impact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/sprintdeck/internal/models"
)

// ErrInvalidInput marks candidate validation failures, rejected before any
// scoring happens.
var ErrInvalidInput = errors.New("invalid input")

// Candidate is a proposed requirement being evaluated against a sprint.
// It is not persisted until an executed action materializes it into a
// backlog item.
type Candidate struct {
	Title       string
	Description string
	StoryPoints int
	Priority    string
	Type        string
}

// Normalize fills defaults and validates the candidate.
func (c *Candidate) Normalize() error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if c.StoryPoints <= 0 {
		return fmt.Errorf("%w: story_points must be positive, got %d", ErrInvalidInput, c.StoryPoints)
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(c.Priority) {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, c.Priority)
	}
	if c.Type == "" {
		c.Type = models.TypeTask
	}
	if !models.ValidItemType(c.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidInput, c.Type)
	}
	return nil
}
