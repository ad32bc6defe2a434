package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zulandar/sprintdeck/internal/models"
	"github.com/zulandar/sprintdeck/internal/suggest"
)

type spaceRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	MaxAssignees int    `json:"max_assignees"`
}

func (s *Server) handleCreateSpace(c *gin.Context) {
	var req spaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	space := &models.Space{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		MaxAssignees: req.MaxAssignees,
	}
	if space.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if err := s.db.Create(space).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create space"})
		return
	}
	c.JSON(http.StatusCreated, space)
}

func (s *Server) handleListSpaces(c *gin.Context) {
	var spaces []models.Space
	if err := s.db.Order("created_at ASC").Find(&spaces).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list spaces"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"spaces": spaces})
}

func (s *Server) handleGetSpace(c *gin.Context) {
	var space models.Space
	if err := s.db.First(&space, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "space not found"})
		return
	}
	c.JSON(http.StatusOK, space)
}

func (s *Server) handleUpdateSpace(c *gin.Context) {
	var space models.Space
	if err := s.db.First(&space, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "space not found"})
		return
	}
	var req spaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	space.Name = strings.TrimSpace(req.Name)
	space.Description = req.Description
	if req.MaxAssignees > 0 {
		space.MaxAssignees = req.MaxAssignees
	}
	if err := s.db.Save(&space).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update space"})
		return
	}
	c.JSON(http.StatusOK, space)
}

func (s *Server) handleDeleteSpace(c *gin.Context) {
	res := s.db.Delete(&models.Space{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete space"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "space not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type sprintRequest struct {
	Name         string     `json:"name" binding:"required"`
	Goal         string     `json:"goal"`
	DurationType string     `json:"duration_type"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	TeamVelocity int        `json:"team_velocity"`
}

func (s *Server) handleCreateSprint(c *gin.Context) {
	spaceID := c.Param("id")
	var space models.Space
	if err := s.db.First(&space, "id = ?", spaceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "space not found"})
		return
	}
	var req sprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sprint := &models.Sprint{
		ID:           uuid.NewString(),
		SpaceID:      spaceID,
		Name:         strings.TrimSpace(req.Name),
		Goal:         req.Goal,
		DurationType: req.DurationType,
		Status:       models.SprintPlanned,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		TeamVelocity: req.TeamVelocity,
	}
	if sprint.DurationType == "" {
		sprint.DurationType = models.TwoWeeks
	}
	if err := s.db.Create(sprint).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create sprint"})
		return
	}
	c.JSON(http.StatusCreated, sprint)
}

func (s *Server) handleListSprints(c *gin.Context) {
	var sprints []models.Sprint
	err := s.db.
		Where("space_id = ?", c.Param("id")).
		Order("created_at ASC").
		Find(&sprints).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sprints"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sprints": sprints})
}

func (s *Server) handleGetSprint(c *gin.Context) {
	var sprint models.Sprint
	if err := s.db.First(&sprint, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
		return
	}
	c.JSON(http.StatusOK, sprint)
}

// handleStartSprint activates a planned sprint. A space runs at most one
// active sprint at a time; starting stamps the window from the duration type
// when dates are missing.
func (s *Server) handleStartSprint(c *gin.Context) {
	var sprint models.Sprint
	if err := s.db.First(&sprint, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
		return
	}
	if sprint.Status != models.SprintPlanned {
		c.JSON(http.StatusConflict, gin.H{"error": "only a planned sprint can be started"})
		return
	}

	var active int64
	s.db.Model(&models.Sprint{}).
		Where("space_id = ? AND status = ?", sprint.SpaceID, models.SprintActive).
		Count(&active)
	if active > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "space already has an active sprint"})
		return
	}

	now := time.Now().UTC()
	if sprint.StartDate == nil {
		sprint.StartDate = &now
	}
	if sprint.EndDate == nil {
		end := sprint.StartDate.AddDate(0, 0, sprint.PlannedDays())
		sprint.EndDate = &end
	}
	sprint.Status = models.SprintActive
	if err := s.db.Save(&sprint).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start sprint"})
		return
	}
	c.JSON(http.StatusOK, sprint)
}

// handleFinishSprint completes an active sprint. Unfinished items move back
// to the unassigned backlog; the completion timestamp feeds the velocity
// history.
func (s *Server) handleFinishSprint(c *gin.Context) {
	var sprint models.Sprint
	if err := s.db.First(&sprint, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
		return
	}
	if sprint.Status != models.SprintActive {
		c.JSON(http.StatusConflict, gin.H{"error": "only an active sprint can be finished"})
		return
	}

	now := time.Now().UTC()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.BacklogItem{}).
			Where("sprint_id = ? AND status != ?", sprint.ID, models.StatusDone).
			Update("sprint_id", nil).Error; err != nil {
			return err
		}
		sprint.Status = models.SprintCompleted
		sprint.CompletedAt = &now
		return tx.Save(&sprint).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to finish sprint"})
		return
	}
	c.JSON(http.StatusOK, sprint)
}

type itemRequest struct {
	SprintID    *string `json:"sprint_id"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Priority    string  `json:"priority"`
	StoryPoints int     `json:"story_points"`
	Status      string  `json:"status"`
}

func (s *Server) handleCreateItem(c *gin.Context) {
	spaceID := c.Param("id")
	var space models.Space
	if err := s.db.First(&space, "id = ?", spaceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "space not found"})
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := &models.BacklogItem{
		ID:          uuid.NewString(),
		SpaceID:     spaceID,
		SprintID:    req.SprintID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		StoryPoints: req.StoryPoints,
		Status:      req.Status,
	}
	if err := normalizeItem(item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item.SprintID != nil && !s.checkSprintRef(c, *item.SprintID, item.SpaceID) {
		return
	}
	if err := s.db.Create(item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) handleListItems(c *gin.Context) {
	q := s.db.Where("space_id = ?", c.Param("id"))
	switch c.Query("sprint_id") {
	case "":
	case "none":
		q = q.Where("sprint_id IS NULL")
	default:
		q = q.Where("sprint_id = ?", c.Query("sprint_id"))
	}
	var items []models.BacklogItem
	if err := q.Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// handleUpdateItem mutates an item in place. Transitioning into Done stamps
// the completion time; leaving Done clears it.
func (s *Server) handleUpdateItem(c *gin.Context) {
	var item models.BacklogItem
	if err := s.db.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wasDone := item.Status == models.StatusDone
	item.SprintID = req.SprintID
	item.Title = strings.TrimSpace(req.Title)
	item.Description = req.Description
	item.Type = req.Type
	item.Priority = req.Priority
	item.StoryPoints = req.StoryPoints
	item.Status = req.Status
	if err := normalizeItem(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item.SprintID != nil && !s.checkSprintRef(c, *item.SprintID, item.SpaceID) {
		return
	}

	isDone := item.Status == models.StatusDone
	if isDone && !wasDone {
		now := time.Now().UTC()
		item.CompletedAt = &now
	} else if !isDone {
		item.CompletedAt = nil
	}

	if err := s.db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteItem(c *gin.Context) {
	res := s.db.Delete(&models.BacklogItem{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete item"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// checkSprintRef rejects an item's sprint assignment when the sprint does
// not exist or lives in another space. A cross-space reference would count
// the item into a sprint load its own space never sees. Writes the error
// response itself and reports whether the reference is usable.
func (s *Server) checkSprintRef(c *gin.Context, sprintID, spaceID string) bool {
	var sprint models.Sprint
	if err := s.db.First(&sprint, "id = ?", sprintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sprint does not exist"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve sprint"})
		}
		return false
	}
	if sprint.SpaceID != spaceID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sprint belongs to a different space"})
		return false
	}
	return true
}

// normalizeItem applies defaults and validates the enum fields.
func normalizeItem(item *models.BacklogItem) error {
	if item.Title == "" {
		return errors.New("title is required")
	}
	if item.Type == "" {
		item.Type = models.TypeTask
	}
	if item.Priority == "" {
		item.Priority = models.PriorityMedium
	}
	if item.Status == "" {
		item.Status = models.StatusTodo
	}
	if item.StoryPoints <= 0 {
		item.StoryPoints = 1
	}
	if !models.ValidItemType(item.Type) {
		return errors.New("invalid item type")
	}
	if !models.ValidPriority(item.Priority) {
		return errors.New("invalid priority")
	}
	if !models.ValidItemStatus(item.Status) {
		return errors.New("invalid status")
	}
	return nil
}

type suggestRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleSuggestPoints(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	suggestion, err := suggest.Estimate(req.Title, req.Description)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, suggestion)
}
