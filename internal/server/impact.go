package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zulandar/sprintdeck/internal/analysislog"
	"github.com/zulandar/sprintdeck/internal/impact"
	"github.com/zulandar/sprintdeck/internal/models"
	"github.com/zulandar/sprintdeck/internal/notify"
	"github.com/zulandar/sprintdeck/internal/recommend"
)

type analyzeRequest struct {
	SprintID    string `json:"sprint_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StoryPoints int    `json:"story_points"`
	Priority    string `json:"priority"`
	Type        string `json:"type"`
}

type analyzeResponse struct {
	Display        map[string]impact.Metric `json:"display"`
	Risk           string                   `json:"risk"`
	Recommendation recommend.Recommendation `json:"recommendation"`
	Explanation    recommend.Explanation    `json:"explanation"`
	Context        impact.SprintContext     `json:"sprint_context"`
	LogID          string                   `json:"log_id,omitempty"`

	candidate impact.Candidate
}

// runAnalysis is the shared path behind analyze and simulate.
func (s *Server) runAnalysis(c *gin.Context, sprintID string, req analyzeRequest) (*analyzeResponse, bool) {
	cand := impact.Candidate{
		Title:       req.Title,
		Description: req.Description,
		StoryPoints: req.StoryPoints,
		Priority:    req.Priority,
		Type:        req.Type,
	}
	if err := cand.Normalize(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	sctx, err := s.provider.Context(sprintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
		} else {
			s.log.Error().Err(err).Str("sprint", sprintID).Msg("context build failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sprint context"})
		}
		return nil, false
	}

	scores := s.scorer.Score(sctx, cand)
	rec := s.engine.Recommend(scores, sctx, cand, sctx.Items)
	explanation := recommend.Explain(rec, scores, cand)

	return &analyzeResponse{
		Display:        scores.DisplayMap(),
		Risk:           scores.OverallRisk(),
		Recommendation: rec,
		Explanation:    explanation,
		Context:        sctx,
		candidate:      cand,
	}, true
}

// handleAnalyze scores a candidate against a sprint, records the outcome in
// the analysis log, and alerts the chat channels when risk is critical.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SprintID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sprint_id is required"})
		return
	}

	resp, ok := s.runAnalysis(c, req.SprintID, req)
	if !ok {
		return
	}

	metricsJSON, err := json.Marshal(resp.Display)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal metrics")
		metricsJSON = []byte("{}")
	}
	entry := &models.AnalysisLog{
		SpaceID:        resp.Context.SpaceID,
		SprintID:       resp.Context.SprintID,
		SprintName:     resp.Context.SprintName,
		ItemTitle:      resp.candidate.Title,
		ItemType:       resp.candidate.Type,
		ItemPriority:   resp.candidate.Priority,
		StoryPoints:    resp.candidate.StoryPoints,
		Metrics:        string(metricsJSON),
		Risk:           resp.Risk,
		Recommendation: string(resp.Recommendation.Type),
		Reasoning:      resp.Recommendation.Reasoning,
	}
	if resp.Recommendation.Target != nil {
		entry.TargetTicketID = &resp.Recommendation.Target.ID
		entry.TargetTicketTitle = resp.Recommendation.Target.Title
	}
	if err := s.logs.Record(entry); err != nil {
		s.log.Error().Err(err).Msg("record analysis log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record analysis"})
		return
	}
	resp.LogID = entry.ID

	if resp.Risk == impact.StatusCritical && s.fanout != nil {
		ev := notify.Event{
			SpaceID:        entry.SpaceID,
			SprintName:     entry.SprintName,
			ItemTitle:      entry.ItemTitle,
			StoryPoints:    entry.StoryPoints,
			Risk:           entry.Risk,
			Recommendation: entry.Recommendation,
			Reasoning:      entry.Reasoning,
		}
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			s.fanout.Notify(nctx, ev)
		}()
	}

	c.JSON(http.StatusOK, resp)
}

// handleSimulate runs the same analysis without touching the log or the
// notifiers, for what-if exploration during planning.
func (s *Server) handleSimulate(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sprintID := c.Param("id")

	var sprint models.Sprint
	if err := s.db.First(&sprint, "id = ?", sprintID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
		return
	}
	if sprint.Status == models.SprintCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "cannot simulate against a completed sprint"})
		return
	}

	resp, ok := s.runAnalysis(c, sprintID, req)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSprintContext(c *gin.Context) {
	sctx, err := s.provider.Context(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sprint context"})
		}
		return
	}
	c.JSON(http.StatusOK, sctx)
}

type feedbackRequest struct {
	Accepted    *bool  `json:"accepted"`
	TakenAction string `json:"taken_action"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := s.logs.Patch(c.Param("id"), analysislog.Feedback{
		Accepted:    req.Accepted,
		TakenAction: req.TakenAction,
	})
	switch {
	case errors.Is(err, analysislog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "log entry not found"})
	case errors.Is(err, analysislog.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save feedback"})
	default:
		c.JSON(http.StatusOK, entry)
	}
}

type historyRow struct {
	LogID          string  `json:"log_id"`
	Date           string  `json:"date"`
	Item           string  `json:"item"`
	SprintName     string  `json:"sprint_name"`
	StoryPoints    int     `json:"story_points"`
	Priority       string  `json:"priority"`
	Risk           string  `json:"risk"`
	Recommendation string  `json:"recommendation"`
	TakenAction    *string `json:"taken_action"`
	Accepted       *bool   `json:"accepted"`
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	entries, err := s.logs.History(c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	rows := make([]historyRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, historyRow{
			LogID:          e.ID,
			Date:           e.CreatedAt.UTC().Format(time.RFC3339),
			Item:           e.ItemTitle,
			SprintName:     e.SprintName,
			StoryPoints:    e.StoryPoints,
			Priority:       e.ItemPriority,
			Risk:           e.Risk,
			Recommendation: e.Recommendation,
			TakenAction:    e.TakenAction,
			Accepted:       e.Accepted,
		})
	}
	c.JSON(http.StatusOK, gin.H{"history": rows})
}
