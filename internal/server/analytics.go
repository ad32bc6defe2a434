package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/sprintdeck/internal/charts"
)

func (s *Server) handleBurndown(c *gin.Context) {
	chart, err := s.charts.BurndownFor(c.Param("id"))
	if err != nil {
		chartError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (s *Server) handleBurnup(c *gin.Context) {
	points, err := s.charts.BurnupFor(c.Param("id"))
	if err != nil {
		chartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"burnup": points})
}

func (s *Server) handleVelocityChart(c *gin.Context) {
	chart, err := s.charts.VelocityFor(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build velocity chart"})
		return
	}
	c.JSON(http.StatusOK, chart)
}

func chartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, charts.ErrSprintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
	case errors.Is(err, charts.ErrNoSprintDates):
		c.JSON(http.StatusConflict, gin.H{"error": "sprint has no start or end date"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build chart"})
	}
}
