// Package server exposes the sprint impact API over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zulandar/sprintdeck/internal/analysislog"
	"github.com/zulandar/sprintdeck/internal/charts"
	"github.com/zulandar/sprintdeck/internal/impact"
	"github.com/zulandar/sprintdeck/internal/notify"
	"github.com/zulandar/sprintdeck/internal/recommend"
)

// Server bundles the API's collaborators behind one router.
type Server struct {
	db       *gorm.DB
	provider *impact.Provider
	scorer   impact.Scorer
	engine   recommend.Engine
	logs     *analysislog.Store
	charts   *charts.Generator
	fanout   *notify.Fanout
	log      zerolog.Logger
}

// Opts holds the dependencies for a Server. DB is required; everything else
// has a sensible zero value.
type Opts struct {
	DB               *gorm.DB
	DefaultVelocity  int
	DefaultAvgPoints float64
	MaxItemPoints    int
	Fanout           *notify.Fanout
	Log              zerolog.Logger
}

// New builds a Server. The returned server owns no connections; Close the
// database elsewhere.
func New(opts Opts) (*Server, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("server: db is required")
	}
	s := &Server{
		db: opts.DB,
		provider: &impact.Provider{
			DB:               opts.DB,
			DefaultVelocity:  opts.DefaultVelocity,
			DefaultAvgPoints: opts.DefaultAvgPoints,
		},
		engine: recommend.Engine{MaxItemPoints: opts.MaxItemPoints},
		logs:   &analysislog.Store{DB: opts.DB},
		charts: &charts.Generator{DB: opts.DB},
		fanout: opts.Fanout,
		log:    opts.Log,
	}
	return s, nil
}

// Router builds the gin engine with every route registered. Exposed
// separately from Start so tests can drive it with httptest.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/impact/analyze", s.handleAnalyze)
		api.GET("/impact/sprints/:id/context", s.handleSprintContext)
		api.PATCH("/impact/logs/:id/feedback", s.handleFeedback)
		api.GET("/impact/spaces/:id/history", s.handleHistory)

		api.GET("/analytics/sprints/:id/burndown", s.handleBurndown)
		api.GET("/analytics/sprints/:id/burnup", s.handleBurnup)
		api.GET("/analytics/spaces/:id/velocity", s.handleVelocityChart)

		api.POST("/spaces", s.handleCreateSpace)
		api.GET("/spaces", s.handleListSpaces)
		api.GET("/spaces/:id", s.handleGetSpace)
		api.PUT("/spaces/:id", s.handleUpdateSpace)
		api.DELETE("/spaces/:id", s.handleDeleteSpace)

		api.POST("/spaces/:id/sprints", s.handleCreateSprint)
		api.GET("/spaces/:id/sprints", s.handleListSprints)
		api.GET("/sprints/:id", s.handleGetSprint)
		api.POST("/sprints/:id/start", s.handleStartSprint)
		api.POST("/sprints/:id/finish", s.handleFinishSprint)
		api.POST("/sprints/:id/simulate", s.handleSimulate)

		api.POST("/spaces/:id/items", s.handleCreateItem)
		api.GET("/spaces/:id/items", s.handleListItems)
		api.PUT("/items/:id", s.handleUpdateItem)
		api.DELETE("/items/:id", s.handleDeleteItem)

		api.POST("/ai/suggest-points", s.handleSuggestPoints)
	}
	return router
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	if port <= 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Int("port", port).Msg("api listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
