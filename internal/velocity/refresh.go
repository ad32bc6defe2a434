// Package velocity recomputes team velocity from completed sprints and
// stamps it onto the sprints still being planned or worked.
package velocity

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zulandar/sprintdeck/internal/charts"
	"github.com/zulandar/sprintdeck/internal/models"
)

// Refresher updates TeamVelocity on open sprints. Default fills in when a
// space has no completed history yet.
type Refresher struct {
	DB      *gorm.DB
	Default int
	Log     zerolog.Logger
}

// RefreshSpace recomputes one space's velocity and applies it to its
// Planned and Active sprints. Returns the velocity that was applied.
func (r *Refresher) RefreshSpace(spaceID string) (int, error) {
	gen := &charts.Generator{DB: r.DB}
	chart, err := gen.VelocityFor(spaceID)
	if err != nil {
		return 0, fmt.Errorf("velocity: compute for space %s: %w", spaceID, err)
	}

	applied := r.Default
	if len(chart.Sprints) > 0 && chart.Average > 0 {
		applied = int(chart.Average)
	}

	err = r.DB.Model(&models.Sprint{}).
		Where("space_id = ? AND status IN ?", spaceID, []string{models.SprintPlanned, models.SprintActive}).
		Update("team_velocity", applied).Error
	if err != nil {
		return 0, fmt.Errorf("velocity: apply to space %s: %w", spaceID, err)
	}
	return applied, nil
}

// RefreshAll refreshes every space. A failing space is logged and skipped so
// one bad space cannot stall the rest.
func (r *Refresher) RefreshAll() error {
	var spaceIDs []string
	if err := r.DB.Model(&models.Space{}).Pluck("id", &spaceIDs).Error; err != nil {
		return fmt.Errorf("velocity: list spaces: %w", err)
	}
	for _, id := range spaceIDs {
		applied, err := r.RefreshSpace(id)
		if err != nil {
			r.Log.Warn().Err(err).Str("space", id).Msg("velocity refresh failed")
			continue
		}
		r.Log.Debug().Str("space", id).Int("velocity", applied).Msg("velocity refreshed")
	}
	return nil
}
