package velocity

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/sprintdeck/internal/models"
)

func testRefresher(t *testing.T) (*Refresher, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Space{}, &models.Sprint{}, &models.BacklogItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &Refresher{DB: db, Default: 30, Log: zerolog.Nop()}, db
}

func seedCompletedSprint(t *testing.T, db *gorm.DB, spaceID, sprintID string, donePoints int, completed time.Time) {
	t.Helper()
	s := &models.Sprint{
		ID:          sprintID,
		SpaceID:     spaceID,
		Name:        sprintID,
		Status:      models.SprintCompleted,
		CompletedAt: &completed,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed sprint: %v", err)
	}
	finished := completed.Add(-time.Hour)
	item := &models.BacklogItem{
		SpaceID:     spaceID,
		SprintID:    &sprintID,
		Title:       sprintID + "-item",
		StoryPoints: donePoints,
		Status:      models.StatusDone,
		CompletedAt: &finished,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
}

func TestRefreshSpaceAppliesHistoricalAverage(t *testing.T) {
	r, db := testRefresher(t)
	if err := db.Create(&models.Space{ID: "space1", Name: "Core"}).Error; err != nil {
		t.Fatalf("seed space: %v", err)
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedCompletedSprint(t, db, "space1", "done1", 20, base)
	seedCompletedSprint(t, db, "space1", "done2", 30, base.AddDate(0, 0, 14))

	active := &models.Sprint{ID: "active", SpaceID: "space1", Name: "Active", Status: models.SprintActive, TeamVelocity: 10}
	planned := &models.Sprint{ID: "planned", SpaceID: "space1", Name: "Planned", Status: models.SprintPlanned}
	for _, s := range []*models.Sprint{active, planned} {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	applied, err := r.RefreshSpace("space1")
	if err != nil {
		t.Fatalf("RefreshSpace: %v", err)
	}
	if applied != 25 {
		t.Errorf("applied = %d, want 25 (mean of 20 and 30)", applied)
	}

	for _, id := range []string{"active", "planned"} {
		var s models.Sprint
		if err := db.First(&s, "id = ?", id).Error; err != nil {
			t.Fatalf("reload %s: %v", id, err)
		}
		if s.TeamVelocity != 25 {
			t.Errorf("%s velocity = %d, want 25", id, s.TeamVelocity)
		}
	}

	// Completed sprints keep their recorded velocity.
	var done models.Sprint
	if err := db.First(&done, "id = ?", "done1").Error; err != nil {
		t.Fatalf("reload done1: %v", err)
	}
	if done.TeamVelocity == 25 {
		t.Error("completed sprint velocity was overwritten")
	}
}

func TestRefreshSpaceFallsBackToDefault(t *testing.T) {
	r, db := testRefresher(t)
	if err := db.Create(&models.Space{ID: "fresh", Name: "Fresh"}).Error; err != nil {
		t.Fatalf("seed space: %v", err)
	}
	planned := &models.Sprint{ID: "p1", SpaceID: "fresh", Name: "First", Status: models.SprintPlanned}
	if err := db.Create(planned).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	applied, err := r.RefreshSpace("fresh")
	if err != nil {
		t.Fatalf("RefreshSpace: %v", err)
	}
	if applied != 30 {
		t.Errorf("applied = %d, want default 30", applied)
	}
}

func TestRefreshAllCoversEverySpace(t *testing.T) {
	r, db := testRefresher(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		spaceID := fmt.Sprintf("space%d", i)
		if err := db.Create(&models.Space{ID: spaceID, Name: spaceID}).Error; err != nil {
			t.Fatalf("seed space: %v", err)
		}
		seedCompletedSprint(t, db, spaceID, spaceID+"-done", (i+1)*10, base)
		s := &models.Sprint{ID: spaceID + "-open", SpaceID: spaceID, Name: "open", Status: models.SprintActive}
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seed open sprint: %v", err)
		}
	}

	if err := r.RefreshAll(); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}

	for i, want := range []int{10, 20} {
		var s models.Sprint
		if err := db.First(&s, "id = ?", fmt.Sprintf("space%d-open", i)).Error; err != nil {
			t.Fatalf("reload: %v", err)
		}
		if s.TeamVelocity != want {
			t.Errorf("space%d velocity = %d, want %d", i, s.TeamVelocity, want)
		}
	}
}
