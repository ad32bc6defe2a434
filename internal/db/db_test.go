package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/zulandar/sprintdeck/internal/config"
	"github.com/zulandar/sprintdeck/internal/models"
)

func TestDSN(t *testing.T) {
	cfg := config.DBConfig{User: "deck", Host: "10.0.0.5", Port: 3307, Database: "sprintdeck_prod"}
	got := DSN(cfg)
	want := "deck@tcp(10.0.0.5:3307)/sprintdeck_prod?parseTime=true"
	if got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestConnect_Sqlite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Connect(config.DBConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	for _, m := range AllModels() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("missing table for %T", m)
		}
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DBConfig{Driver: "postgres"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if !strings.Contains(err.Error(), "unsupported driver") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "unsupported driver")
	}
}

func TestReset(t *testing.T) {
	db, err := ConnectMemory()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	db.Create(&models.Space{ID: "s1", Name: "Platform"})

	if err := Reset(db); err != nil {
		t.Fatalf("reset: %v", err)
	}

	var count int64
	db.Model(&models.Space{}).Count(&count)
	if count != 0 {
		t.Errorf("space count after reset = %d, want 0", count)
	}
	if !db.Migrator().HasTable(&models.Space{}) {
		t.Error("spaces table missing after reset")
	}
}
