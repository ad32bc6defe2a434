package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestSprint_Fields(t *testing.T) {
	typ := reflect.TypeOf(Sprint{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:36")
	assertGormTag(t, typ, "SpaceID", "index")
	assertGormTag(t, typ, "SpaceID", "not null")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "Goal", "type:text")
	assertGormTag(t, typ, "Status", "default:Planned")
	assertGormTag(t, typ, "Status", "index")
	assertGormTag(t, typ, "DurationType", "default:2w")

	assertFieldType(t, typ, "StartDate", "*time.Time")
	assertFieldType(t, typ, "EndDate", "*time.Time")
	assertFieldType(t, typ, "CompletedAt", "*time.Time")
	assertFieldType(t, typ, "TeamVelocity", "int")
}

func TestBacklogItem_Fields(t *testing.T) {
	typ := reflect.TypeOf(BacklogItem{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "SpaceID", "index")
	assertGormTag(t, typ, "SprintID", "index")
	assertGormTag(t, typ, "Title", "not null")
	assertGormTag(t, typ, "Description", "type:text")
	assertGormTag(t, typ, "Type", "default:Task")
	assertGormTag(t, typ, "Priority", "default:Medium")
	assertGormTag(t, typ, "Status", "index")

	assertFieldType(t, typ, "SprintID", "*string")
	assertFieldType(t, typ, "CompletedAt", "*time.Time")
}

func TestBacklogItem_Relations(t *testing.T) {
	typ := reflect.TypeOf(BacklogItem{})

	assertGormTag(t, typ, "Space", "foreignKey:SpaceID")
	assertGormTag(t, typ, "Sprint", "foreignKey:SprintID")
	assertFieldType(t, typ, "Sprint", "*models.Sprint")
}

func TestAnalysisLog_Fields(t *testing.T) {
	typ := reflect.TypeOf(AnalysisLog{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "SpaceID", "index")
	assertGormTag(t, typ, "Metrics", "type:json")
	assertGormTag(t, typ, "Recommendation", "index")
	assertGormTag(t, typ, "CreatedAt", "index")

	assertFieldType(t, typ, "Accepted", "*bool")
	assertFieldType(t, typ, "TakenAction", "*string")
	assertFieldType(t, typ, "TargetTicketID", "*string")
}

func TestPriorityRank(t *testing.T) {
	cases := []struct {
		priority string
		want     int
	}{
		{PriorityLow, 1},
		{PriorityMedium, 2},
		{PriorityHigh, 3},
		{PriorityCritical, 4},
		{"Bogus", 2},
		{"", 2},
	}
	for _, tc := range cases {
		if got := PriorityRank(tc.priority); got != tc.want {
			t.Errorf("PriorityRank(%q) = %d, want %d", tc.priority, got, tc.want)
		}
	}
}

func TestStatusStage_Ordering(t *testing.T) {
	statuses := []string{StatusTodo, StatusInProgress, StatusInReview, StatusDone}
	for i := 1; i < len(statuses); i++ {
		if StatusStage(statuses[i-1]) >= StatusStage(statuses[i]) {
			t.Errorf("StatusStage(%q) should be < StatusStage(%q)", statuses[i-1], statuses[i])
		}
	}
	if StatusStage("unknown") != 0 {
		t.Errorf("StatusStage(unknown) = %d, want 0", StatusStage("unknown"))
	}
}

func TestSprint_PlannedDays(t *testing.T) {
	cases := []struct {
		duration string
		want     int
	}{
		{OneWeek, 7},
		{TwoWeeks, 14},
		{ThreeWeeks, 21},
		{FourWeeks, 28},
	}
	for _, tc := range cases {
		s := Sprint{DurationType: tc.duration}
		if got := s.PlannedDays(); got != tc.want {
			t.Errorf("PlannedDays(%s) = %d, want %d", tc.duration, got, tc.want)
		}
	}
}

func TestSprint_PlannedDays_Custom(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 10)
	s := Sprint{DurationType: Custom, StartDate: &start, EndDate: &end}
	if got := s.PlannedDays(); got != 10 {
		t.Errorf("PlannedDays(custom 10d) = %d, want 10", got)
	}

	s = Sprint{DurationType: Custom}
	if got := s.PlannedDays(); got != DefaultSprintDays {
		t.Errorf("PlannedDays(custom, no dates) = %d, want %d", got, DefaultSprintDays)
	}
}

func TestValidators(t *testing.T) {
	if !ValidPriority(PriorityCritical) || ValidPriority("urgent") {
		t.Error("ValidPriority misclassified")
	}
	if !ValidItemType(TypeBug) || ValidItemType("epic") {
		t.Error("ValidItemType misclassified")
	}
	if !ValidItemStatus(StatusInReview) || ValidItemStatus("blocked") {
		t.Error("ValidItemStatus misclassified")
	}
}
