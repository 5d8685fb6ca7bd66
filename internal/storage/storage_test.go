package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"
)

func TestExportStore(t *testing.T) {
	// Create a temporary directory for testing
	tempDir, err := os.MkdirTemp("", "storage_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := NewExportStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create ExportStore: %v", err)
	}

	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	export := Export{
		Schedule: schedule.Schedule{ID: "sched-1", UserID: "u", StartDate: start, EndDate: start.AddDate(0, 0, 6)},
		Days: []scheduler.Day{{Date: start, Meals: []scheduler.Assignment{{
			Date:     start,
			MealType: schedule.Dinner,
			Main:     catalog.Item{ID: "m", Title: "Tacos", Role: catalog.RoleMain},
			Side:     catalog.Item{ID: "s", Title: "Rice", Role: catalog.RoleSide},
		}}}},
	}

	t.Run("CheckExists-False", func(t *testing.T) {
		if store.Exists("sched-1", start) {
			t.Error("Expected export to not exist")
		}
	})

	t.Run("Save", func(t *testing.T) {
		path, err := store.Save(export)
		if err != nil {
			t.Fatalf("Failed to save export: %v", err)
		}
		if filepath.Base(path) != "2024-06-10_sched-1.json" {
			t.Errorf("Unexpected file name %s", path)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Expected file '%s' to be created, but it wasn't", path)
		}
	})

	t.Run("Load", func(t *testing.T) {
		loaded, err := store.Load("sched-1", start)
		if err != nil {
			t.Fatalf("Failed to load export: %v", err)
		}
		if loaded.Schedule.ID != "sched-1" || len(loaded.Days) != 1 {
			t.Errorf("Unexpected export: %+v", loaded)
		}
		if loaded.Days[0].Meals[0].Main.Title != "Tacos" {
			t.Errorf("Expected Tacos, got %s", loaded.Days[0].Meals[0].Main.Title)
		}
		if loaded.ExportedAt.IsZero() {
			t.Error("Expected export timestamp")
		}
	})

	t.Run("SaveReplacesStaleVersion", func(t *testing.T) {
		moved := export
		moved.Schedule.StartDate = start.AddDate(0, 0, 7)
		if _, err := store.Save(moved); err != nil {
			t.Fatalf("Failed to save export: %v", err)
		}
		names, err := store.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(names) != 1 || names[0] != "2024-06-17_sched-1.json" {
			t.Errorf("Expected only the new version, got %v", names)
		}
	})

	t.Run("RejectsPatternID", func(t *testing.T) {
		if err := store.RemoveStaleVersions("*"); err == nil {
			t.Error("Expected error for glob characters in id")
		}
	})
}
