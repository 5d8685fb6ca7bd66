package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"
)

// Export is the JSON document written for a saved schedule.
type Export struct {
	Schedule   schedule.Schedule `json:"schedule"`
	Days       []scheduler.Day   `json:"days"`
	ExportedAt time.Time         `json:"exported_at"`
}

// ExportStore provides file-based storage for schedule exports.
type ExportStore struct {
	basePath string
}

// NewExportStore creates a new ExportStore and ensures the base directory exists.
func NewExportStore(basePath string) (*ExportStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &ExportStore{basePath: basePath}, nil
}

// getVersionedPath returns the full path for a schedule export.
func (s *ExportStore) getVersionedPath(scheduleID string, start time.Time) string {
	filename := fmt.Sprintf("%s_%s.json", schedule.FormatDate(start), scheduleID)
	return filepath.Join(s.basePath, filename)
}

// Save writes an export, replacing older files for the same schedule, and returns its path.
func (s *ExportStore) Save(e Export) (string, error) {
	if e.ExportedAt.IsZero() {
		e.ExportedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}

	if err := s.RemoveStaleVersions(e.Schedule.ID); err != nil {
		return "", err
	}

	filePath := s.getVersionedPath(e.Schedule.ID, e.Schedule.StartDate)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return filePath, nil
}

// Load reads the export of a schedule.
func (s *ExportStore) Load(scheduleID string, start time.Time) (*Export, error) {
	data, err := os.ReadFile(s.getVersionedPath(scheduleID, start))
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}

	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export: %w", err)
	}
	return &e, nil
}

// Exists checks if an export file exists for the schedule.
func (s *ExportStore) Exists(scheduleID string, start time.Time) bool {
	_, err := os.Stat(s.getVersionedPath(scheduleID, start))
	return !os.IsNotExist(err)
}

// List returns export file names, newest start date first.
func (s *ExportStore) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// RemoveStaleVersions removes all export files of a schedule.
func (s *ExportStore) RemoveStaleVersions(scheduleID string) error {
	if strings.ContainsAny(scheduleID, `*?[\/`) {
		return fmt.Errorf("invalid schedule id %q", scheduleID)
	}
	pattern := filepath.Join(s.basePath, fmt.Sprintf("*_%s.json", scheduleID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob stale files: %w", err)
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", match, err)
		}
	}
	return nil
}
