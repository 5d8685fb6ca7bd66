package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	prefsdb "meal-scheduler/internal/preferences/prefs_db"
)

// Repository stores per-user planning preferences.
type Repository struct {
	queries *prefsdb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: prefsdb.New(d),
		db:      d,
	}
}

// FetchRestrictions returns the user's restricted tag names.
// A user without a preferences row gets the default (empty) row created for them.
func (r *Repository) FetchRestrictions(ctx context.Context, userID string) ([]string, error) {
	row, err := r.queries.GetUserPreferences(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get preferences: %w", err)
		}
		if err := r.SetRestrictions(ctx, userID, nil); err != nil {
			return nil, err
		}
		return []string{}, nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(row.TagRestrictions), &tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tag restrictions: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// SetRestrictions replaces the user's restricted tags.
// Names are trimmed and de-duplicated without regard to case.
func (r *Repository) SetRestrictions(ctx context.Context, userID string, tags []string) error {
	data, err := json.Marshal(Normalize(tags))
	if err != nil {
		return fmt.Errorf("failed to marshal tag restrictions: %w", err)
	}

	err = r.queries.UpsertUserPreferences(ctx, prefsdb.UpsertUserPreferencesParams{
		UserID:          userID,
		TagRestrictions: string(data),
		UpdatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Normalize trims names, drops empties and keeps the first spelling of each
// case-insensitive duplicate.
func Normalize(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return slices.Clip(out)
}
