package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage and wire format of schedule dates.
const DateLayout = "2006-01-02"

// ErrNotFound is returned when a schedule, day or meal does not exist.
var ErrNotFound = errors.New("schedule not found")

// MealType identifies a slot within a day.
type MealType string

const (
	Lunch  MealType = "lunch"
	Dinner MealType = "dinner"
)

// ParseMealType validates a meal type name.
func ParseMealType(s string) (MealType, error) {
	switch MealType(strings.ToLower(strings.TrimSpace(s))) {
	case Lunch:
		return Lunch, nil
	case Dinner:
		return Dinner, nil
	}
	return "", fmt.Errorf("invalid meal type %q: must be \"lunch\" or \"dinner\"", s)
}

// Label is the capitalized display name.
func (m MealType) Label() string {
	switch m {
	case Lunch:
		return "Lunch"
	case Dinner:
		return "Dinner"
	}
	return string(m)
}

// Schedule is the metadata of a saved schedule.
type Schedule struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// Day is one saved date and its filled slots, ordered lunch before dinner.
type Day struct {
	Date  time.Time
	Meals []Meal
}

// Meal is a persisted slot. Item ids are not foreign keys and may dangle
// after the item is deleted.
type Meal struct {
	MealType   MealType
	MainItemID string
	SideItemID string
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DateLayout date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}
