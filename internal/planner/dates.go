package planner

import (
	"fmt"
	"time"
)

// maxRangeDays caps a single generation run.
const maxRangeDays = 92

// GetNextMonday returns the date of the Monday strictly after t, at midnight UTC.
func GetNextMonday(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return d.AddDate(0, 0, offset)
}

// WeekRange returns the seven-day range starting at start.
func WeekRange(start time.Time) (time.Time, time.Time) {
	return start, start.AddDate(0, 0, 6)
}

// DateRange lists every calendar day from start to end inclusive, as UTC midnights.
func DateRange(start, end time.Time) ([]time.Time, error) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return nil, fmt.Errorf("end %s is before start %s: %w", e.Format("2006-01-02"), s.Format("2006-01-02"), ErrInvalidRange)
	}

	var dates []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
		if len(dates) > maxRangeDays {
			return nil, fmt.Errorf("range longer than %d days: %w", maxRangeDays, ErrInvalidRange)
		}
	}
	return dates, nil
}
