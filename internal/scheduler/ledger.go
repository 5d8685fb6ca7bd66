package scheduler

import "strings"

// Ledger is the run-scoped bookkeeping of one generation. Counts only grow.
type Ledger struct {
	// Usage counts how many filled slots each item id occupies.
	Usage map[string]int
	// DayTags counts, per date (YYYY-MM-DD), every lowercased tag of every placed item.
	DayTags map[string]map[string]int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Usage:   make(map[string]int),
		DayTags: make(map[string]map[string]int),
	}
}

// StartDay resets the tag counts for date.
func (l *Ledger) StartDay(date string) {
	l.DayTags[date] = make(map[string]int)
}

// TagCount returns how many placed items carried tag on date.
func (l *Ledger) TagCount(date, tag string) int {
	return l.DayTags[date][strings.ToLower(tag)]
}

func (l *Ledger) place(date, itemID string, tags []string) {
	l.Usage[itemID]++
	day, ok := l.DayTags[date]
	if !ok {
		day = make(map[string]int)
		l.DayTags[date] = day
	}
	for _, t := range tags {
		day[strings.ToLower(t)]++
	}
}
