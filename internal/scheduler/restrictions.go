package scheduler

import (
	"sort"
	"strings"
)

// Restrictions is a set of tags that may appear on at most one placed item per day.
// Names compare case-insensitively.
type Restrictions map[string]struct{}

// NewRestrictions builds a set from tag names, ignoring blanks.
func NewRestrictions(tags ...string) Restrictions {
	r := make(Restrictions, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			r[t] = struct{}{}
		}
	}
	return r
}

// Has reports whether tag is restricted.
func (r Restrictions) Has(tag string) bool {
	_, ok := r[strings.ToLower(tag)]
	return ok
}

// Tags returns the restricted names in sorted order.
func (r Restrictions) Tags() []string {
	out := make([]string, 0, len(r))
	for t := range r {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
