// Package scheduler fills meal slots from a tagged catalog.
//
// Generation is greedy and single pass: slots are filled in date order and,
// within a date, in the order given. Each pick keeps the lowest-usage fifth of
// the eligible items and chooses one of them at random. A slot that cannot be
// filled is left out; earlier picks are never revisited.
package scheduler

import (
	"cmp"
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/schedule"
)

// ErrNoCatalog is returned when Generate is called without a catalog.
// An empty catalog is not an error.
var ErrNoCatalog = errors.New("no catalog supplied")

// Catalog holds the role-partitioned item pools of one user.
type Catalog struct {
	Mains []catalog.Item
	Sides []catalog.Item
}

// NewCatalog partitions items by role.
func NewCatalog(items []catalog.Item) *Catalog {
	mains, sides := catalog.Partition(items)
	return &Catalog{Mains: mains, Sides: sides}
}

// Assignment is one filled slot.
type Assignment struct {
	Date     time.Time         `json:"date"`
	MealType schedule.MealType `json:"meal_type"`
	Main     catalog.Item      `json:"main"`
	Side     catalog.Item      `json:"side"`
}

// Day groups the filled slots of one date. Meals may be empty.
type Day struct {
	Date  time.Time    `json:"date"`
	Meals []Assignment `json:"meals"`
}

// Rand is the random source used for the final choice.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Allocator assigns catalog items to slots.
type Allocator struct {
	rng Rand
}

// NewAllocator creates an Allocator. A nil rng uses the package-level source.
func NewAllocator(rng Rand) *Allocator {
	if rng == nil {
		rng = globalRand{}
	}
	return &Allocator{rng: rng}
}

// NewSeededAllocator creates an Allocator with a reproducible PCG source.
func NewSeededAllocator(seed uint64) *Allocator {
	return NewAllocator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate fills slots for every date with a fresh ledger.
// slots is keyed by schedule.DateLayout; dates without an entry produce empty days.
func (a *Allocator) Generate(dates []time.Time, slots map[string][]schedule.MealType, restrictions Restrictions, c *Catalog) ([]Day, error) {
	return a.Fill(NewLedger(), dates, slots, restrictions, c)
}

// Fill is Generate against a caller-owned ledger, which it updates in place.
func (a *Allocator) Fill(ledger *Ledger, dates []time.Time, slots map[string][]schedule.MealType, restrictions Restrictions, c *Catalog) ([]Day, error) {
	if c == nil {
		return nil, ErrNoCatalog
	}
	if ledger == nil {
		ledger = NewLedger()
	}

	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		key := schedule.FormatDate(date)
		ledger.StartDay(key)

		day := Day{Date: date, Meals: []Assignment{}}
		for _, mealType := range slots[key] {
			main, ok := a.pick(c.Mains, ledger, key, restrictions)
			if !ok {
				continue
			}
			side, ok := a.pick(c.Sides, ledger, key, restrictions, main)
			if !ok {
				continue
			}

			ledger.place(key, main.ID, main.Tags)
			ledger.place(key, side.ID, side.Tags)
			day.Meals = append(day.Meals, Assignment{
				Date:     date,
				MealType: mealType,
				Main:     main,
				Side:     side,
			})
		}
		days = append(days, day)
	}
	return days, nil
}

// pick chooses one eligible candidate. held are items already chosen for the
// current slot but not yet placed; their restricted tags count as used.
func (a *Allocator) pick(candidates []catalog.Item, ledger *Ledger, date string, restrictions Restrictions, held ...catalog.Item) (catalog.Item, bool) {
	eligible := make([]catalog.Item, 0, len(candidates))
	for _, item := range candidates {
		if blocked(item, ledger, date, restrictions, held) {
			continue
		}
		eligible = append(eligible, item)
	}
	if len(eligible) == 0 {
		return catalog.Item{}, false
	}

	slices.SortStableFunc(eligible, func(x, y catalog.Item) int {
		if c := cmp.Compare(ledger.Usage[x.ID], ledger.Usage[y.ID]); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})

	n := max(1, len(eligible)/5)
	return eligible[a.rng.IntN(n)], true
}

func blocked(item catalog.Item, ledger *Ledger, date string, restrictions Restrictions, held []catalog.Item) bool {
	for _, tag := range item.Tags {
		if !restrictions.Has(tag) {
			continue
		}
		if ledger.TagCount(date, tag) >= 1 {
			return true
		}
		for _, h := range held {
			if h.HasTag(tag) {
				return true
			}
		}
	}
	return false
}

// Requested counts the slots demanded for dates.
func Requested(dates []time.Time, slots map[string][]schedule.MealType) int {
	n := 0
	for _, d := range dates {
		n += len(slots[schedule.FormatDate(d)])
	}
	return n
}

// Filled counts the assignments in days.
func Filled(days []Day) int {
	n := 0
	for _, d := range days {
		n += len(d.Meals)
	}
	return n
}

// ToSaved strips assignments down to the id tuples that are persisted.
func ToSaved(days []Day) []schedule.Day {
	out := make([]schedule.Day, 0, len(days))
	for _, d := range days {
		meals := make([]schedule.Meal, 0, len(d.Meals))
		for _, m := range d.Meals {
			meals = append(meals, schedule.Meal{
				MealType:   m.MealType,
				MainItemID: m.Main.ID,
				SideItemID: m.Side.ID,
			})
		}
		out = append(out, schedule.Day{Date: d.Date, Meals: meals})
	}
	return out
}
