package scheduler

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/schedule"
)

// fixedRand always returns the same offset into the eligible slice, clamped to its size.
type fixedRand int

func (f fixedRand) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func item(id string, role catalog.Role, tags ...string) catalog.Item {
	return catalog.Item{ID: id, Title: id, Role: role, Tags: tags, Effort: 1}
}

func dateRange(start string, n int) []time.Time {
	d, _ := schedule.ParseDate(start)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = d.AddDate(0, 0, i)
	}
	return out
}

func everyDay(dates []time.Time, meals ...schedule.MealType) map[string][]schedule.MealType {
	slots := make(map[string][]schedule.MealType, len(dates))
	for _, d := range dates {
		slots[schedule.FormatDate(d)] = meals
	}
	return slots
}

func TestGenerate_NoCatalog(t *testing.T) {
	a := NewAllocator(fixedRand(0))
	_, err := a.Generate(dateRange("2024-01-01", 1), nil, NewRestrictions(), nil)
	if !errors.Is(err, ErrNoCatalog) {
		t.Errorf("Expected ErrNoCatalog, got %v", err)
	}
}

func TestGenerate_RestrictedTagBlocksSecondUse(t *testing.T) {
	c := &Catalog{
		Mains: []catalog.Item{item("A", catalog.RoleMain, "bread"), item("B", catalog.RoleMain)},
		Sides: []catalog.Item{item("X", catalog.RoleSide), item("Y", catalog.RoleSide)},
	}
	dates := dateRange("2024-01-01", 1)
	slots := everyDay(dates, schedule.Lunch, schedule.Dinner)

	t.Run("Deterministic", func(t *testing.T) {
		days, err := NewAllocator(fixedRand(0)).Generate(dates, slots, NewRestrictions("bread"), c)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		meals := days[0].Meals
		if len(meals) != 2 {
			t.Fatalf("Expected 2 meals, got %d", len(meals))
		}
		if meals[0].Main.ID != "A" {
			t.Errorf("Expected A for lunch, got %s", meals[0].Main.ID)
		}
		if meals[1].Main.ID != "B" {
			t.Errorf("Expected B for dinner, got %s", meals[1].Main.ID)
		}
	})

	t.Run("AnySeed", func(t *testing.T) {
		for seed := uint64(0); seed < 50; seed++ {
			days, err := NewSeededAllocator(seed).Generate(dates, slots, NewRestrictions("bread"), c)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			meals := days[0].Meals
			if len(meals) == 2 && meals[0].Main.ID == "A" && meals[1].Main.ID != "B" {
				t.Errorf("seed %d: dinner main must be B after A at lunch, got %s", seed, meals[1].Main.ID)
			}
		}
	})

	t.Run("OtherDayUnaffected", func(t *testing.T) {
		only := &Catalog{
			Mains: []catalog.Item{item("A", catalog.RoleMain, "bread")},
			Sides: []catalog.Item{item("X", catalog.RoleSide)},
		}
		two := dateRange("2024-01-01", 2)
		days, err := NewAllocator(fixedRand(0)).Generate(two, everyDay(two, schedule.Lunch, schedule.Dinner), NewRestrictions("bread"), only)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for i, d := range days {
			if len(d.Meals) != 1 || d.Meals[0].MealType != schedule.Lunch {
				t.Errorf("day %d: expected only lunch filled, got %+v", i, d.Meals)
			}
		}
	})
}

func TestGenerate_SingleItemPerRole(t *testing.T) {
	c := &Catalog{
		Mains: []catalog.Item{item("M", catalog.RoleMain)},
		Sides: []catalog.Item{item("S", catalog.RoleSide)},
	}
	dates := dateRange("2024-03-01", 5)
	slots := everyDay(dates, schedule.Dinner)

	ledger := NewLedger()
	days, err := NewSeededAllocator(1).Fill(ledger, dates, slots, NewRestrictions(), c)
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if Filled(days) != 5 {
		t.Errorf("Expected 5 filled slots, got %d", Filled(days))
	}
	if ledger.Usage["M"] != 5 || ledger.Usage["S"] != 5 {
		t.Errorf("Expected usage 5 each, got %v", ledger.Usage)
	}

	again, _ := NewSeededAllocator(99).Generate(dates, slots, NewRestrictions(), c)
	for i := range days {
		if days[i].Meals[0].Main.ID != again[i].Meals[0].Main.ID || days[i].Meals[0].Side.ID != again[i].Meals[0].Side.ID {
			t.Errorf("day %d: expected identical output across runs", i)
		}
	}
}

func TestGenerate_EmptyPool(t *testing.T) {
	c := &Catalog{
		Mains: []catalog.Item{item("M", catalog.RoleMain)},
	}
	dates := dateRange("2024-03-01", 3)
	days, err := NewAllocator(nil).Generate(dates, everyDay(dates, schedule.Lunch, schedule.Dinner), NewRestrictions(), c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("Expected every date to appear, got %d days", len(days))
	}
	for _, d := range days {
		if d.Meals == nil || len(d.Meals) != 0 {
			t.Errorf("Expected empty non-nil meals, got %+v", d.Meals)
		}
	}
}

func TestGenerate_MissingSlotsForDate(t *testing.T) {
	c := &Catalog{
		Mains: []catalog.Item{item("M", catalog.RoleMain)},
		Sides: []catalog.Item{item("S", catalog.RoleSide)},
	}
	dates := dateRange("2024-03-01", 2)
	slots := map[string][]schedule.MealType{"2024-03-02": {schedule.Lunch}}
	days, err := NewAllocator(nil).Generate(dates, slots, NewRestrictions(), c)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(days[0].Meals) != 0 || len(days[1].Meals) != 1 {
		t.Errorf("Unexpected meals: %+v", days)
	}
	if Requested(dates, slots) != 1 {
		t.Errorf("Expected 1 requested slot, got %d", Requested(dates, slots))
	}
}

func TestGenerate_SideCannotRepeatMainRestrictedTag(t *testing.T) {
	c := &Catalog{
		Mains: []catalog.Item{item("A", catalog.RoleMain, "Bread")},
		Sides: []catalog.Item{item("Z", catalog.RoleSide, "bread")},
	}
	dates := dateRange("2024-01-01", 1)
	days, err := NewAllocator(nil).Generate(dates, everyDay(dates, schedule.Lunch), NewRestrictions("BREAD"), c)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(days[0].Meals) != 0 {
		t.Errorf("Expected slot to be omitted, got %+v", days[0].Meals)
	}

	c.Sides = append(c.Sides, item("Y", catalog.RoleSide))
	days, _ = NewAllocator(fixedRand(0)).Generate(dates, everyDay(dates, schedule.Lunch), NewRestrictions("bread"), c)
	if len(days[0].Meals) != 1 || days[0].Meals[0].Side.ID != "Y" {
		t.Errorf("Expected Y as side, got %+v", days[0].Meals)
	}
}

func TestGenerate_RestrictionProperty(t *testing.T) {
	tags := []string{"bread", "rice", "pork", "veg", "Bread"}
	r := rand.New(rand.NewPCG(7, 11))
	var mains, sides []catalog.Item
	for i := 0; i < 20; i++ {
		mains = append(mains, item("m"+string(rune('a'+i)), catalog.RoleMain, tags[r.IntN(len(tags))], tags[r.IntN(len(tags))]))
		sides = append(sides, item("s"+string(rune('a'+i)), catalog.RoleSide, tags[r.IntN(len(tags))]))
	}
	c := &Catalog{Mains: mains, Sides: sides}
	restrictions := NewRestrictions("bread", "pork")
	dates := dateRange("2024-05-01", 14)
	slots := everyDay(dates, schedule.Lunch, schedule.Dinner)

	for seed := uint64(0); seed < 20; seed++ {
		ledger := NewLedger()
		days, err := NewSeededAllocator(seed).Fill(ledger, dates, slots, restrictions, c)
		if err != nil {
			t.Fatalf("Fill failed: %v", err)
		}

		for _, d := range days {
			for _, tag := range restrictions.Tags() {
				count := 0
				for _, m := range d.Meals {
					if m.Main.HasTag(tag) {
						count++
					}
					if m.Side.HasTag(tag) {
						count++
					}
				}
				if count > 1 {
					t.Errorf("seed %d, %s: tag %q placed %d times", seed, schedule.FormatDate(d.Date), tag, count)
				}
			}
		}

		total := 0
		for id, n := range ledger.Usage {
			if n < 0 {
				t.Errorf("seed %d: negative usage for %s", seed, id)
			}
			total += n
		}
		if total != 2*Filled(days) {
			t.Errorf("seed %d: expected usage total %d, got %d", seed, 2*Filled(days), total)
		}
	}
}

func TestPick_TieBreakIndependentOfOrder(t *testing.T) {
	forward := []catalog.Item{
		item("c", catalog.RoleMain), item("a", catalog.RoleMain), item("e", catalog.RoleMain),
		item("b", catalog.RoleMain), item("d", catalog.RoleMain),
	}
	backward := []catalog.Item{forward[4], forward[3], forward[2], forward[1], forward[0]}

	a := NewAllocator(fixedRand(0))
	ledger := NewLedger()
	ledger.StartDay("2024-01-01")

	first, _ := a.pick(forward, ledger, "2024-01-01", NewRestrictions())
	second, _ := a.pick(backward, ledger, "2024-01-01", NewRestrictions())
	if first.ID != "a" || second.ID != "a" {
		t.Errorf("Expected a from both orders, got %s and %s", first.ID, second.ID)
	}

	ledger.Usage["a"] = 1
	next, _ := a.pick(backward, ledger, "2024-01-01", NewRestrictions())
	if next.ID != "b" {
		t.Errorf("Expected least used b, got %s", next.ID)
	}
}

func TestPick_SliceSize(t *testing.T) {
	var items []catalog.Item
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		items = append(items, item(id, catalog.RoleSide))
	}
	ledger := NewLedger()

	// Ten candidates leave a slice of two.
	got, ok := NewAllocator(fixedRand(5)).pick(items, ledger, "2024-01-01", NewRestrictions())
	if !ok || got.ID != "b" {
		t.Errorf("Expected b as the last of a two-item slice, got %s", got.ID)
	}

	// Four candidates still leave one.
	got, _ = NewAllocator(fixedRand(5)).pick(items[:4], ledger, "2024-01-01", NewRestrictions())
	if got.ID != "a" {
		t.Errorf("Expected a from a one-item slice, got %s", got.ID)
	}

	if _, ok := NewAllocator(nil).pick(nil, ledger, "2024-01-01", NewRestrictions()); ok {
		t.Error("Expected no pick from an empty pool")
	}
}

func TestToSaved(t *testing.T) {
	dates := dateRange("2024-01-01", 1)
	days := []Day{{Date: dates[0], Meals: []Assignment{{
		Date: dates[0], MealType: schedule.Dinner,
		Main: item("m", catalog.RoleMain), Side: item("s", catalog.RoleSide),
	}}}}
	saved := ToSaved(days)
	if len(saved) != 1 || saved[0].Meals[0].MainItemID != "m" || saved[0].Meals[0].SideItemID != "s" || saved[0].Meals[0].MealType != schedule.Dinner {
		t.Errorf("Unexpected saved rows: %+v", saved)
	}
}
