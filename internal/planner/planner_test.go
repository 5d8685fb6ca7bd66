package planner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/config"
	"meal-scheduler/internal/database"
	"meal-scheduler/internal/metrics"
	"meal-scheduler/internal/preferences"
	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"
)

type MockCatalog struct {
	Items []catalog.Item
	Err   error
}

func (m *MockCatalog) FetchItems(ctx context.Context, userID string) ([]catalog.Item, error) {
	return m.Items, m.Err
}

type MockPreferences struct {
	Tags []string
	Err  error
}

func (m *MockPreferences) FetchRestrictions(ctx context.Context, userID string) ([]string, error) {
	return m.Tags, m.Err
}

type MockRecorder struct {
	Runs []metrics.GenerationMetric
}

func (m *MockRecorder) RecordGeneration(ctx context.Context, g metrics.GenerationMetric) error {
	m.Runs = append(m.Runs, g)
	return nil
}

func day(s string) time.Time {
	d, _ := schedule.ParseDate(s)
	return d
}

func newScheduleRepo(t *testing.T) (*schedule.Repository, *database.DB) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return schedule.NewRepository(db.SQL), db
}

var testItems = []catalog.Item{
	{ID: "m1", Title: "Lasagna", Role: catalog.RoleMain, Tags: []string{"pasta"}, Effort: 3},
	{ID: "m2", Title: "Tacos", Role: catalog.RoleMain, Tags: []string{}, Effort: 1},
	{ID: "s1", Title: "Garlic Bread", Role: catalog.RoleSide, Tags: []string{"bread"}, Effort: 1},
	{ID: "s2", Title: "Salad", Role: catalog.RoleSide, Tags: []string{}, Effort: 1},
}

func TestGeneratePlan(t *testing.T) {
	ctx := context.Background()
	repo, _ := newScheduleRepo(t)
	recorder := &MockRecorder{}
	p := NewPlanner(&MockCatalog{Items: testItems}, &MockPreferences{Tags: []string{"pasta"}}, repo, scheduler.NewSeededAllocator(1), config.DefaultSlotPolicy()).
		WithRecorder(recorder)

	// 2024-06-10 is a Monday.
	start, end := WeekRange(day("2024-06-10"))
	plan, err := p.GeneratePlan(ctx, "user-1", start, end)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	if len(plan.Days) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(plan.Days))
	}
	if plan.Requested != 9 {
		t.Errorf("Expected 9 requested slots, got %d", plan.Requested)
	}
	if plan.Filled != 9 {
		t.Errorf("Expected 9 filled slots, got %d", plan.Filled)
	}
	for _, d := range plan.Days {
		pasta := 0
		for _, m := range d.Meals {
			if m.Main.HasTag("pasta") {
				pasta++
			}
		}
		if pasta > 1 {
			t.Errorf("%s: pasta used %d times", schedule.FormatDate(d.Date), pasta)
		}
	}
	if len(recorder.Runs) != 1 || recorder.Runs[0].SlotsFilled != 9 {
		t.Errorf("Expected one recorded run, got %+v", recorder.Runs)
	}
}

func TestGeneratePlan_Errors(t *testing.T) {
	ctx := context.Background()
	repo, _ := newScheduleRepo(t)
	boom := errors.New("boom")

	t.Run("CatalogFetch", func(t *testing.T) {
		p := NewPlanner(&MockCatalog{Err: boom}, &MockPreferences{}, repo, nil, nil)
		_, err := p.GeneratePlan(ctx, "u", day("2024-06-10"), day("2024-06-11"))
		if !errors.Is(err, boom) {
			t.Errorf("Expected wrapped fetch error, got %v", err)
		}
	})

	t.Run("PreferencesFetch", func(t *testing.T) {
		p := NewPlanner(&MockCatalog{Items: testItems}, &MockPreferences{Err: boom}, repo, nil, nil)
		_, err := p.GeneratePlan(ctx, "u", day("2024-06-10"), day("2024-06-11"))
		if !errors.Is(err, boom) {
			t.Errorf("Expected wrapped fetch error, got %v", err)
		}
	})

	t.Run("InvalidRange", func(t *testing.T) {
		p := NewPlanner(&MockCatalog{Items: testItems}, &MockPreferences{}, repo, nil, nil)
		_, err := p.GeneratePlan(ctx, "u", day("2024-06-11"), day("2024-06-10"))
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		p := NewPlanner(&MockCatalog{}, &MockPreferences{}, repo, nil, nil)
		plan, err := p.GeneratePlan(ctx, "u", day("2024-06-10"), day("2024-06-16"))
		if err != nil {
			t.Fatalf("Expected no error for empty catalog, got %v", err)
		}
		if plan.Filled != 0 || len(plan.Days) != 7 {
			t.Errorf("Expected 7 empty days, got %+v", plan)
		}
	})
}

func TestSaveAndLoadPlan(t *testing.T) {
	ctx := context.Background()
	repo, _ := newScheduleRepo(t)
	cat := &MockCatalog{Items: append([]catalog.Item{}, testItems...)}
	p := NewPlanner(cat, &MockPreferences{}, repo, scheduler.NewSeededAllocator(5), nil)

	start, end := WeekRange(day("2024-06-10"))
	plan, err := p.GeneratePlan(ctx, "user-1", start, end)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	id, err := p.SavePlan(ctx, plan, false)
	if err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}

	t.Run("RoundTrip", func(t *testing.T) {
		saved, err := p.LoadPlan(ctx, "user-1", id)
		if err != nil {
			t.Fatalf("LoadPlan failed: %v", err)
		}
		if len(saved.Days) != len(plan.Days) {
			t.Fatalf("Expected %d days, got %d", len(plan.Days), len(saved.Days))
		}
		for i := range plan.Days {
			want, got := plan.Days[i].Meals, saved.Days[i].Meals
			if len(want) != len(got) {
				t.Fatalf("day %d: expected %d meals, got %d", i, len(want), len(got))
			}
			for j := range want {
				if want[j].MealType != got[j].MealType || want[j].Main.ID != got[j].Main.ID || want[j].Side.ID != got[j].Side.ID {
					t.Errorf("day %d meal %d: expected %+v, got %+v", i, j, want[j], got[j])
				}
			}
		}
	})

	t.Run("OtherUser", func(t *testing.T) {
		if _, err := p.LoadPlan(ctx, "user-2", id); !errors.Is(err, schedule.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for another user, got %v", err)
		}
	})

	t.Run("SaveExisting", func(t *testing.T) {
		if _, err := p.SavePlan(ctx, plan, false); !errors.Is(err, ErrPlanExists) {
			t.Errorf("Expected ErrPlanExists, got %v", err)
		}
		newID, err := p.SavePlan(ctx, plan, true)
		if err != nil {
			t.Fatalf("SavePlan replace failed: %v", err)
		}
		plans, _ := p.ListPlans(ctx, "user-1")
		if len(plans) != 1 || plans[0].ID != newID {
			t.Errorf("Expected only the replacement, got %+v", plans)
		}
		id = newID
	})

	t.Run("SetMeal", func(t *testing.T) {
		if err := p.SetMeal(ctx, "user-1", id, day("2024-06-12"), schedule.Lunch, "m2", "s2"); err != nil {
			t.Fatalf("SetMeal failed: %v", err)
		}
		saved, _ := p.LoadPlan(ctx, "user-1", id)
		wed := saved.Days[2].Meals
		if len(wed) != 2 || wed[0].MealType != schedule.Lunch || wed[0].Main.Title != "Tacos" {
			t.Errorf("Expected lunch override on Wednesday, got %+v", wed)
		}

		err := p.SetMeal(ctx, "user-1", id, day("2024-06-12"), schedule.Lunch, "s1", "s2")
		if !errors.Is(err, ErrRoleMismatch) {
			t.Errorf("Expected ErrRoleMismatch, got %v", err)
		}
		err = p.SetMeal(ctx, "user-1", id, day("2024-06-12"), schedule.Lunch, "m1", "nope")
		if !errors.Is(err, catalog.ErrItemNotFound) {
			t.Errorf("Expected ErrItemNotFound, got %v", err)
		}
		err = p.SetMeal(ctx, "user-1", id, day("2024-07-01"), schedule.Lunch, "m1", "s1")
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("RemoveMeal", func(t *testing.T) {
		if err := p.RemoveMeal(ctx, "user-1", id, day("2024-06-12"), schedule.Lunch); err != nil {
			t.Fatalf("RemoveMeal failed: %v", err)
		}
		saved, _ := p.LoadPlan(ctx, "user-1", id)
		if len(saved.Days[2].Meals) != 1 {
			t.Errorf("Expected one meal left on Wednesday, got %+v", saved.Days[2].Meals)
		}
	})

	t.Run("DeletedItemBecomesPlaceholder", func(t *testing.T) {
		cat.Items = cat.Items[1:] // drop m1
		saved, err := p.LoadPlan(ctx, "user-1", id)
		if err != nil {
			t.Fatalf("LoadPlan failed: %v", err)
		}
		found := false
		for _, d := range saved.Days {
			for _, m := range d.Meals {
				if m.Main.ID == "m1" {
					found = true
					if m.Main.Title != scheduler.UnknownTitle {
						t.Errorf("Expected placeholder for m1, got %+v", m.Main)
					}
				}
			}
		}
		if !found {
			t.Skip("seeded plan never used m1")
		}
	})

	t.Run("DeletePlan", func(t *testing.T) {
		if err := p.DeletePlan(ctx, "user-2", id); !errors.Is(err, schedule.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for another user, got %v", err)
		}
		if err := p.DeletePlan(ctx, "user-1", id); err != nil {
			t.Fatalf("DeletePlan failed: %v", err)
		}
		if _, err := p.LoadPlan(ctx, "user-1", id); !errors.Is(err, schedule.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestSaveAndLoadPlan_CustomPolicyOrder(t *testing.T) {
	ctx := context.Background()
	repo, _ := newScheduleRepo(t)
	policy, err := config.ParseSlotPolicy([]byte("days:\n  monday: [dinner, lunch]\n  tuesday: [dinner, lunch]\n"))
	if err != nil {
		t.Fatalf("ParseSlotPolicy failed: %v", err)
	}
	p := NewPlanner(&MockCatalog{Items: testItems}, &MockPreferences{}, repo, scheduler.NewSeededAllocator(3), policy)

	plan, err := p.GeneratePlan(ctx, "user-1", day("2024-06-10"), day("2024-06-11"))
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	id, err := p.SavePlan(ctx, plan, false)
	if err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}
	saved, err := p.LoadPlan(ctx, "user-1", id)
	if err != nil {
		t.Fatalf("LoadPlan failed: %v", err)
	}

	for i := range plan.Days {
		want, got := plan.Days[i].Meals, saved.Days[i].Meals
		if len(want) != 2 || len(got) != 2 {
			t.Fatalf("day %d: expected 2 meals each, got %d and %d", i, len(want), len(got))
		}
		if want[0].MealType != schedule.Lunch {
			t.Errorf("day %d: expected lunch first, got %s", i, want[0].MealType)
		}
		for j := range want {
			if want[j].MealType != got[j].MealType || want[j].Main.ID != got[j].Main.ID || want[j].Side.ID != got[j].Side.ID {
				t.Errorf("day %d meal %d: expected %+v, got %+v", i, j, want[j], got[j])
			}
		}
	}
}

func TestGeneratePlan_WithRepositories(t *testing.T) {
	ctx := context.Background()
	repo, db := newScheduleRepo(t)
	items := catalog.NewRepository(db.SQL)
	prefs := preferences.NewRepository(db.SQL)

	for _, n := range []catalog.NewItem{
		{Title: "Steak", Role: catalog.RoleMain, Effort: 2},
		{Title: "Fries", Role: catalog.RoleSide, Effort: 1},
	} {
		if _, err := items.Save(ctx, "u", n); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	p := NewPlanner(items, prefs, repo, nil, nil)
	plan, err := p.GeneratePlan(ctx, "u", day("2024-06-10"), day("2024-06-14"))
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if plan.Filled != 5 {
		t.Errorf("Expected 5 weekday dinners, got %d", plan.Filled)
	}
}

func TestDates(t *testing.T) {
	t.Run("GetNextMonday", func(t *testing.T) {
		cases := map[string]string{
			"2024-06-10": "2024-06-17", // Monday
			"2024-06-12": "2024-06-17", // Wednesday
			"2024-06-16": "2024-06-17", // Sunday
		}
		for in, want := range cases {
			if got := schedule.FormatDate(GetNextMonday(day(in))); got != want {
				t.Errorf("GetNextMonday(%s) = %s, want %s", in, got, want)
			}
		}
	})

	t.Run("DateRange", func(t *testing.T) {
		dates, err := DateRange(day("2024-02-27"), day("2024-03-01"))
		if err != nil {
			t.Fatalf("DateRange failed: %v", err)
		}
		if len(dates) != 4 || schedule.FormatDate(dates[2]) != "2024-02-29" {
			t.Errorf("Unexpected dates: %v", dates)
		}
		if _, err := DateRange(day("2024-01-01"), day("2024-12-31")); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Expected ErrInvalidRange for long range, got %v", err)
		}
	})
}
