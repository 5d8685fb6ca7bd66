package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/config"
	"meal-scheduler/internal/metrics"
	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidRange is returned for date ranges that end before they start
	// or dates outside a schedule.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrRoleMismatch is returned when an override puts an item in the wrong position.
	ErrRoleMismatch = errors.New("item role does not match slot position")
	// ErrPlanExists is returned when saving over an existing week without replace.
	ErrPlanExists = errors.New("a schedule already exists for this start date")
)

// CatalogAccessor supplies a user's items.
type CatalogAccessor interface {
	FetchItems(ctx context.Context, userID string) ([]catalog.Item, error)
}

// PreferenceAccessor supplies a user's restricted tags.
type PreferenceAccessor interface {
	FetchRestrictions(ctx context.Context, userID string) ([]string, error)
}

// ScheduleStore persists generated schedules.
type ScheduleStore interface {
	Save(ctx context.Context, userID string, start, end time.Time, days []schedule.Day) (string, error)
	Replace(ctx context.Context, userID string, start, end time.Time, days []schedule.Day) (string, error)
	Load(ctx context.Context, id string) (*schedule.Schedule, []schedule.Day, error)
	ListByUser(ctx context.Context, userID string) ([]schedule.Schedule, error)
	Delete(ctx context.Context, id string) error
	ExistsForStart(ctx context.Context, userID string, start time.Time) (bool, error)
	SetMeal(ctx context.Context, scheduleID string, date time.Time, meal schedule.Meal) error
	RemoveMeal(ctx context.Context, scheduleID string, date time.Time, mealType schedule.MealType) error
}

// GenerationRecorder receives the outcome of each generation run.
type GenerationRecorder interface {
	RecordGeneration(ctx context.Context, m metrics.GenerationMetric) error
}

// Plan is a freshly generated, unsaved schedule.
type Plan struct {
	UserID    string          `json:"user_id"`
	Start     time.Time       `json:"start"`
	End       time.Time       `json:"end"`
	Days      []scheduler.Day `json:"days"`
	Requested int             `json:"slots_requested"`
	Filled    int             `json:"slots_filled"`
	Latency   time.Duration   `json:"-"`
}

// SavedPlan is a stored schedule joined against the current catalog.
type SavedPlan struct {
	Schedule schedule.Schedule `json:"schedule"`
	Days     []scheduler.Day   `json:"days"`
}

// Planner orchestrates fetching, allocation and persistence of schedules.
type Planner struct {
	items     CatalogAccessor
	prefs     PreferenceAccessor
	schedules ScheduleStore
	allocator *scheduler.Allocator
	policy    *config.SlotPolicy
	recorder  GenerationRecorder
}

// NewPlanner creates a new Planner instance.
func NewPlanner(items CatalogAccessor, prefs PreferenceAccessor, schedules ScheduleStore, allocator *scheduler.Allocator, policy *config.SlotPolicy) *Planner {
	if allocator == nil {
		allocator = scheduler.NewAllocator(nil)
	}
	if policy == nil {
		policy = config.DefaultSlotPolicy()
	}
	return &Planner{
		items:     items,
		prefs:     prefs,
		schedules: schedules,
		allocator: allocator,
		policy:    policy,
	}
}

// WithRecorder makes the planner report every generation run.
func (p *Planner) WithRecorder(r GenerationRecorder) *Planner {
	p.recorder = r
	return p
}

// GeneratePlan fills the policy's slots for every date from start to end inclusive.
func (p *Planner) GeneratePlan(ctx context.Context, userID string, start, end time.Time) (*Plan, error) {
	dates, err := DateRange(start, end)
	if err != nil {
		return nil, err
	}

	var (
		items        []catalog.Item
		restrictions []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = p.items.FetchItems(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to fetch catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		restrictions, err = p.prefs.FetchRestrictions(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to fetch preferences: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	began := time.Now()
	slots := p.policy.Slots(dates)
	days, err := p.allocator.Generate(dates, slots, scheduler.NewRestrictions(restrictions...), scheduler.NewCatalog(items))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate meals: %w", err)
	}

	plan := &Plan{
		UserID:    userID,
		Start:     dates[0],
		End:       dates[len(dates)-1],
		Days:      days,
		Requested: scheduler.Requested(dates, slots),
		Filled:    scheduler.Filled(days),
		Latency:   time.Since(began),
	}

	if p.recorder != nil {
		if err := p.recorder.RecordGeneration(ctx, metrics.GenerationMetric{
			UserID:         userID,
			SlotsRequested: plan.Requested,
			SlotsFilled:    plan.Filled,
			LatencyMS:      plan.Latency.Milliseconds(),
		}); err != nil {
			log.Printf("Warning: failed to record generation metrics: %v", err)
		}
	}
	return plan, nil
}

// SavePlan stores a generated plan. With replace set, existing schedules for
// the same start date are removed first; otherwise they cause ErrPlanExists.
func (p *Planner) SavePlan(ctx context.Context, plan *Plan, replace bool) (string, error) {
	saved := scheduler.ToSaved(plan.Days)
	if replace {
		id, err := p.schedules.Replace(ctx, plan.UserID, plan.Start, plan.End, saved)
		if err != nil {
			return "", fmt.Errorf("failed to save schedule: %w", err)
		}
		return id, nil
	}

	exists, err := p.schedules.ExistsForStart(ctx, plan.UserID, plan.Start)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrPlanExists
	}
	id, err := p.schedules.Save(ctx, plan.UserID, plan.Start, plan.End, saved)
	if err != nil {
		return "", fmt.Errorf("failed to save schedule: %w", err)
	}
	return id, nil
}

// PlanExists reports whether userID already has a schedule starting on start.
func (p *Planner) PlanExists(ctx context.Context, userID string, start time.Time) (bool, error) {
	return p.schedules.ExistsForStart(ctx, userID, start)
}

// LoadPlan returns a saved schedule owned by userID, rehydrated against the current catalog.
func (p *Planner) LoadPlan(ctx context.Context, userID, id string) (*SavedPlan, error) {
	s, days, err := p.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	items, err := p.items.FetchItems(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	return &SavedPlan{Schedule: *s, Days: scheduler.Rehydrate(days, items)}, nil
}

// ListPlans returns the user's saved schedules, newest first.
func (p *Planner) ListPlans(ctx context.Context, userID string) ([]schedule.Schedule, error) {
	return p.schedules.ListByUser(ctx, userID)
}

// DeletePlan removes a saved schedule owned by userID.
func (p *Planner) DeletePlan(ctx context.Context, userID, id string) error {
	if _, _, err := p.load(ctx, userID, id); err != nil {
		return err
	}
	return p.schedules.Delete(ctx, id)
}

// SetMeal overrides one slot of a saved schedule. Both items must exist in the
// owner's catalog in the matching role.
func (p *Planner) SetMeal(ctx context.Context, userID, id string, date time.Time, mealType schedule.MealType, mainID, sideID string) error {
	s, _, err := p.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if date.Before(s.StartDate) || date.After(s.EndDate) {
		return fmt.Errorf("%s is outside %s..%s: %w", schedule.FormatDate(date),
			schedule.FormatDate(s.StartDate), schedule.FormatDate(s.EndDate), ErrInvalidRange)
	}

	items, err := p.items.FetchItems(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}
	idx := catalog.Index(items)
	if err := checkRole(idx, mainID, catalog.RoleMain); err != nil {
		return err
	}
	if err := checkRole(idx, sideID, catalog.RoleSide); err != nil {
		return err
	}

	return p.schedules.SetMeal(ctx, id, date, schedule.Meal{
		MealType:   mealType,
		MainItemID: mainID,
		SideItemID: sideID,
	})
}

// RemoveMeal clears one slot of a saved schedule.
func (p *Planner) RemoveMeal(ctx context.Context, userID, id string, date time.Time, mealType schedule.MealType) error {
	if _, _, err := p.load(ctx, userID, id); err != nil {
		return err
	}
	return p.schedules.RemoveMeal(ctx, id, date, mealType)
}

func (p *Planner) load(ctx context.Context, userID, id string) (*schedule.Schedule, []schedule.Day, error) {
	s, days, err := p.schedules.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.UserID != userID {
		return nil, nil, schedule.ErrNotFound
	}
	return s, days, nil
}

func checkRole(idx map[string]catalog.Item, id string, role catalog.Role) error {
	item, ok := idx[id]
	if !ok {
		return fmt.Errorf("%s item %s: %w", role, id, catalog.ErrItemNotFound)
	}
	if item.Role != role {
		return fmt.Errorf("%q is a %s, not a %s: %w", item.Title, item.Role, role, ErrRoleMismatch)
	}
	return nil
}
