package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	scheduledb "meal-scheduler/internal/schedule/schedule_db"

	"github.com/google/uuid"
)

// Repository persists schedules as day and slot rows.
type Repository struct {
	queries *scheduledb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: scheduledb.New(d),
		db:      d,
	}
}

// Save stores a schedule with its days and slots in one transaction and returns its id.
func (r *Repository) Save(ctx context.Context, userID string, start, end time.Time, days []Day) (string, error) {
	var id string
	err := r.inTx(ctx, func(q *scheduledb.Queries) error {
		var err error
		id, err = insertSchedule(ctx, q, userID, start, end, days)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Replace deletes the user's schedules starting on start and saves the new one atomically.
func (r *Repository) Replace(ctx context.Context, userID string, start, end time.Time, days []Day) (string, error) {
	var id string
	err := r.inTx(ctx, func(q *scheduledb.Queries) error {
		if err := q.DeleteSchedulesForStart(ctx, scheduledb.DeleteSchedulesForStartParams{
			UserID:    userID,
			StartDate: FormatDate(start),
		}); err != nil {
			return fmt.Errorf("failed to delete existing schedule: %w", err)
		}
		var err error
		id, err = insertSchedule(ctx, q, userID, start, end, days)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Load returns a schedule with its days in date order.
func (r *Repository) Load(ctx context.Context, id string) (*Schedule, []Day, error) {
	row, err := r.queries.GetSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	s, err := toSchedule(row)
	if err != nil {
		return nil, nil, err
	}

	dayRows, err := r.queries.ListScheduleDays(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list schedule days: %w", err)
	}
	mealRows, err := r.queries.ListScheduleMeals(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list schedule meals: %w", err)
	}

	days := make([]Day, 0, len(dayRows))
	byDayID := make(map[string]int, len(dayRows))
	for _, d := range dayRows {
		date, err := ParseDate(d.DayDate)
		if err != nil {
			return nil, nil, fmt.Errorf("corrupt schedule day %s: %w", d.ID, err)
		}
		byDayID[d.ID] = len(days)
		days = append(days, Day{Date: date, Meals: []Meal{}})
	}
	for _, m := range mealRows {
		i, ok := byDayID[m.ScheduleDayID]
		if !ok {
			continue
		}
		days[i].Meals = append(days[i].Meals, Meal{
			MealType:   MealType(m.MealType),
			MainItemID: m.MainItemID,
			SideItemID: m.SideItemID,
		})
	}
	return s, days, nil
}

// ListByUser returns the user's schedules, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Schedule, error) {
	rows, err := r.queries.ListSchedulesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	out := make([]Schedule, 0, len(rows))
	for _, row := range rows {
		s, err := toSchedule(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// Delete removes a schedule and, by cascade, its days and slots.
func (r *Repository) Delete(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteSchedule(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsForStart reports whether the user already has a schedule starting on start.
func (r *Repository) ExistsForStart(ctx context.Context, userID string, start time.Time) (bool, error) {
	count, err := r.queries.CountSchedulesForStart(ctx, scheduledb.CountSchedulesForStartParams{
		UserID:    userID,
		StartDate: FormatDate(start),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check schedule existence: %w", err)
	}
	return count > 0, nil
}

// SetMeal inserts or replaces one slot, creating the day row if needed.
func (r *Repository) SetMeal(ctx context.Context, scheduleID string, date time.Time, meal Meal) error {
	return r.inTx(ctx, func(q *scheduledb.Queries) error {
		if _, err := q.GetSchedule(ctx, scheduleID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get schedule: %w", err)
		}

		dayID, err := ensureDay(ctx, q, scheduleID, date)
		if err != nil {
			return err
		}
		if err := q.UpsertScheduleMeal(ctx, scheduledb.UpsertScheduleMealParams{
			ID:            uuid.NewString(),
			ScheduleDayID: dayID,
			MealType:      string(meal.MealType),
			MainItemID:    meal.MainItemID,
			SideItemID:    meal.SideItemID,
		}); err != nil {
			return fmt.Errorf("failed to save meal: %w", err)
		}
		return nil
	})
}

// RemoveMeal deletes one slot. The day row is kept.
func (r *Repository) RemoveMeal(ctx context.Context, scheduleID string, date time.Time, mealType MealType) error {
	day, err := r.queries.GetScheduleDayByDate(ctx, scheduledb.GetScheduleDayByDateParams{
		ScheduleID: scheduleID,
		DayDate:    FormatDate(date),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get schedule day: %w", err)
	}

	affected, err := r.queries.DeleteScheduleMeal(ctx, scheduledb.DeleteScheduleMealParams{
		ScheduleDayID: day.ID,
		MealType:      string(mealType),
	})
	if err != nil {
		return fmt.Errorf("failed to remove meal: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(q *scheduledb.Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertSchedule(ctx context.Context, q *scheduledb.Queries, userID string, start, end time.Time, days []Day) (string, error) {
	id := uuid.NewString()
	if err := q.InsertSchedule(ctx, scheduledb.InsertScheduleParams{
		ID:        id,
		UserID:    userID,
		StartDate: FormatDate(start),
		EndDate:   FormatDate(end),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("failed to insert schedule: %w", err)
	}

	for _, day := range days {
		dayID, err := ensureDay(ctx, q, id, day.Date)
		if err != nil {
			return "", err
		}
		for _, meal := range day.Meals {
			if err := q.UpsertScheduleMeal(ctx, scheduledb.UpsertScheduleMealParams{
				ID:            uuid.NewString(),
				ScheduleDayID: dayID,
				MealType:      string(meal.MealType),
				MainItemID:    meal.MainItemID,
				SideItemID:    meal.SideItemID,
			}); err != nil {
				return "", fmt.Errorf("failed to insert meal for %s: %w", FormatDate(day.Date), err)
			}
		}
	}
	return id, nil
}

func ensureDay(ctx context.Context, q *scheduledb.Queries, scheduleID string, date time.Time) (string, error) {
	existing, err := q.GetScheduleDayByDate(ctx, scheduledb.GetScheduleDayByDateParams{
		ScheduleID: scheduleID,
		DayDate:    FormatDate(date),
	})
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to get schedule day: %w", err)
	}

	dayID := uuid.NewString()
	if err := q.InsertScheduleDay(ctx, scheduledb.InsertScheduleDayParams{
		ID:         dayID,
		ScheduleID: scheduleID,
		DayDate:    FormatDate(date),
	}); err != nil {
		return "", fmt.Errorf("failed to insert schedule day: %w", err)
	}
	return dayID, nil
}

func toSchedule(row scheduledb.Schedule) (*Schedule, error) {
	start, err := ParseDate(row.StartDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt schedule %s: %w", row.ID, err)
	}
	end, err := ParseDate(row.EndDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt schedule %s: %w", row.ID, err)
	}
	return &Schedule{
		ID:        row.ID,
		UserID:    row.UserID,
		StartDate: start,
		EndDate:   end,
		CreatedAt: row.CreatedAt,
	}, nil
}
