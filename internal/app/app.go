package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/clipper"
	"meal-scheduler/internal/config"
	"meal-scheduler/internal/database"
	"meal-scheduler/internal/ghost"
	"meal-scheduler/internal/metrics"
	"meal-scheduler/internal/planner"
	"meal-scheduler/internal/preferences"
	"meal-scheduler/internal/storage"
)

// App holds the application's dependencies.
type App struct {
	cfg           *config.Config
	db            *database.DB
	items         *catalog.Repository
	prefs         *preferences.Repository
	mealPlanner   *planner.Planner
	metricsStore  *metrics.Store
	exports       *storage.ExportStore
	ghostClient   ghost.Client // nil when Ghost is not configured
	recipeClipper *clipper.Clipper
	out           io.Writer
}

// NewApp creates and initializes a new App instance.
func NewApp(
	cfg *config.Config,
	db *database.DB,
	items *catalog.Repository,
	prefs *preferences.Repository,
	mealPlanner *planner.Planner,
	metricsStore *metrics.Store,
	exports *storage.ExportStore,
	ghostClient ghost.Client,
	recipeClipper *clipper.Clipper,
) *App {
	return &App{
		cfg:           cfg,
		db:            db,
		items:         items,
		prefs:         prefs,
		mealPlanner:   mealPlanner,
		metricsStore:  metricsStore,
		exports:       exports,
		ghostClient:   ghostClient,
		recipeClipper: recipeClipper,
		out:           os.Stdout,
	}
}

// SetOutput redirects user-facing output.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// ImportItems reads a CSV file into the user's catalog.
func (a *App) ImportItems(ctx context.Context, userID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	items, err := ImportCSV(ctx, a.items, userID, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, ok(fmt.Sprintf("Imported %d items from %s", len(items), filepath.Base(path))))
	return nil
}

// GenerateSchedule creates a schedule for start..end, prints it and optionally saves it.
func (a *App) GenerateSchedule(ctx context.Context, userID string, start, end time.Time, save, replace bool) error {
	fmt.Fprintf(a.out, "Generating schedule for %s to %s...\n", start.Format("2006-01-02"), end.Format("2006-01-02"))

	plan, err := a.mealPlanner.GeneratePlan(ctx, userID, start, end)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	fmt.Fprintln(a.out, RenderDays(plan.Days))
	fmt.Fprintf(a.out, "Filled %d of %d slots.\n", plan.Filled, plan.Requested)
	if plan.Filled < plan.Requested {
		fmt.Fprintln(a.out, warnStyle.Render("Some slots could not be filled; add items or relax restrictions."))
	}

	if !save {
		return nil
	}
	id, err := a.mealPlanner.SavePlan(ctx, plan, replace)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, ok("Saved schedule "+id))
	return nil
}

// ShowSchedule prints a saved schedule.
func (a *App) ShowSchedule(ctx context.Context, userID, id string) error {
	saved, err := a.mealPlanner.LoadPlan(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	fmt.Fprintln(a.out, RenderDays(saved.Days))
	return nil
}

// ListSchedules prints the user's saved schedules.
func (a *App) ListSchedules(ctx context.Context, userID string) error {
	list, err := a.mealPlanner.ListPlans(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, RenderScheduleList(list))
	return nil
}

// DeleteSchedule removes a saved schedule.
func (a *App) DeleteSchedule(ctx context.Context, userID, id string) error {
	if err := a.mealPlanner.DeletePlan(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	fmt.Fprintln(a.out, ok("Deleted schedule "+id))
	return nil
}

// ExportSchedule writes a saved schedule as JSON under the export path.
func (a *App) ExportSchedule(ctx context.Context, userID, id string) error {
	saved, err := a.mealPlanner.LoadPlan(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	path, err := a.exports.Save(storage.Export{Schedule: saved.Schedule, Days: saved.Days})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, ok("Exported to "+path))
	return nil
}

// PublishSchedule posts a saved schedule to Ghost.
func (a *App) PublishSchedule(ctx context.Context, userID, id string, publish bool) error {
	if a.ghostClient == nil {
		return fmt.Errorf("GHOST_API_URL environment variable not set")
	}
	saved, err := a.mealPlanner.LoadPlan(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	post, err := a.ghostClient.CreatePost(ctx, ghost.ScheduleTitle(saved.Schedule), ghost.ScheduleHTML(saved.Days), publish)
	if err != nil {
		return fmt.Errorf("failed to publish to ghost: %w", err)
	}
	fmt.Fprintln(a.out, ok(fmt.Sprintf("Created Ghost post %q (%s)", post.Title, post.ID)))
	return nil
}

// SyncGhost mirrors tagged Ghost posts into the catalog.
func (a *App) SyncGhost(ctx context.Context, userID string) error {
	if a.ghostClient == nil {
		return fmt.Errorf("GHOST_API_URL environment variable not set")
	}
	n, err := SyncFromGhost(ctx, a.ghostClient, a.items, userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, ok(fmt.Sprintf("Synced %d items from Ghost", n)))
	return nil
}

// Clip saves a recipe page as a catalog item.
func (a *App) Clip(ctx context.Context, userID, url string, role catalog.Role) error {
	item, err := a.recipeClipper.ClipURL(ctx, userID, url, role)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, ok(fmt.Sprintf("Clipped %q as %s %v", item.Title, item.Role, item.Tags)))
	return nil
}

// SetRestrictions replaces the user's restricted tags.
func (a *App) SetRestrictions(ctx context.Context, userID string, tags []string) error {
	if err := a.prefs.SetRestrictions(ctx, userID, tags); err != nil {
		return err
	}
	current, err := a.prefs.FetchRestrictions(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, ok(fmt.Sprintf("Restricted tags: %v", current)))
	return nil
}

// ShowMetrics prints usage for the last days plus system health.
func (a *App) ShowMetrics(days int) error {
	usage, err := a.metricsStore.GetDailyUsage(days)
	if err != nil {
		return fmt.Errorf("failed to get usage: %w", err)
	}
	fmt.Fprintln(a.out, RenderUsage(usage, metrics.GetSysHealth(filepath.Dir(a.cfg.DatabasePath), a.db.SQL)))
	return nil
}

// CleanupMetrics removes metric rows older than days.
func (a *App) CleanupMetrics(days int) error {
	removed, err := a.metricsStore.Cleanup(days)
	if err != nil {
		return err
	}
	log.Printf("Removed %d metric rows older than %d days.", removed, days)
	return nil
}
