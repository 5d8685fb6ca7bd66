package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"meal-scheduler/internal/api"
	"meal-scheduler/internal/app"
	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/clipper"
	"meal-scheduler/internal/config"
	"meal-scheduler/internal/database"
	"meal-scheduler/internal/ghost"
	"meal-scheduler/internal/llm"
	"meal-scheduler/internal/metrics"
	"meal-scheduler/internal/planner"
	"meal-scheduler/internal/preferences"
	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"
	"meal-scheduler/internal/storage"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	policy, err := config.LoadSlotPolicy(cfg.SlotPolicyPath)
	if err != nil {
		log.Fatalf("Failed to load slot policy: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var textGen llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		defer geminiClient.Close()
		textGen = geminiClient
	}

	var ghostClient ghost.Client
	if cfg.GhostURL != "" {
		ghostClient = ghost.NewClient(cfg)
	}

	items := catalog.NewRepository(db.SQL)
	prefs := preferences.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	exports, err := storage.NewExportStore(cfg.ExportPath)
	if err != nil {
		log.Fatalf("Failed to initialize export store: %v", err)
	}

	mealPlanner := planner.NewPlanner(items, prefs, schedule.NewRepository(db.SQL), scheduler.NewAllocator(nil), policy).
		WithRecorder(metricsStore)
	recipeClipper := clipper.NewClipper(items, textGen, metricsStore)

	application := app.NewApp(cfg, db, items, prefs, mealPlanner, metricsStore, exports, ghostClient, recipeClipper)

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(ctx, application, cfg, cmd, args); err != nil {
		log.Fatalf("%s failed: %v", cmd, err)
	}
}

func run(ctx context.Context, a *app.App, cfg *config.Config, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	user := fs.String("user", cfg.DefaultUserID, "User the command acts on")

	switch cmd {
	case "import":
		fs.Parse(args)
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: import <items.csv>")
		}
		return a.ImportItems(ctx, *user, fs.Arg(0))

	case "generate":
		startFlag := fs.String("start", "", "First day (YYYY-MM-DD); defaults to next Monday")
		endFlag := fs.String("end", "", "Last day (YYYY-MM-DD); defaults to start + 6 days")
		save := fs.Bool("save", false, "Save the generated schedule")
		replace := fs.Bool("replace", false, "Replace an existing schedule for the same start date")
		fs.Parse(args)

		start := planner.GetNextMonday(time.Now())
		if *startFlag != "" {
			d, err := schedule.ParseDate(*startFlag)
			if err != nil {
				return err
			}
			start = d
		}
		_, end := planner.WeekRange(start)
		if *endFlag != "" {
			d, err := schedule.ParseDate(*endFlag)
			if err != nil {
				return err
			}
			end = d
		}
		return a.GenerateSchedule(ctx, *user, start, end, *save || *replace, *replace)

	case "show", "delete", "export":
		fs.Parse(args)
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: %s <schedule-id>", cmd)
		}
		switch cmd {
		case "show":
			return a.ShowSchedule(ctx, *user, fs.Arg(0))
		case "delete":
			return a.DeleteSchedule(ctx, *user, fs.Arg(0))
		default:
			return a.ExportSchedule(ctx, *user, fs.Arg(0))
		}

	case "list":
		fs.Parse(args)
		return a.ListSchedules(ctx, *user)

	case "publish":
		publish := fs.Bool("publish", false, "Publish immediately instead of saving a draft")
		fs.Parse(args)
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: publish [-publish] <schedule-id>")
		}
		return a.PublishSchedule(ctx, *user, fs.Arg(0), *publish)

	case "sync-ghost":
		fs.Parse(args)
		return a.SyncGhost(ctx, *user)

	case "clip":
		roleFlag := fs.String("role", "main", "Item role: main or side")
		fs.Parse(args)
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: clip [-role main|side] <url>")
		}
		role, err := catalog.ParseRole(*roleFlag)
		if err != nil {
			return err
		}
		return a.Clip(ctx, *user, fs.Arg(0), role)

	case "restrict":
		fs.Parse(args)
		var tags []string
		for _, arg := range fs.Args() {
			tags = append(tags, strings.Split(arg, ",")...)
		}
		return a.SetRestrictions(ctx, *user, tags)

	case "metrics":
		days := fs.Int("days", 7, "Number of days to report")
		fs.Parse(args)
		return a.ShowMetrics(*days)

	case "metrics-cleanup":
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)
		return a.CleanupMetrics(*days)

	case "token":
		ttl := fs.Duration("ttl", 30*24*time.Hour, "Token lifetime")
		fs.Parse(args)
		token, err := api.IssueToken(cfg.APIJWTSecret, *user, *ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	printUsage()
	return fmt.Errorf("unknown command: %s", cmd)
}

func printUsage() {
	fmt.Println("Usage: meal-scheduler <command> [flags] [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  import <file.csv>       Import items from a spreadsheet")
	fmt.Println("  generate                Generate a schedule (-start, -end, -save, -replace)")
	fmt.Println("  list                    List saved schedules")
	fmt.Println("  show <id>               Show a saved schedule")
	fmt.Println("  delete <id>             Delete a saved schedule")
	fmt.Println("  export <id>             Write a saved schedule as JSON")
	fmt.Println("  publish <id>            Post a saved schedule to Ghost")
	fmt.Println("  sync-ghost              Import main/side posts from Ghost")
	fmt.Println("  clip <url>              Save a recipe page as an item (-role)")
	fmt.Println("  restrict <tag,...>      Set once-a-day tags")
	fmt.Println("  metrics                 Show usage and health")
	fmt.Println("  metrics-cleanup         Remove old metric records")
	fmt.Println("  token                   Issue an API token for -user")
	fmt.Println("\nEvery command accepts -user (default $DEFAULT_USER_ID).")
}
