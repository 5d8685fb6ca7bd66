package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-scheduler/internal/api"
	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/clipper"
	"meal-scheduler/internal/config"
	"meal-scheduler/internal/database"
	"meal-scheduler/internal/llm"
	"meal-scheduler/internal/metrics"
	"meal-scheduler/internal/planner"
	"meal-scheduler/internal/preferences"
	"meal-scheduler/internal/schedule"
	"meal-scheduler/internal/scheduler"
	"meal-scheduler/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.APIJWTSecret == "" {
		log.Fatalf("API_JWT_SECRET environment variable not set")
	}

	policy, err := config.LoadSlotPolicy(cfg.SlotPolicyPath)
	if err != nil {
		log.Fatalf("Failed to load slot policy: %v", err)
	}

	ctx := context.Background()

	// 2. Database
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 3. Optional tag suggestions
	var textGen llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer geminiClient.Close()
		textGen = geminiClient
	}

	// 4. Repositories and services
	items := catalog.NewRepository(db.SQL)
	prefs := preferences.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	mealPlanner := planner.NewPlanner(items, prefs, schedule.NewRepository(db.SQL), scheduler.NewAllocator(nil), policy).
		WithRecorder(metricsStore)
	recipeClipper := clipper.NewClipper(items, textGen, metricsStore)

	mux := http.NewServeMux()
	api.NewServer(mealPlanner, items, prefs, cfg.APIJWTSecret).Register(mux)

	// 5. Telegram is optional
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, db.SQL, mealPlanner, recipeClipper, items, prefs, metricsStore)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		bot.RegisterHandlers(mux)
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Scheduler server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
