package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"meal-scheduler/internal/schedule"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Defaults", func(t *testing.T) {
		for _, k := range []string{"DATABASE_PATH", "EXPORT_PATH", "DEFAULT_USER_ID", "PORT", "TELEGRAM_BOT_TOKEN", "GHOST_API_URL"} {
			setEnv(k, "")
		}

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "data/meal-scheduler.db" {
			t.Errorf("Expected default database path, got '%s'", cfg.DatabasePath)
		}
		if cfg.DefaultUserID != "local" {
			t.Errorf("Expected default user 'local', got '%s'", cfg.DefaultUserID)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected default port 8080, got '%s'", cfg.Port)
		}
	})

	t.Run("Success", func(t *testing.T) {
		setEnv("DATABASE_PATH", "/tmp/x.db")
		setEnv("GHOST_API_URL", "http://ghost.test")
		setEnv("GHOST_ADMIN_API_KEY", "id:secret")
		setEnv("TELEGRAM_BOT_TOKEN", "token")
		setEnv("TELEGRAM_WEBHOOK_URL", "https://bot.test/webhook")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")
		setEnv("ADMIN_TELEGRAM_ID", "12")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "/tmp/x.db" {
			t.Errorf("Expected DatabasePath '/tmp/x.db', got '%s'", cfg.DatabasePath)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 34 {
			t.Errorf("Expected allowed ids [12 34], got %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 12 {
			t.Errorf("Expected admin id 12, got %d", cfg.AdminTelegramID)
		}
		if !cfg.IsAllowedTelegramUser(34) || cfg.IsAllowedTelegramUser(56) {
			t.Error("Unexpected allow-list result")
		}
	})

	t.Run("MissingWebhookURL", func(t *testing.T) {
		setEnv("TELEGRAM_BOT_TOKEN", "token")
		os.Unsetenv("TELEGRAM_WEBHOOK_URL")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing TELEGRAM_WEBHOOK_URL, got nil")
		}
		expectedError := "TELEGRAM_WEBHOOK_URL environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingGhostAdminKey", func(t *testing.T) {
		setEnv("TELEGRAM_BOT_TOKEN", "")
		setEnv("GHOST_API_URL", "http://ghost.test")
		os.Unsetenv("GHOST_ADMIN_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GHOST_ADMIN_API_KEY, got nil")
		}
		expectedError := "GHOST_ADMIN_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("InvalidAllowList", func(t *testing.T) {
		setEnv("TELEGRAM_BOT_TOKEN", "")
		setEnv("GHOST_API_URL", "")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12,abc")
		if _, err := NewFromEnv(); err == nil {
			t.Error("Expected error for invalid allow list")
		}
	})
}

func TestSlotPolicy(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		p := DefaultSlotPolicy()
		// 2024-06-08 is a Saturday.
		sat, _ := schedule.ParseDate("2024-06-08")
		mon := sat.AddDate(0, 0, 2)
		slots := p.Slots([]time.Time{sat, mon})
		if got := slots["2024-06-08"]; len(got) != 2 || got[0] != schedule.Lunch || got[1] != schedule.Dinner {
			t.Errorf("Expected lunch and dinner on Saturday, got %v", got)
		}
		if got := slots["2024-06-10"]; len(got) != 1 || got[0] != schedule.Dinner {
			t.Errorf("Expected dinner on Monday, got %v", got)
		}
	})

	t.Run("LoadFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slots.yaml")
		if err := os.WriteFile(path, []byte("days:\n  Friday: [lunch]\n"), 0644); err != nil {
			t.Fatalf("Failed to write policy: %v", err)
		}
		p, err := LoadSlotPolicy(path)
		if err != nil {
			t.Fatalf("LoadSlotPolicy failed: %v", err)
		}
		if len(p.Days) != 1 || p.Days[time.Friday][0] != schedule.Lunch {
			t.Errorf("Unexpected policy: %+v", p.Days)
		}
	})

	t.Run("CanonicalOrder", func(t *testing.T) {
		p, err := ParseSlotPolicy([]byte("days:\n  sunday: [dinner, lunch]\n"))
		if err != nil {
			t.Fatalf("ParseSlotPolicy failed: %v", err)
		}
		got := p.Days[time.Sunday]
		if len(got) != 2 || got[0] != schedule.Lunch || got[1] != schedule.Dinner {
			t.Errorf("Expected [lunch dinner], got %v", got)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := []string{
			"days:\n  funday: [lunch]\n",
			"days:\n  monday: [brunch]\n",
			"days:\n  monday: [lunch, lunch]\n",
			"days: [",
		}
		for _, c := range cases {
			if _, err := ParseSlotPolicy([]byte(c)); err == nil {
				t.Errorf("Expected error for %q", c)
			}
		}
	})
}
