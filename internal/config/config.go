package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath  string
	ExportPath    string
	DefaultUserID string

	// Slot policy; empty means the built-in policy.
	SlotPolicyPath string

	// HTTP API
	APIJWTSecret string
	Port         string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	// Ghost Config
	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string

	GeminiAPIKey string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	if telegramBotToken != "" && telegramWebhookURL == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}

	allowed, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		adminID, err = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	ghostURL := os.Getenv("GHOST_API_URL")
	ghostContentKey := os.Getenv("GHOST_CONTENT_API_KEY")
	ghostAdminKey := os.Getenv("GHOST_ADMIN_API_KEY")
	if ghostURL != "" && ghostAdminKey == "" {
		return nil, fmt.Errorf("GHOST_ADMIN_API_KEY environment variable not set")
	}

	return &Config{
		DatabasePath:           getEnv("DATABASE_PATH", "data/meal-scheduler.db"),
		ExportPath:             getEnv("EXPORT_PATH", "data/exports"),
		DefaultUserID:          getEnv("DEFAULT_USER_ID", "local"),
		SlotPolicyPath:         os.Getenv("SLOT_POLICY_PATH"),
		APIJWTSecret:           os.Getenv("API_JWT_SECRET"),
		Port:                   getEnv("PORT", "8080"),
		TelegramBotToken:       telegramBotToken,
		TelegramWebhookURL:     telegramWebhookURL,
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
		GhostURL:               ghostURL,
		GhostContentKey:        ghostContentKey,
		GhostAdminKey:          ghostAdminKey,
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
	}, nil
}

// IsAllowedTelegramUser reports whether id may talk to the bot.
// An empty allow list admits everyone.
func (c *Config) IsAllowedTelegramUser(id int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a user id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
