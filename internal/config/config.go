// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	LineChannelSecret      string
	LineChannelAccessToken string
	GeminiAPIKey           string
	SupabaseURL            string
	SupabaseServiceKey     string
	StorageBucket          string
	DatabasePath           string
	ListenAddr             string
	LogLevel               string
	AdminLineUserID        string
	TelegramBotToken       string
	TelegramAdminChatID    int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		LineChannelSecret:      strings.TrimSpace(os.Getenv("LINE_CHANNEL_SECRET")),
		LineChannelAccessToken: strings.TrimSpace(os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")),
		GeminiAPIKey:           strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		SupabaseURL:            strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		SupabaseServiceKey:     strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_KEY")),
		AdminLineUserID:        strings.TrimSpace(os.Getenv("ADMIN_LINE_USER_ID")),
		TelegramBotToken:       strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
	}

	required := []struct {
		key   string
		value string
	}{
		{"LINE_CHANNEL_SECRET", cfg.LineChannelSecret},
		{"LINE_CHANNEL_ACCESS_TOKEN", cfg.LineChannelAccessToken},
		{"GEMINI_API_KEY", cfg.GeminiAPIKey},
		{"SUPABASE_URL", cfg.SupabaseURL},
		{"SUPABASE_SERVICE_KEY", cfg.SupabaseServiceKey},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg.StorageBucket = os.Getenv("STORAGE_BUCKET")
	if cfg.StorageBucket == "" {
		cfg.StorageBucket = "user_screenshots"
	}

	cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "./data/bot.db"
	}

	cfg.ListenAddr = os.Getenv("LISTEN_ADDR")
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_ADMIN_CHAT_ID")); raw != "" {
		var id int64
		if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramAdminChatID = id
	}

	return cfg, nil
}
