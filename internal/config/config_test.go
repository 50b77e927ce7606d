package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var allKeys = []string{
	"LINE_CHANNEL_SECRET", "LINE_CHANNEL_ACCESS_TOKEN", "GEMINI_API_KEY",
	"SUPABASE_URL", "SUPABASE_SERVICE_KEY", "STORAGE_BUCKET", "DATABASE_PATH",
	"LISTEN_ADDR", "LOG_LEVEL", "ADMIN_LINE_USER_ID", "TELEGRAM_BOT_TOKEN",
	"TELEGRAM_ADMIN_CHAT_ID",
}

var minimalEnv = map[string]string{
	"LINE_CHANNEL_SECRET":       "secret",
	"LINE_CHANNEL_ACCESS_TOKEN": "token",
	"GEMINI_API_KEY":            "key",
	"SUPABASE_URL":              "https://proj.supabase.co",
	"SUPABASE_SERVICE_KEY":      "service-key",
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name:    "missing everything",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:    "one required var missing",
			env:     without(minimalEnv, "GEMINI_API_KEY"),
			wantErr: true,
		},
		{
			name: "required only, defaults applied",
			env:  minimalEnv,
			want: &Config{
				LineChannelSecret:      "secret",
				LineChannelAccessToken: "token",
				GeminiAPIKey:           "key",
				SupabaseURL:            "https://proj.supabase.co",
				SupabaseServiceKey:     "service-key",
				StorageBucket:          "user_screenshots",
				DatabasePath:           "./data/bot.db",
				ListenAddr:             ":8080",
				LogLevel:               "info",
			},
		},
		{
			name: "all values set",
			env: merge(minimalEnv, map[string]string{
				"STORAGE_BUCKET":         "shots",
				"DATABASE_PATH":          "/tmp/bot.db",
				"LISTEN_ADDR":            ":9000",
				"LOG_LEVEL":              "debug",
				"ADMIN_LINE_USER_ID":     "Uadmin",
				"TELEGRAM_BOT_TOKEN":     "tg-tok",
				"TELEGRAM_ADMIN_CHAT_ID": "12345",
			}),
			want: &Config{
				LineChannelSecret:      "secret",
				LineChannelAccessToken: "token",
				GeminiAPIKey:           "key",
				SupabaseURL:            "https://proj.supabase.co",
				SupabaseServiceKey:     "service-key",
				StorageBucket:          "shots",
				DatabasePath:           "/tmp/bot.db",
				ListenAddr:             ":9000",
				LogLevel:               "debug",
				AdminLineUserID:        "Uadmin",
				TelegramBotToken:       "tg-tok",
				TelegramAdminChatID:    12345,
			},
		},
		{
			name: "invalid telegram chat id",
			env: merge(minimalEnv, map[string]string{
				"TELEGRAM_ADMIN_CHAT_ID": "abc",
			}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range allKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func without(base map[string]string, key string) map[string]string {
	out := make(map[string]string, len(base))
	for k, v := range base {
		if k != key {
			out[k] = v
		}
	}
	return out
}
