package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"snappword/internal/blob"
	"snappword/internal/bot"
	"snappword/internal/config"
	"snappword/internal/gemini"
	"snappword/internal/line"
	"snappword/internal/notify"
	"snappword/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	httpClient := &http.Client{Timeout: 60 * time.Second}
	lineClient := line.New(cfg.LineChannelSecret, cfg.LineChannelAccessToken, httpClient)
	analyzer := gemini.New(cfg.GeminiAPIKey, httpClient)
	blobs := blob.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket, httpClient)

	notifier := notify.NewOperator(lineClient, cfg.AdminLineUserID, log)
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID != 0 {
		if err := notifier.WithTelegram(cfg.TelegramBotToken, cfg.TelegramAdminChatID); err != nil {
			log.Warn("telegram notifier disabled", "error", err)
		}
	}

	b := bot.New(store, lineClient, analyzer, blobs, notifier, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	b.Register(e)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("starting webhook server", "addr", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown server", "error", err)
	}

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
