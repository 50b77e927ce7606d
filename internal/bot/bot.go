// Package bot implements the webhook event pipeline: signature checking,
// event deduplication and routing, the screenshot analysis pipeline, quota
// gating, the upgrade flow, and postback handling.
package bot

import (
	"context"
	"log/slog"
	"time"

	"snappword/internal/dedup"
	"snappword/internal/gemini"
	"snappword/internal/line"
	"snappword/internal/model"
	"snappword/internal/quota"
	"snappword/internal/storage"
)

const (
	// analyzeTimeout bounds the analyzer call. It must stay strictly below
	// the hosting platform's request-lifetime ceiling.
	analyzeTimeout = 25 * time.Second

	// upgradeWindow is how long a waiting_image upgrade request stays
	// active. Older requests are inert and never resumed.
	upgradeWindow = 10 * time.Minute
)

type lineAPI interface {
	VerifySignature(body []byte, signature string) bool
	Reply(ctx context.Context, replyToken string, messages []line.Message) error
	ReplyText(ctx context.Context, replyToken, text string) error
	Push(ctx context.Context, to string, messages []line.Message) error
	GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error)
	GetProfile(ctx context.Context, userID string) (*line.Profile, error)
}

type analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*model.ParseResult, *gemini.CallMeta, error)
}

type blobStore interface {
	UploadScreenshot(ctx context.Context, userID string, image []byte) (string, error)
	UploadUpgradeProof(ctx context.Context, userID string, image []byte) (string, error)
}

type operatorNotifier interface {
	Notify(ctx context.Context, text string)
}

// Bot routes inbound webhook events and runs the screenshot pipeline.
type Bot struct {
	store    storage.Storage
	line     lineAPI
	analyzer analyzer
	blobs    blobStore
	gate     *quota.Gate
	dedup    *dedup.Store
	notifier operatorNotifier
	log      *slog.Logger
	now      func() time.Time
}

// New creates a Bot wired to its collaborators.
func New(store storage.Storage, lineClient lineAPI, az analyzer, blobs blobStore, notifier operatorNotifier, log *slog.Logger) *Bot {
	return &Bot{
		store:    store,
		line:     lineClient,
		analyzer: az,
		blobs:    blobs,
		gate:     quota.NewGate(store),
		dedup:    dedup.New(dedup.DefaultWindow),
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// resolveUser fetches the LINE profile (optional) and looks the user up,
// creating the record on first contact.
func (b *Bot) resolveUser(ctx context.Context, lineUserID string) (*model.User, error) {
	var displayName string
	profile, err := b.line.GetProfile(ctx, lineUserID)
	if err != nil {
		b.log.Warn("fetch profile", "line_user_id", lineUserID, "error", err)
	} else if profile != nil {
		displayName = profile.DisplayName
	}
	return b.store.GetOrCreateUser(ctx, lineUserID, displayName)
}

// logEvent writes an operational log entry. Best-effort: a failed write is
// logged and never aborts the caller.
func (b *Bot) logEvent(ctx context.Context, userID, eventType string, latencyMS, tokenCount int64, payload map[string]any) {
	ev := &model.LogEvent{
		UserID:     userID,
		EventType:  eventType,
		LatencyMS:  latencyMS,
		TokenCount: tokenCount,
		Payload:    payload,
	}
	if err := b.store.LogEvent(ctx, ev); err != nil {
		b.log.Error("write log event", "event_type", eventType, "error", err)
	}
}
