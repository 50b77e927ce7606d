package bot

import (
	"context"
	"fmt"

	"snappword/internal/line"
)

// handleEvent dispatches one event to its handler. It is the safety net:
// no failure, including a panic, escapes past it, and any uncaught failure
// still produces a user-visible error message and an operator alert.
func (b *Bot) handleEvent(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panic", "event_type", ev.Type, "panic", r)
			b.failsafe(ctx, ev, fmt.Errorf("panic: %v", r))
		}
	}()

	var err error
	switch ev.Type {
	case "follow":
		err = b.handleFollow(ctx, ev)
	case "message":
		err = b.handleMessage(ctx, ev)
	case "postback":
		err = b.handlePostback(ctx, ev)
	default:
		// Unknown event types are dropped without error.
		return
	}

	if err != nil {
		b.log.Error("handle event", "event_type", ev.Type, "error", err)
		b.failsafe(ctx, ev, err)
	}
}

// failsafe is the last line of defense: best-effort generic error message
// to the user plus an operator alert. Its own failures are only logged.
func (b *Bot) failsafe(ctx context.Context, ev Event, cause error) {
	if ev.Source.UserID != "" {
		if err := b.line.Push(ctx, ev.Source.UserID, []line.Message{buildNotice(msgGenericError)}); err != nil {
			b.log.Error("failsafe push", "error", err)
		}
	}
	b.notifier.Notify(ctx, fmt.Sprintf("⚠️ 事件處理失敗（%s）\n%s", ev.Type, truncateErr(cause, 300)))
}

// handleFollow welcomes a new friend and ensures their user record exists.
func (b *Bot) handleFollow(ctx context.Context, ev Event) error {
	if ev.Source.UserID == "" {
		return nil
	}
	if _, err := b.resolveUser(ctx, ev.Source.UserID); err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}
	return b.line.ReplyText(ctx, ev.ReplyToken, msgWelcome)
}

// handleMessage routes image and text messages; anything else gets the
// usage prompt.
func (b *Bot) handleMessage(ctx context.Context, ev Event) error {
	if ev.Source.UserID == "" || ev.Message == nil {
		return nil
	}

	switch ev.Message.Type {
	case "image":
		b.handleImageMessage(ctx, ev)
		return nil
	case "text":
		return b.handleTextCommand(ctx, ev)
	default:
		return b.line.ReplyText(ctx, ev.ReplyToken, msgSendScreenshot)
	}
}

func truncateErr(err error, n int) string {
	s := err.Error()
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
