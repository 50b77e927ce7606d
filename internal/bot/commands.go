package bot

import (
	"context"
	"fmt"
	"strings"
)

// handleTextCommand maps normalized text to a fixed reply. The upgrade
// command additionally opens a waiting_image upgrade request; everything
// else is a pure lookup with a generic fallback.
func (b *Bot) handleTextCommand(ctx context.Context, ev Event) error {
	text := strings.ToLower(strings.TrimSpace(ev.Message.Text))

	switch text {
	case "help", "幫助", "說明":
		return b.line.ReplyText(ctx, ev.ReplyToken, msgHelp)

	case "upgrade", "升級":
		user, err := b.resolveUser(ctx, ev.Source.UserID)
		if err != nil {
			return fmt.Errorf("resolve user: %w", err)
		}
		if _, err := b.store.CreateUpgradeRequest(ctx, user.ID); err != nil {
			return fmt.Errorf("create upgrade request: %w", err)
		}
		return b.line.ReplyText(ctx, ev.ReplyToken, msgUpgradeStart)

	default:
		return b.line.ReplyText(ctx, ev.ReplyToken, msgUnknownText)
	}
}
