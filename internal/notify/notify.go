// Package notify delivers best-effort operator alerts. Failures are logged
// and swallowed; an alert must never affect the user-facing outcome that
// triggered it.
package notify

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"snappword/internal/line"
)

type linePusher interface {
	Push(ctx context.Context, to string, messages []line.Message) error
}

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Operator notifies the operator through the LINE admin account and,
// when configured, mirrors alerts to a Telegram chat.
type Operator struct {
	line            linePusher
	adminLineUserID string
	telegram        telegramAPI
	telegramChatID  int64
	log             *slog.Logger
}

// NewOperator creates an Operator pushing to adminLineUserID. An empty id
// disables the LINE channel.
func NewOperator(pusher linePusher, adminLineUserID string, log *slog.Logger) *Operator {
	return &Operator{
		line:            pusher,
		adminLineUserID: adminLineUserID,
		log:             log,
	}
}

// WithTelegram enables the Telegram mirror using an existing bot token.
func (o *Operator) WithTelegram(token string, chatID int64) error {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}
	o.telegram = api
	o.telegramChatID = chatID
	return nil
}

// Notify sends text to every configured operator channel. Best-effort:
// errors are logged, never returned.
func (o *Operator) Notify(ctx context.Context, text string) {
	if o.adminLineUserID != "" {
		if err := o.line.Push(ctx, o.adminLineUserID, []line.Message{line.NewTextMessage(text)}); err != nil {
			o.log.Error("operator line push", "error", err)
		}
	}
	if o.telegram != nil {
		if _, err := o.telegram.Send(tgbotapi.NewMessage(o.telegramChatID, text)); err != nil {
			o.log.Error("operator telegram send", "error", err)
		}
	}
}
