package bot

import (
	"context"
	"fmt"
	"strings"

	"snappword/internal/model"
)

// PostbackKind tags a decoded postback action.
type PostbackKind int

// Decoded postback variants. Unrecognized or incomplete payloads map to
// PostbackUnknown and are ignored.
const (
	PostbackUnknown PostbackKind = iota
	PostbackSave
	PostbackSkip
)

// PostbackAction is a decoded button press.
type PostbackAction struct {
	Kind   PostbackKind
	CardID string
}

// ParsePostback decodes the opaque key=value&key=value payload of a button
// press. The first occurrence wins per key; a missing action or card id
// yields PostbackUnknown.
func ParsePostback(data string) PostbackAction {
	values := map[string]string{}
	for _, pair := range strings.Split(data, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		if _, ok := values[key]; !ok {
			values[key] = value
		}
	}

	action := PostbackAction{CardID: values["card_id"]}
	if action.CardID == "" {
		return PostbackAction{}
	}
	switch values["action"] {
	case "save":
		action.Kind = PostbackSave
	case "skip":
		action.Kind = PostbackSkip
	}
	return action
}

// handlePostback applies a decoded button action. Save transitions the
// card to Learning only when the card id and the requesting user match in
// the same update predicate; zero matched rows reads as "not found"
// whether the id is unknown or owned by someone else.
func (b *Bot) handlePostback(ctx context.Context, ev Event) error {
	if ev.Source.UserID == "" || ev.Postback == nil {
		return nil
	}

	action := ParsePostback(ev.Postback.Data)
	if action.Kind == PostbackUnknown {
		return nil
	}

	if action.Kind == PostbackSkip {
		return b.line.ReplyText(ctx, ev.ReplyToken, msgCardSkipped)
	}

	user, err := b.store.GetOrCreateUser(ctx, ev.Source.UserID, "")
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}

	updated, err := b.store.UpdateCardStatus(ctx, action.CardID, user.ID, model.StatusLearning)
	if err != nil {
		return fmt.Errorf("update card status: %w", err)
	}
	if !updated {
		return b.line.ReplyText(ctx, ev.ReplyToken, msgCardNotFound)
	}
	return b.line.ReplyText(ctx, ev.ReplyToken, msgCardSaved)
}
