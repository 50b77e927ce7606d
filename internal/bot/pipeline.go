package bot

import (
	"context"
	"errors"
	"fmt"

	"snappword/internal/line"
	"snappword/internal/model"
)

// handleImageMessage acknowledges the event through the short-lived reply
// token, then runs the screenshot pipeline over the push channel. Every
// accepted image produces exactly one user-visible outcome: the pipeline's
// terminal paths push their own message and return nil, and any remaining
// error lands in failProcessing, which pushes the generic apology.
func (b *Bot) handleImageMessage(ctx context.Context, ev Event) {
	// Consume the reply token first; it expires in seconds and the slow
	// work below must not race it.
	if err := b.line.ReplyText(ctx, ev.ReplyToken, msgAnalyzing); err != nil {
		b.log.Warn("loading reply", "error", err)
	}

	user, err := b.resolveUser(ctx, ev.Source.UserID)
	if err != nil {
		b.failProcessing(ctx, ev.Source.UserID, nil, fmt.Errorf("resolve user: %w", err))
		return
	}

	if err := b.processScreenshot(ctx, user, ev.Message.ID); err != nil {
		b.failProcessing(ctx, ev.Source.UserID, user, err)
	}
}

// processScreenshot is the core pipeline. Terminal non-error paths (quota
// denial, analyzer timeout, empty extraction, upgrade interception) push
// their own message and return nil; a returned error means no user-visible
// outcome has been delivered yet.
func (b *Bot) processScreenshot(ctx context.Context, user *model.User, messageID string) error {
	// Upgrade-flow interception: an active waiting_image request consumes
	// this image as payment proof. The analyzer is never called.
	req, err := b.store.ActiveUpgradeRequest(ctx, user.ID, b.now().Add(-upgradeWindow))
	if err != nil {
		return fmt.Errorf("lookup upgrade request: %w", err)
	}
	if req != nil {
		return b.completeUpgrade(ctx, user, req, messageID)
	}

	decision, err := b.gate.Check(ctx, user)
	if err != nil {
		return fmt.Errorf("quota check: %w", err)
	}
	if !decision.Allowed {
		// An exhausted quota is an expected denial, not a failure event.
		return b.line.Push(ctx, user.LineUserID, []line.Message{buildNotice(quotaMessage(decision, b.now()))})
	}

	image, mimeType, err := b.line.GetMessageContent(ctx, messageID)
	if err != nil {
		return fmt.Errorf("download image: %w", err)
	}

	b.logEvent(ctx, user.ID, model.EventImageReceived, 0, 0, map[string]any{"message_id": messageID})

	imageURL, err := b.blobs.UploadScreenshot(ctx, user.ID, image)
	if err != nil {
		return fmt.Errorf("upload screenshot: %w", err)
	}

	actx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	result, meta, err := b.analyzer.Analyze(actx, image, mimeType)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return b.analyzeTimedOut(ctx, user)
		}
		return fmt.Errorf("analyze screenshot: %w", err)
	}

	b.logEvent(ctx, user.ID, model.EventGeminiCall, meta.LatencyMS, meta.TokenCount,
		map[string]any{"word_count": len(result.Words)})

	if len(result.Words) == 0 {
		return b.line.Push(ctx, user.LineUserID, []line.Message{buildNotice(msgNothingFound)})
	}

	cards := make([]model.VocabCard, 0, len(result.Words))
	for _, w := range result.Words {
		cards = append(cards, model.VocabCard{
			UserID:        user.ID,
			Word:          w.Word,
			Translation:   w.Translation,
			Pronunciation: w.Pronunciation,
			Sentence:      w.Sentence,
			SentenceTrans: w.SentenceTrans,
			AIExample:     w.AIExample,
			ImageURL:      imageURL,
			SourceApp:     result.SourceApp,
			TargetLang:    result.TargetLang,
			Tags:          w.Tags,
			ReviewStatus:  model.StatusNew,
		})
	}
	if err := b.store.InsertCards(ctx, cards); err != nil {
		return fmt.Errorf("save cards: %w", err)
	}

	b.logEvent(ctx, user.ID, model.EventParseSuccess, 0, 0, map[string]any{
		"cards_saved": len(cards),
		"source_app":  result.SourceApp,
	})

	return b.line.Push(ctx, user.LineUserID, []line.Message{buildVocabCarousel(cards)})
}

// analyzeTimedOut is the analyzer-timeout terminal path: distinct user
// message, parse_fail record, operator alert.
func (b *Bot) analyzeTimedOut(ctx context.Context, user *model.User) error {
	b.logEvent(ctx, user.ID, model.EventParseFail, 0, 0, map[string]any{"error": "timeout"})
	err := b.line.Push(ctx, user.LineUserID, []line.Message{buildNotice(msgAnalyzeTimeout)})
	b.notifier.Notify(ctx, fmt.Sprintf("⏰ AI 解析逾時\n用戶：%s", displayName(user)))
	return err
}

// failProcessing is the generic failure path for the screenshot pipeline:
// parse_fail record, one apologetic push, operator alert with the
// truncated error.
func (b *Bot) failProcessing(ctx context.Context, lineUserID string, user *model.User, cause error) {
	b.log.Error("process screenshot", "line_user_id", lineUserID, "error", cause)

	userID := ""
	if user != nil {
		userID = user.ID
	}
	b.logEvent(ctx, userID, model.EventParseFail, 0, 0, map[string]any{"error": cause.Error()})

	if err := b.line.Push(ctx, lineUserID, []line.Message{buildNotice(msgGenericError)}); err != nil {
		b.log.Error("failure push", "error", err)
	}

	name := lineUserID
	if user != nil && user.DisplayName != "" {
		name = user.DisplayName
	}
	b.notifier.Notify(ctx, fmt.Sprintf("❌ 截圖處理失敗\n用戶：%s\n錯誤：%s", name, truncateErr(cause, 300)))
}

// completeUpgrade finalizes the waiting_image request with this image as
// payment proof, then alerts the operator. The operator alert must not
// affect the success message already pushed.
func (b *Bot) completeUpgrade(ctx context.Context, user *model.User, req *model.UpgradeRequest, messageID string) error {
	image, _, err := b.line.GetMessageContent(ctx, messageID)
	if err != nil {
		return fmt.Errorf("download proof image: %w", err)
	}

	proofURL, err := b.blobs.UploadUpgradeProof(ctx, user.ID, image)
	if err != nil {
		return fmt.Errorf("upload proof: %w", err)
	}

	if err := b.store.CompleteUpgradeRequest(ctx, req.ID, proofURL); err != nil {
		return fmt.Errorf("complete upgrade request: %w", err)
	}

	if err := b.line.Push(ctx, user.LineUserID, []line.Message{buildNotice(msgProofReceived)}); err != nil {
		return fmt.Errorf("push proof confirmation: %w", err)
	}

	b.notifier.Notify(ctx, fmt.Sprintf("🔔 新付費通知\n\n用戶：%s\n\n請至後台審核 👉 snappword.com/admin", displayName(user)))
	return nil
}

func displayName(u *model.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.LineUserID
}
