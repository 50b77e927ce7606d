package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"snappword/internal/dedup"
	"snappword/internal/gemini"
	"snappword/internal/line"
	"snappword/internal/model"
	"snappword/internal/quota"
	"snappword/internal/storage"
)

type push struct {
	to       string
	messages []line.Message
}

type fakeLine struct {
	verifyOK    bool
	replies     []string
	pushes      []push
	content     []byte
	contentMime string
	contentErr  error
	profile     *line.Profile
	profileErr  error
	replyErr    error
	pushErr     error
}

func (f *fakeLine) VerifySignature(body []byte, signature string) bool { return f.verifyOK }

func (f *fakeLine) Reply(ctx context.Context, replyToken string, messages []line.Message) error {
	if f.replyErr != nil {
		return f.replyErr
	}
	for _, m := range messages {
		if text, ok := m["text"].(string); ok {
			f.replies = append(f.replies, text)
		}
	}
	return nil
}

func (f *fakeLine) ReplyText(ctx context.Context, replyToken, text string) error {
	if f.replyErr != nil {
		return f.replyErr
	}
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeLine) Push(ctx context.Context, to string, messages []line.Message) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, push{to: to, messages: messages})
	return nil
}

func (f *fakeLine) GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error) {
	if f.contentErr != nil {
		return nil, "", f.contentErr
	}
	mime := f.contentMime
	if mime == "" {
		mime = "image/jpeg"
	}
	return f.content, mime, nil
}

func (f *fakeLine) GetProfile(ctx context.Context, userID string) (*line.Profile, error) {
	return f.profile, f.profileErr
}

// lastPushAltText returns the altText of the only message in the most
// recent push. Every pipeline outcome is a single flex message, so the
// altText identifies which outcome was delivered.
func (f *fakeLine) lastPushAltText(t *testing.T) string {
	t.Helper()
	if len(f.pushes) == 0 {
		t.Fatal("no pushes recorded")
	}
	p := f.pushes[len(f.pushes)-1]
	if len(p.messages) != 1 {
		t.Fatalf("push carried %d messages, want 1", len(p.messages))
	}
	alt, _ := p.messages[0]["altText"].(string)
	return alt
}

type fakeAnalyzer struct {
	result   *model.ParseResult
	meta     *gemini.CallMeta
	err      error
	panicMsg string
	calls    int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*model.ParseResult, *gemini.CallMeta, error) {
	f.calls++
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, nil, f.err
	}
	meta := f.meta
	if meta == nil {
		meta = &gemini.CallMeta{}
	}
	return f.result, meta, nil
}

type fakeBlobs struct {
	screenshots []string // user ids
	proofs      []string
	err         error
}

func (f *fakeBlobs) UploadScreenshot(ctx context.Context, userID string, image []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.screenshots = append(f.screenshots, userID)
	return "https://blobs/screenshots/" + userID + "/img.jpg", nil
}

func (f *fakeBlobs) UploadUpgradeProof(ctx context.Context, userID string, image []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.proofs = append(f.proofs, userID)
	return "https://blobs/upgrade_proofs/" + userID + "/img.jpg", nil
}

type fakeNotifier struct {
	alerts []string
}

func (f *fakeNotifier) Notify(ctx context.Context, text string) {
	f.alerts = append(f.alerts, text)
}

// recordingStore captures inserted cards while delegating to real storage.
type recordingStore struct {
	storage.Storage
	inserted []model.VocabCard
}

func (r *recordingStore) InsertCards(ctx context.Context, cards []model.VocabCard) error {
	if err := r.Storage.InsertCards(ctx, cards); err != nil {
		return err
	}
	r.inserted = append(r.inserted, cards...)
	return nil
}

type testBot struct {
	bot      *Bot
	store    *recordingStore
	line     *fakeLine
	analyzer *fakeAnalyzer
	blobs    *fakeBlobs
	notifier *fakeNotifier
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	sqlite, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test storage: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	st := &recordingStore{Storage: sqlite}
	fl := &fakeLine{verifyOK: true, content: []byte("image-bytes")}
	fa := &fakeAnalyzer{result: &model.ParseResult{SourceApp: "General", TargetLang: "en", SourceLang: "zh-TW"}}
	fb := &fakeBlobs{}
	fn := &fakeNotifier{}

	b := &Bot{
		store:    st,
		line:     fl,
		analyzer: fa,
		blobs:    fb,
		gate:     quota.NewGate(st),
		dedup:    dedup.New(dedup.DefaultWindow),
		notifier: fn,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	return &testBot{bot: b, store: st, line: fl, analyzer: fa, blobs: fb, notifier: fn}
}

func (tb *testBot) user(t *testing.T, lineUserID string) *model.User {
	t.Helper()
	u, err := tb.store.GetOrCreateUser(context.Background(), lineUserID, "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (tb *testBot) countEvents(t *testing.T, userID, eventType string) int {
	t.Helper()
	n, err := tb.store.CountEvents(context.Background(), userID, eventType, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	return n
}

func imageEvent(userID, messageID string) Event {
	return Event{
		Type:       "message",
		ReplyToken: "reply-token",
		Source:     EventSource{UserID: userID},
		Message:    &MessageEvent{ID: messageID, Type: "image"},
	}
}

func textEvent(userID, text string) Event {
	return Event{
		Type:       "message",
		ReplyToken: "reply-token",
		Source:     EventSource{UserID: userID},
		Message:    &MessageEvent{ID: "m1", Type: "text", Text: text},
	}
}
