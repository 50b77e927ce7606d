package bot

import (
	"fmt"
	"testing"

	"snappword/internal/model"
)

func testCards(n int) []model.VocabCard {
	cards := make([]model.VocabCard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, model.VocabCard{
			ID:          fmt.Sprintf("c%d", i),
			Word:        fmt.Sprintf("word-%d", i),
			Translation: "翻譯",
			SourceApp:   "Duolingo",
		})
	}
	return cards
}

func TestBuildVocabCarouselSingleCard(t *testing.T) {
	msg := buildVocabCarousel(testCards(1))

	if msg["type"] != "flex" {
		t.Errorf("message type = %v", msg["type"])
	}
	if got := msg["altText"]; got != "📖 單字卡：word-0" {
		t.Errorf("altText = %v", got)
	}
	bubble, ok := msg["contents"].(map[string]any)
	if !ok || bubble["type"] != "bubble" {
		t.Errorf("single card should be a lone bubble, got %v", msg["contents"])
	}
}

func TestBuildVocabCarouselMultipleCards(t *testing.T) {
	msg := buildVocabCarousel(testCards(3))

	if got := msg["altText"]; got != "📖 3 個單字卡" {
		t.Errorf("altText = %v", got)
	}
	carousel, ok := msg["contents"].(map[string]any)
	if !ok || carousel["type"] != "carousel" {
		t.Fatalf("contents = %v, want carousel", msg["contents"])
	}
	bubbles, ok := carousel["contents"].([]map[string]any)
	if !ok || len(bubbles) != 3 {
		t.Errorf("bubbles = %d, want 3", len(bubbles))
	}
}

func TestBuildVocabCarouselTruncates(t *testing.T) {
	msg := buildVocabCarousel(testCards(12))

	if got := msg["altText"]; got != "📖 10 個單字卡" {
		t.Errorf("altText = %v", got)
	}
	carousel := msg["contents"].(map[string]any)
	bubbles := carousel["contents"].([]map[string]any)
	if len(bubbles) != maxCarouselBubbles {
		t.Errorf("bubbles = %d, want %d", len(bubbles), maxCarouselBubbles)
	}
}

func TestBuildVocabBubbleButtonData(t *testing.T) {
	bubble := buildVocabBubble(model.VocabCard{ID: "card-42", Word: "hello"})

	footer := bubble["footer"].(map[string]any)
	buttons := footer["contents"].([]map[string]any)
	if len(buttons) != 2 {
		t.Fatalf("buttons = %d, want save and skip", len(buttons))
	}

	save := buttons[0]["action"].(map[string]any)
	if got := save["data"]; got != "action=save&card_id=card-42" {
		t.Errorf("save data = %v", got)
	}
	skip := buttons[1]["action"].(map[string]any)
	if got := skip["data"]; got != "action=skip&card_id=card-42" {
		t.Errorf("skip data = %v", got)
	}

	// The postback decoder must accept exactly what the buttons encode.
	action := ParsePostback(save["data"].(string))
	if action.Kind != PostbackSave || action.CardID != "card-42" {
		t.Errorf("decoded save action = %+v", action)
	}
}

func TestBuildNotice(t *testing.T) {
	msg := buildNotice("some notice")

	if msg["type"] != "flex" {
		t.Errorf("message type = %v", msg["type"])
	}
	if got := msg["altText"]; got != "some notice" {
		t.Errorf("altText = %v", got)
	}
}
