package bot

import (
	"fmt"

	"snappword/internal/line"
	"snappword/internal/model"
)

const brandColor = "#06C755"

// maxCarouselBubbles caps the visual message at 10 cards. The cap is
// presentation-only: every extracted word is persisted regardless.
const maxCarouselBubbles = 10

// buildVocabCarousel bundles persisted cards into one flex message. A
// single card becomes a lone bubble; more become a carousel, truncated to
// maxCarouselBubbles at build time.
func buildVocabCarousel(cards []model.VocabCard) line.Message {
	shown := cards
	if len(shown) > maxCarouselBubbles {
		shown = shown[:maxCarouselBubbles]
	}

	bubbles := make([]map[string]any, 0, len(shown))
	for _, c := range shown {
		bubbles = append(bubbles, buildVocabBubble(c))
	}

	if len(bubbles) == 1 {
		return line.Message{
			"type":     "flex",
			"altText":  fmt.Sprintf("📖 單字卡：%s", shown[0].Word),
			"contents": bubbles[0],
		}
	}

	return line.Message{
		"type":    "flex",
		"altText": fmt.Sprintf("📖 %d 個單字卡", len(bubbles)),
		"contents": map[string]any{
			"type":     "carousel",
			"contents": bubbles,
		},
	}
}

// buildVocabBubble renders one card: brand header with the word, body with
// context and translations, footer with save/skip postback buttons. The
// button data encodes action and card_id; the postback handler relies on
// exactly this convention.
func buildVocabBubble(c model.VocabCard) map[string]any {
	header := map[string]any{
		"type":            "box",
		"layout":          "vertical",
		"backgroundColor": brandColor,
		"paddingAll":      "16px",
		"contents": []map[string]any{
			{
				"type":   "text",
				"text":   fmt.Sprintf("📖 %s", c.Word),
				"color":  "#FFFFFF",
				"size":   "xl",
				"weight": "bold",
			},
			{
				"type":   "text",
				"text":   orSpace(c.Pronunciation),
				"color":  "#E0FFE0",
				"size":   "sm",
				"margin": "xs",
			},
		},
	}

	var body []map[string]any
	if c.Sentence != "" {
		body = append(body, map[string]any{
			"type":  "text",
			"text":  c.Sentence,
			"size":  "md",
			"wrap":  true,
			"color": "#333333",
		})
	}

	translation := " "
	if c.Translation != "" {
		translation = fmt.Sprintf("🇹🇼 %s", c.Translation)
	}
	body = append(body, map[string]any{
		"type":   "text",
		"text":   translation,
		"size":   "md",
		"wrap":   true,
		"color":  "#555555",
		"margin": "md",
	})

	if c.SentenceTrans != "" {
		body = append(body, map[string]any{
			"type":   "text",
			"text":   c.SentenceTrans,
			"size":   "sm",
			"wrap":   true,
			"color":  "#888888",
			"margin": "sm",
		})
	}

	if c.AIExample != "" {
		body = append(body,
			map[string]any{"type": "separator", "margin": "lg"},
			map[string]any{
				"type":   "text",
				"text":   "💡 AI 補充例句",
				"size":   "xs",
				"color":  "#AAAAAA",
				"margin": "lg",
			},
			map[string]any{
				"type":   "text",
				"text":   c.AIExample,
				"size":   "sm",
				"wrap":   true,
				"color":  "#666666",
				"margin": "sm",
			},
		)
	}

	if chips := buildTagChips(c); len(chips) > 0 {
		body = append(body, map[string]any{
			"type":     "box",
			"layout":   "horizontal",
			"spacing":  "sm",
			"margin":   "lg",
			"contents": chips,
		})
	}

	footer := map[string]any{
		"type":       "box",
		"layout":     "horizontal",
		"spacing":    "md",
		"paddingAll": "12px",
		"contents": []map[string]any{
			{
				"type": "button",
				"action": map[string]any{
					"type":        "postback",
					"label":       "✅ 記住了",
					"data":        fmt.Sprintf("action=save&card_id=%s", c.ID),
					"displayText": "✅ 已存入單字本！",
				},
				"style":  "primary",
				"color":  brandColor,
				"height": "sm",
			},
			{
				"type": "button",
				"action": map[string]any{
					"type":        "postback",
					"label":       "❌ 跳過",
					"data":        fmt.Sprintf("action=skip&card_id=%s", c.ID),
					"displayText": "已跳過",
				},
				"style":  "secondary",
				"height": "sm",
			},
		},
	}

	return map[string]any{
		"type":   "bubble",
		"size":   "kilo",
		"header": header,
		"body": map[string]any{
			"type":       "box",
			"layout":     "vertical",
			"paddingAll": "16px",
			"spacing":    "sm",
			"contents":   body,
		},
		"footer": footer,
	}
}

func buildTagChips(c model.VocabCard) []map[string]any {
	labels := []string{c.SourceApp}
	if len(c.Tags) > 2 {
		labels = append(labels, c.Tags[:2]...)
	} else {
		labels = append(labels, c.Tags...)
	}

	var chips []map[string]any
	for _, tag := range labels {
		if tag == "" {
			continue
		}
		chips = append(chips, map[string]any{
			"type":            "box",
			"layout":          "horizontal",
			"backgroundColor": "#F0F0F0",
			"cornerRadius":    "8px",
			"paddingAll":      "4px",
			"paddingStart":    "8px",
			"paddingEnd":      "8px",
			"contents": []map[string]any{
				{
					"type":  "text",
					"text":  fmt.Sprintf("🏷 %s", tag),
					"size":  "xxs",
					"color": "#888888",
				},
			},
		})
	}
	return chips
}

// buildNotice renders a plain informational bubble used for every
// pipeline outcome that is not a card delivery.
func buildNotice(text string) line.Message {
	return line.Message{
		"type":    "flex",
		"altText": text,
		"contents": map[string]any{
			"type": "bubble",
			"size": "kilo",
			"body": map[string]any{
				"type":       "box",
				"layout":     "vertical",
				"paddingAll": "20px",
				"contents": []map[string]any{
					{
						"type":   "text",
						"text":   "⚠️ SnappWord",
						"weight": "bold",
						"size":   "md",
						"color":  brandColor,
					},
					{
						"type":   "text",
						"text":   text,
						"wrap":   true,
						"size":   "sm",
						"color":  "#666666",
						"margin": "md",
					},
				},
			},
		},
	}
}

func orSpace(s string) string {
	if s == "" {
		return " "
	}
	return s
}
