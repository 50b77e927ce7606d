package bot

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

const maxBodyBytes int64 = 1 << 20 // 1 MiB

// Register registers the webhook route.
func (b *Bot) Register(e *echo.Echo) {
	e.POST("/api/webhook", b.HandleWebhook)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
}

// HandleWebhook processes one webhook delivery. Events are handled in
// order, to completion, before the acknowledgment is returned; the safety
// net around each event guarantees nothing propagates to this layer.
func (b *Bot) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(body)) > maxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "payload too large")
	}

	signature := c.Request().Header.Get("X-Line-Signature")
	if !b.line.VerifySignature(body, signature) {
		return echo.NewHTTPError(http.StatusForbidden, "invalid signature")
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("decode payload: %v", err))
	}

	ctx := c.Request().Context()
	for _, ev := range payload.Events {
		if b.dedup.Seen(ev.WebhookEventID) {
			b.log.Debug("duplicate event skipped", "event_id", ev.WebhookEventID)
			continue
		}
		b.handleEvent(ctx, ev)
	}

	// Fixed acknowledgment regardless of per-event outcomes.
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
