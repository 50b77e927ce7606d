package bot

// webhookPayload is the body of one webhook delivery. It may carry
// multiple heterogeneous events.
type webhookPayload struct {
	Events []Event `json:"events"`
}

// Event is one inbound platform event: follow, message, or postback.
// Unknown types are silently ignored.
type Event struct {
	Type           string         `json:"type"`
	WebhookEventID string         `json:"webhookEventId"`
	ReplyToken     string         `json:"replyToken"`
	Source         EventSource    `json:"source"`
	Message        *MessageEvent  `json:"message"`
	Postback       *PostbackEvent `json:"postback"`
}

// EventSource identifies the subject of an event.
type EventSource struct {
	UserID string `json:"userId"`
}

// MessageEvent is the message part of a message event.
type MessageEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// PostbackEvent carries the opaque action payload of a button press.
type PostbackEvent struct {
	Data string `json:"data"`
}
