// Package line is a minimal LINE Messaging API client: webhook signature
// verification, reply/push delivery, content download, and profile lookup.
package line

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	apiBase     = "https://api.line.me/v2/bot"
	apiDataBase = "https://api-data.line.me/v2/bot"

	maxContentBytes = 10 * 1024 * 1024
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Message is one outbound message document. Text messages and visual
// flex templates share this shape; the platform consumes raw JSON.
type Message map[string]any

// NewTextMessage builds a plain text message.
func NewTextMessage(text string) Message {
	return Message{"type": "text", "text": text}
}

// Profile is the subset of a LINE user profile this service reads.
type Profile struct {
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

// Client talks to the LINE Messaging API.
type Client struct {
	channelSecret string
	accessToken   string
	client        HTTPClient
}

// New creates a Client with the given channel credentials.
func New(channelSecret, accessToken string, client HTTPClient) *Client {
	return &Client{
		channelSecret: channelSecret,
		accessToken:   accessToken,
		client:        client,
	}
}

// VerifySignature checks a webhook body against its X-Line-Signature header:
// base64(HMAC-SHA256(channel secret, body)), compared in constant time.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Reply sends messages using a reply token. The token is single-use and
// valid for roughly 30 seconds after the webhook delivery.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) error {
	return c.post(ctx, apiBase+"/message/reply", map[string]any{
		"replyToken": replyToken,
		"messages":   messages,
	})
}

// ReplyText sends a single text message using a reply token.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	return c.Reply(ctx, replyToken, []Message{NewTextMessage(text)})
}

// Push sends messages to a user with no time bound.
func (c *Client) Push(ctx context.Context, to string, messages []Message) error {
	return c.post(ctx, apiBase+"/message/push", map[string]any{
		"to":       to,
		"messages": messages,
	})
}

// GetMessageContent downloads the media attached to a message.
// Returns the raw bytes and the reported content type.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error) {
	url := fmt.Sprintf("%s/message/%s/content", apiDataBase, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch content: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch content: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read content: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}
	return data, mime, nil
}

// GetProfile looks up a user's profile. Returns nil without error when the
// profile is not available; display names are an optional enrichment.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/profile/"+userID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("line api status %d: %s", resp.StatusCode, msg)
	}
	return nil
}
