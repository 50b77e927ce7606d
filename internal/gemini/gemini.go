// Package gemini calls the Gemini multimodal API to extract vocabulary
// from screenshots.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"snappword/internal/model"
)

const (
	defaultModel = "gemini-2.0-flash"
	endpoint     = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

	maxResponseBytes = 1 * 1024 * 1024
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CallMeta carries latency and token accounting for one analyzer call.
type CallMeta struct {
	LatencyMS  int64
	TokenCount int64
}

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	apiKey string
	model  string
	client HTTPClient
}

// New creates a Client using the given API key.
func New(apiKey string, client HTTPClient) *Client {
	return &Client{
		apiKey: apiKey,
		model:  defaultModel,
		client: client,
	}
}

type generateRequest struct {
	SystemInstruction content          `json:"system_instruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"response_mime_type"`
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int64 `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Analyze sends a screenshot for vocabulary extraction. The returned parse
// result is always structured; uninterpretable model output yields a result
// with zero words rather than an error.
func (c *Client) Analyze(ctx context.Context, image []byte, mimeType string) (*model.ParseResult, *CallMeta, error) {
	if !allowedMimeTypes[mimeType] {
		mimeType = "image/jpeg"
	}

	reqBody := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemPrompt}}},
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
				{Text: "Analyze this screenshot and extract vocabulary words. Output strict JSON only."},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      0.2,
			MaxOutputTokens:  2048,
		},
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf(endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("gemini call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(body, 512))
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}

	meta := &CallMeta{
		LatencyMS:  time.Since(start).Milliseconds(),
		TokenCount: gr.UsageMetadata.TotalTokenCount,
	}

	var text string
	if len(gr.Candidates) > 0 {
		for _, p := range gr.Candidates[0].Content.Parts {
			text += p.Text
		}
	}

	return ParseResponse(text), meta, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
