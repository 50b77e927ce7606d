// Package blob uploads images to Supabase Storage and returns stable
// public URLs.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// MaxImageBytes is the largest accepted upload.
const MaxImageBytes = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Store uploads objects into one Supabase Storage bucket.
type Store struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     HTTPClient
}

// New creates a Store for the given project URL and bucket.
func New(baseURL, serviceKey, bucket string, client HTTPClient) *Store {
	return &Store{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     client,
	}
}

// UploadScreenshot stores a user screenshot and returns its public URL.
func (s *Store) UploadScreenshot(ctx context.Context, userID string, image []byte) (string, error) {
	return s.upload(ctx, fmt.Sprintf("%s/%s.jpg", userID, uuid.NewString()), image)
}

// UploadUpgradeProof stores a payment proof image under a distinct
// namespace and returns its public URL.
func (s *Store) UploadUpgradeProof(ctx context.Context, userID string, image []byte) (string, error) {
	return s.upload(ctx, fmt.Sprintf("upgrade_proofs/%s/%s.jpg", userID, uuid.NewString()), image)
}

func (s *Store) upload(ctx context.Context, object string, image []byte) (string, error) {
	if len(image) > MaxImageBytes {
		return "", fmt.Errorf("image too large: %d bytes (max %d)", len(image), MaxImageBytes)
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, object)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("upload object: status %d: %s", resp.StatusCode, msg)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, object), nil
}
