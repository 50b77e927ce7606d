package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type mockTransport struct {
	statusCode int
	body       string
	err        error
	lastReq    *http.Request
	lastBody   []byte
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if req.Body != nil {
		m.lastBody, _ = io.ReadAll(req.Body)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(strings.NewReader(m.body)),
	}, nil
}

func TestUploadScreenshot(t *testing.T) {
	transport := &mockTransport{statusCode: 200, body: "{}"}
	s := New("https://proj.supabase.co/", "service-key", "user_screenshots", transport)

	url, err := s.UploadScreenshot(context.Background(), "user-1", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantPrefix := "https://proj.supabase.co/storage/v1/object/public/user_screenshots/user-1/"
	if !strings.HasPrefix(url, wantPrefix) {
		t.Errorf("public url = %q, want prefix %q", url, wantPrefix)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Errorf("public url %q missing .jpg suffix", url)
	}

	if got := transport.lastReq.Header.Get("Authorization"); got != "Bearer service-key" {
		t.Errorf("authorization header = %q", got)
	}
	if got := transport.lastReq.Header.Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("content type = %q", got)
	}
	wantPath := "/storage/v1/object/user_screenshots/user-1/"
	if !strings.Contains(transport.lastReq.URL.Path, wantPath) {
		t.Errorf("upload path = %q, want to contain %q", transport.lastReq.URL.Path, wantPath)
	}
	if !bytes.Equal(transport.lastBody, []byte("jpeg-bytes")) {
		t.Errorf("uploaded body = %q", transport.lastBody)
	}
}

func TestUploadUpgradeProofNamespace(t *testing.T) {
	transport := &mockTransport{statusCode: 200, body: "{}"}
	s := New("https://proj.supabase.co", "key", "user_screenshots", transport)

	url, err := s.UploadUpgradeProof(context.Background(), "user-1", []byte("proof"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(url, "/upgrade_proofs/user-1/") {
		t.Errorf("proof url = %q, want upgrade_proofs namespace", url)
	}
	if !strings.Contains(transport.lastReq.URL.Path, "/upgrade_proofs/user-1/") {
		t.Errorf("upload path = %q, want upgrade_proofs namespace", transport.lastReq.URL.Path)
	}
}

func TestUploadTooLarge(t *testing.T) {
	transport := &mockTransport{statusCode: 200, body: "{}"}
	s := New("https://proj.supabase.co", "key", "bucket", transport)

	_, err := s.UploadScreenshot(context.Background(), "user-1", make([]byte, MaxImageBytes+1))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if transport.lastReq != nil {
		t.Error("oversize image was sent upstream")
	}
}

func TestUploadErrorStatus(t *testing.T) {
	transport := &mockTransport{statusCode: 403, body: `{"message":"access denied"}`}
	s := New("https://proj.supabase.co", "key", "bucket", transport)

	_, err := s.UploadScreenshot(context.Background(), "user-1", []byte("img"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("error missing upstream detail: %v", err)
	}
}
