package llamacpp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/menta2k/face-parts/pkg/types"
)

func newServer(t *testing.T, status int, content interface{}) (*httptest.Server, *ChatCompletionRequest) {
	t.Helper()
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestDetectLandmarks(t *testing.T) {
	doc := `{"faces":[{"boundingBox":{"x":0.2,"y":0.3,"width":0.4,"height":0.4},"landmarks":{"leftEye":[[0.2,0.6],[0.3,0.6],[0.3,0.7]]}}]}`
	srv, got := newServer(t, http.StatusOK, doc)

	c, _ := NewClient(srv.URL + "/")
	faces, err := c.DetectLandmarks(context.Background(), "llava", "find faces", "aGVsbG8=")
	if err != nil {
		t.Fatalf("DetectLandmarks failed: %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("Expected 1 face, got %d", len(faces))
	}
	if eye, ok := faces[0].Region(types.LeftEye); !ok || len(eye.Points) != 3 {
		t.Errorf("Expected left eye with 3 points, got %+v", eye)
	}
	if got.Model != "llava" || got.MaxTokens != 8192 {
		t.Errorf("Unexpected request %+v", got)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("Expected json_object response format, got %+v", got.ResponseFormat)
	}
}

func TestSimpleQueryArrayContent(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, []map[string]string{{"type": "text", "text": "a smiling person"}})

	c, _ := NewClient(srv.URL)
	text, err := c.SimpleQuery(context.Background(), "llava", "what is this", "")
	if err != nil {
		t.Fatalf("SimpleQuery failed: %v", err)
	}
	if text != "a smiling person" {
		t.Errorf("Unexpected text %q", text)
	}
}

func TestServerError(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, "")

	c, _ := NewClient(srv.URL)
	_, err := c.DetectLandmarks(context.Background(), "llava", "p", "")
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status 500 error, got %v", err)
	}
}

func TestEmptyContent(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "")

	c, _ := NewClient(srv.URL)
	if _, err := c.SimpleQuery(context.Background(), "llava", "p", ""); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("")
	if err != nil || c.baseURL != DefaultURL {
		t.Errorf("Unexpected default client %v, %v", c, err)
	}
	if _, err := NewClient("localhost:8080"); err == nil {
		t.Error("Expected error for URL without scheme")
	}
}

func TestSniffMIME(t *testing.T) {
	cases := map[string]string{
		"iVBORw0KGgoAAAANSUhEUg": "image/png",
		"/9j/4AAQSkZJRgABAQ":     "image/jpeg",
		"UklGRiQAAABXRUJQ":       "image/webp",
	}
	for in, want := range cases {
		if got := sniffMIME(in); got != want {
			t.Errorf("sniffMIME(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequestCarriesImage(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, "ok")

	c, _ := NewClient(srv.URL)
	if _, err := c.SimpleQuery(context.Background(), "llava", "p", "iVBORw0KGgo="); err != nil {
		t.Fatalf("SimpleQuery failed: %v", err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(got.Messages))
	}
	parts, ok := got.Messages[0].Content.([]interface{})
	if !ok || len(parts) != 2 {
		t.Fatalf("Expected text and image parts, got %#v", got.Messages[0].Content)
	}
	img, _ := parts[1].(map[string]interface{})["image_url"].(map[string]interface{})
	if url, _ := img["url"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("Unexpected image url %q", url)
	}
	if got.ResponseFormat != nil {
		t.Error("Descriptions must not force JSON output")
	}
}
