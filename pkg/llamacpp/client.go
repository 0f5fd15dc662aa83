// Package llamacpp talks to a llama.cpp server through its OpenAI-compatible
// chat completions endpoint.
package llamacpp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/menta2k/face-parts/pkg/types"
	"github.com/menta2k/face-parts/pkg/wire"
)

const (
	DefaultURL     = "http://localhost:8080"
	completionPath = "/v1/chat/completions"
)

var ErrEmptyResponse = errors.New("empty response from llama.cpp server")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Message is one chat turn. Content is a string or a list of ContentPart.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	TopP           float64         `json:"top_p,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// sampling holds per-call generation settings
type sampling struct {
	temperature float64
	maxTokens   int
	jsonOnly    bool
}

var (
	describeSampling = sampling{temperature: 0.7, maxTokens: 2048}
	// landmark point lists are long and must be deterministic
	landmarkSampling = sampling{temperature: 0.1, maxTokens: 8192, jsonOnly: true}
)

func NewClient(serverURL string) (*Client, error) {
	if serverURL == "" {
		serverURL = DefaultURL
	}
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return nil, fmt.Errorf("invalid llama.cpp URL %q: missing http(s) scheme", serverURL)
	}

	return &Client{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

func (c *Client) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	return c.complete(ctx, model, prompt, imgB64, describeSampling)
}

// DetectLandmarks asks the model for faces and landmark outlines in the wire format
func (c *Client) DetectLandmarks(ctx context.Context, model, prompt, imgB64 string) ([]types.FaceObservation, error) {
	text, err := c.complete(ctx, model, prompt, imgB64, landmarkSampling)
	if err != nil {
		return nil, err
	}
	return wire.Parse(text)
}

func (c *Client) complete(ctx context.Context, model, prompt, imgB64 string, s sampling) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}

	req := newRequest(model, prompt, imgB64, s)
	respBody, err := c.post(ctx, completionPath, req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	var resp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	if text := messageText(resp.Choices[0].Message.Content); text != "" {
		return text, nil
	}
	return "", ErrEmptyResponse
}

func newRequest(model, prompt, imgB64 string, s sampling) ChatCompletionRequest {
	content := []ContentPart{{Type: "text", Text: prompt}}
	if imgB64 != "" {
		content = append(content, ContentPart{
			Type:     "image_url",
			ImageURL: &ImageURL{URL: "data:" + sniffMIME(imgB64) + ";base64," + imgB64},
		})
	}

	req := ChatCompletionRequest{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: content}},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		TopP:        0.9,
	}
	if s.jsonOnly {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	return req
}

// sniffMIME guesses the image type from the base64 prefix of its magic bytes
func sniffMIME(imgB64 string) string {
	switch {
	case strings.HasPrefix(imgB64, "iVBORw0KGgo"):
		return "image/png"
	case strings.HasPrefix(imgB64, "UklGR"):
		return "image/webp"
	}
	return "image/jpeg"
}

// messageText returns the first text found in a string or content-part reply
func messageText(content interface{}) string {
	switch v := content.(type) {
	case string:
		return v
	case []interface{}:
		for _, item := range v {
			part, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok && text != "" {
				return text
			}
		}
	}
	return ""
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
