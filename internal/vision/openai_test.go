package vision

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/backmassage/lensbatch/internal/media"
)

func testPayload(t *testing.T) *media.Payload {
	t.Helper()
	return &media.Payload{MIMEType: "image/png", Data: "QUJD"}
}

// fakeCompletion serves a canned chat-completion response and captures the
// request body. The handler finishes before Analyze returns, so reading the
// captured body afterwards is safe.
func fakeCompletion(t *testing.T, body string) (*Client, *[]byte) {
	t.Helper()
	var captured []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return NewClient("sk-test", srv.URL, zerolog.Nop()), &captured
}

const completionJSON = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "gpt-4o-2024-08-06",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "A tabby cat on a windowsill."},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 110, "completion_tokens": 25, "total_tokens": 135}
}`

func TestAnalyze_MapsResponse(t *testing.T) {
	client, body := fakeCompletion(t, completionJSON)

	res, err := client.Analyze(context.Background(), Request{
		Model:     "gpt-4o",
		Prompt:    "Describe this image.",
		Payload:   testPayload(t),
		MaxTokens: 500,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Description != "A tabby cat on a windowsill." {
		t.Errorf("Description = %q", res.Description)
	}
	if res.Model != "gpt-4o-2024-08-06" {
		t.Errorf("Model = %q", res.Model)
	}
	if res.Usage == nil {
		t.Fatal("Usage should be populated")
	}
	if res.Usage.PromptTokens != 110 || res.Usage.CompletionTokens != 25 || res.Usage.TotalTokens != 135 {
		t.Errorf("Usage = %+v", res.Usage)
	}

	var sent struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
		MaxCompletionTokens int `json:"max_completion_tokens"`
	}
	if err := json.Unmarshal(*body, &sent); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	if sent.Model != "gpt-4o" {
		t.Errorf("request model = %q", sent.Model)
	}
	if sent.MaxCompletionTokens != 500 {
		t.Errorf("request max_completion_tokens = %d", sent.MaxCompletionTokens)
	}
	if len(sent.Messages) != 1 || sent.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", sent.Messages)
	}
	parts := sent.Messages[0].Content
	if len(parts) != 2 {
		t.Fatalf("got %d content parts, want 2", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text != "Describe this image." {
		t.Errorf("text part = %+v", parts[0])
	}
	if parts[1].Type != "image_url" || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,") {
		t.Errorf("image part = %+v", parts[1])
	}
}

func TestAnalyze_NoUsageReported(t *testing.T) {
	client, _ := fakeCompletion(t, `{
		"id": "chatcmpl-2",
		"object": "chat.completion",
		"model": "gpt-4o",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "ok"},
			"finish_reason": "stop"
		}]
	}`)

	res, err := client.Analyze(context.Background(), Request{
		Model:   "gpt-4o",
		Prompt:  "p",
		Payload: testPayload(t),
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Usage != nil {
		t.Errorf("Usage should be nil when the service reports none, got %+v", res.Usage)
	}
}

func TestAnalyze_EmptyChoices(t *testing.T) {
	client, _ := fakeCompletion(t, `{
		"id": "chatcmpl-3",
		"object": "chat.completion",
		"model": "gpt-4o",
		"choices": []
	}`)

	_, err := client.Analyze(context.Background(), Request{
		Model:   "gpt-4o",
		Prompt:  "p",
		Payload: testPayload(t),
	})
	if err == nil {
		t.Fatal("Analyze should fail on empty choices")
	}
}

func TestAnalyze_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	client := NewClient("sk-test", srv.URL, zerolog.Nop())
	_, err := client.Analyze(context.Background(), Request{
		Model:   "gpt-4o",
		Prompt:  "p",
		Payload: testPayload(t),
	})
	if err == nil {
		t.Fatal("Analyze should surface HTTP errors")
	}
}
