package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenRouterProvider_Generate(t *testing.T) {
	var captured openrouterRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing bearer token")
		}
		json.NewDecoder(r.Body).Decode(&captured)

		var resp openrouterResponse
		resp.Model = "deepseek/deepseek-r1"
		resp.Choices = []struct {
			Message openrouterMessage `json:"message"`
		}{{Message: openrouterMessage{Role: "assistant", Content: "quiz json"}}}
		resp.Usage.PromptTokens = 20
		resp.Usage.CompletionTokens = 30
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewOpenRouterProvider("test-key", WithOpenRouterBaseURL(server.URL))

	resp, err := provider.Generate(context.Background(), Request{
		System: "Return only JSON.",
		Prompt: "make a quiz",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != "quiz json" {
		t.Errorf("content = %q, want %q", resp.Content, "quiz json")
	}
	if resp.InputTokens != 20 || resp.OutputTokens != 30 {
		t.Errorf("tokens = %d/%d, want 20/30", resp.InputTokens, resp.OutputTokens)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %d, want 2 (system + user)", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("roles = %q/%q, want system/user", captured.Messages[0].Role, captured.Messages[1].Role)
	}
	if captured.Model != "deepseek/deepseek-r1" {
		t.Errorf("model = %q, want default deepseek/deepseek-r1", captured.Model)
	}
}

func TestOpenRouterProvider_Generate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openrouterResponse{})
	}))
	defer server.Close()

	provider := NewOpenRouterProvider("test-key", WithOpenRouterBaseURL(server.URL))

	_, err := provider.Generate(context.Background(), Request{Prompt: "hello"})
	if err == nil {
		t.Fatal("Generate() should return error when response has no choices")
	}
}

func TestOpenRouterProvider_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	provider := NewOpenRouterProvider("test-key", WithOpenRouterBaseURL(server.URL))

	_, err := provider.Generate(context.Background(), Request{Prompt: "hello"})
	if err == nil {
		t.Fatal("Generate() should return error on API error")
	}
}
