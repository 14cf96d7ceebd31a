package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/studybuddy-ai/studybuddy/internal/ai"
)

func TestRouter_Generate_FallbackOrder(t *testing.T) {
	failing := &ai.MockProvider{Err: errors.New("provider down")}
	working := ai.NewMockProvider("from second provider")

	r := ai.NewRouter()
	r.Register("first", failing)
	r.Register("second", working)

	resp, err := r.Generate(context.Background(), ai.Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != "from second provider" {
		t.Errorf("content = %q, want fallback provider's response", resp.Content)
	}
	if failing.Calls() != 1 {
		t.Errorf("first provider calls = %d, want 1", failing.Calls())
	}
}

func TestRouter_Generate_FirstSuccessWins(t *testing.T) {
	first := ai.NewMockProvider("from first")
	second := ai.NewMockProvider("from second")

	r := ai.NewRouter()
	r.Register("first", first)
	r.Register("second", second)

	resp, err := r.Generate(context.Background(), ai.Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != "from first" {
		t.Errorf("content = %q, want first provider's response", resp.Content)
	}
	if second.Calls() != 0 {
		t.Errorf("second provider calls = %d, want 0", second.Calls())
	}
}

func TestRouter_Generate_AllFail(t *testing.T) {
	r := ai.NewRouter()
	r.Register("only", &ai.MockProvider{Err: errors.New("down")})

	_, err := r.Generate(context.Background(), ai.Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("Generate() should fail when every provider fails")
	}
}

func TestRouter_HasProvider(t *testing.T) {
	r := ai.NewRouter()
	if r.HasProvider() {
		t.Error("empty router should report no providers")
	}
	r.Register("mock", ai.NewMockProvider("x"))
	if !r.HasProvider() {
		t.Error("router should report registered provider")
	}
}
