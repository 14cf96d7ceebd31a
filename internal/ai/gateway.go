// Package ai provides a provider-agnostic client for external generative
// content services. Generation is single-shot request/response; the quiz
// pipeline sends one prompt and parses one text reply.
package ai

import "context"

// Request is the input to a generation call.
type Request struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Response is the raw text output of a generation call. Content is untrusted
// free text until the caller validates it.
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r Response) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// Provider is the interface all generative service clients implement.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
	HealthCheck(ctx context.Context) error
}
