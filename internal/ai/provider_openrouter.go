package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider implements Provider for OpenRouter, an OpenAI-compatible
// API with extra attribution headers.
type OpenRouterProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// OpenRouterOption configures an OpenRouterProvider.
type OpenRouterOption func(*OpenRouterProvider)

// WithOpenRouterBaseURL sets the base URL (for testing).
func WithOpenRouterBaseURL(url string) OpenRouterOption {
	return func(p *OpenRouterProvider) {
		p.baseURL = url
	}
}

// WithOpenRouterHTTPClient sets a custom HTTP client.
func WithOpenRouterHTTPClient(client *http.Client) OpenRouterOption {
	return func(p *OpenRouterProvider) {
		p.client = client
	}
}

// NewOpenRouterProvider creates a new OpenRouter provider.
func NewOpenRouterProvider(apiKey string, opts ...OpenRouterOption) *OpenRouterProvider {
	p := &OpenRouterProvider{
		apiKey:  apiKey,
		baseURL: defaultOpenRouterBaseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type openrouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openrouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openrouterMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature *float64            `json:"temperature,omitempty"`
}

type openrouterResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openrouterMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *OpenRouterProvider) Generate(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = "deepseek/deepseek-r1"
	}

	var messages []openrouterMessage
	if req.System != "" {
		messages = append(messages, openrouterMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openrouterMessage{Role: "user", Content: req.Prompt})

	orReq := openrouterRequest{
		Model:    model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		orReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		orReq.Temperature = &temp
	}

	body, err := json.Marshal(orReq)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("HTTP-Referer", "https://studybuddy.app")
	httpReq.Header.Set("X-Title", "StudyBuddy")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("openrouter api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var orResp openrouterResponse
	if err := json.Unmarshal(respBody, &orResp); err != nil {
		return Response{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(orResp.Choices) == 0 {
		return Response{}, fmt.Errorf("no choices in response")
	}

	return Response{
		Content:      orResp.Choices[0].Message.Content,
		Model:        orResp.Model,
		InputTokens:  orResp.Usage.PromptTokens,
		OutputTokens: orResp.Usage.CompletionTokens,
	}, nil
}

func (p *OpenRouterProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
