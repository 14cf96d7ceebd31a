package ai

import (
	"context"
	"sync"
)

// MockProvider is a test double for generative providers.
type MockProvider struct {
	Response    string
	Err         error
	mu          sync.Mutex
	calls       int
	lastRequest *Request
}

// NewMockProvider creates a MockProvider that returns the given response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Response: response}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (Response, error) {
	m.mu.Lock()
	m.calls++
	m.lastRequest = &req
	m.mu.Unlock()

	if m.Err != nil {
		return Response{}, m.Err
	}
	return Response{
		Content:      m.Response,
		Model:        "mock",
		InputTokens:  10,
		OutputTokens: len(m.Response),
	}, nil
}

func (m *MockProvider) HealthCheck(_ context.Context) error {
	return m.Err
}

// Calls reports how many Generate calls the mock has served.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request for inspection, or nil.
func (m *MockProvider) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}
