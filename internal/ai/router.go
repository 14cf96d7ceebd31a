package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router fans a generation request across registered providers in
// registration order, returning the first success.
type Router struct {
	providers map[string]Provider
	fallback  []string // ordered fallback chain
	mu        sync.RWMutex
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the end of the fallback chain.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
	r.fallback = append(r.fallback, name)
}

// Generate routes a request to the first provider that succeeds.
func (r *Router) Generate(ctx context.Context, req Request) (Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.fallback {
		provider := r.providers[name]

		resp, err := provider.Generate(ctx, req)
		if err != nil {
			slog.Warn("generation provider failed, trying next",
				"provider", name,
				"error", err,
			)
			continue
		}

		slog.Debug("generation completed",
			"provider", name,
			"model", resp.Model,
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
		)
		return resp, nil
	}

	return Response{}, fmt.Errorf("all generation providers failed")
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}
