package ai

import "context"

// ProviderRequest is what a backend actually sees: composed prompts plus the
// generation budget. Credential resolution already happened by the time a
// provider is invoked.
type ProviderRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
	Credential   string
}

// Provider is one hosted analysis backend. Complete returns the raw reply
// content, which the dispatcher parses leniently; providers should not try to
// interpret it.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req ProviderRequest) ([]byte, error)
}
