package llm

import (
	"context"
	"fmt"
)

// Client is an abstraction over LLM completion providers
type Client interface {
	// Complete generates free-form text for the prompt
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteJSON generates a response constrained to a JSON object,
	// returned as the raw JSON string with any markdown fences stripped
	CompleteJSON(ctx context.Context, prompt string) (string, error)
	// Model returns the underlying provider model name
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new completion client based on configuration.
// The returned client is stateless between calls and safe for reuse.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
}
