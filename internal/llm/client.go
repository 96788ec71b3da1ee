package llm

import "context"

// Client defines the interface for completion providers.
type Client interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}
