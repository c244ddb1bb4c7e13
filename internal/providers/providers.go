package providers

import (
	"context"
)

// Config is a single prompt sent to a text generation provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
}

// Provider generates text for a prompt. The translation fallback of the
// genre classifier is built on it.
type Provider interface {
	Generate(ctx context.Context, config Config) (string, error)
}
