// internal/llm/interface.go
package llm

import (
	"context"
)

// Provider defines the interface for language model backends
type Provider interface {

	// Complete runs a single completion attempt against one model
	Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error)

	// IsModelAvailable checks if the given model can be served
	IsModelAvailable(ctx context.Context, model string) error
}
