// internal/llm/factory.go
package llm

import (
	"fmt"

	"github.com/tahcohcat/tgrelay/config"
	"github.com/tahcohcat/tgrelay/internal/llm/ollama"
	"github.com/tahcohcat/tgrelay/internal/llm/openrouter"
)

type ProviderName string

const (
	ProviderOpenRouter ProviderName = "openrouter"
	ProviderOllama     ProviderName = "ollama"
)

// NewProvider creates a completion provider based on the configuration
func NewProvider(cfg *config.Config) (Provider, error) {
	switch ProviderName(cfg.LLM.Provider) {
	case ProviderOpenRouter:
		return openrouter.NewClient(&cfg.OpenRouter)
	case ProviderOllama:
		return ollama.NewClient(&cfg.Ollama)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
