package config

import "testing"

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Enabled: true, Token: "123:abc"},
		LLM: LLMConfig{
			Provider: "openrouter",
			Models:   []string{"model-a", "model-b"},
			Timeout:  60,
		},
		OpenRouter: OpenRouterConfig{APIKey: "sk-test"},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsEmptyRoster(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Models = nil
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for empty roster")
	}
}

func TestValidateRequiresTelegramToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing telegram token")
	}

	// Not required when the telegram transport is off
	cfg.Telegram.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiresOpenRouterKey(t *testing.T) {
	cfg := validConfig()
	cfg.OpenRouter.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing api key")
	}

	// Ollama needs no key
	cfg.LLM.Provider = "ollama"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
