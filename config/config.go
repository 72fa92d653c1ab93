package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	LLM        LLMConfig        `mapstructure:"llm"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Ollama     OllamaConfig     `mapstructure:"ollama"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	Server     ServerConfig     `mapstructure:"server"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	Enabled     bool   `mapstructure:"enabled"`
	PollTimeout int    `mapstructure:"poll_timeout"` // seconds
}

// LLM provider selection and the fallback roster
type LLMConfig struct {
	Provider string   `mapstructure:"provider"` // "openrouter" or "ollama"
	Models   []string `mapstructure:"models"`   // tried in order
	Timeout  int      `mapstructure:"timeout"`  // seconds, per attempt
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Title   string `mapstructure:"title"` // X-Title attribution header
}

type OllamaConfig struct {
	Host string `mapstructure:"host"`
}

type PromptConfig struct {
	Path string `mapstructure:"path"` // system prompt file, optional
	Dir  string `mapstructure:"dir"`  // stage prompt directory (formalizer.txt, explainer.txt)
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Credentials always come from the environment
	viper.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN")
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("llm.provider", "LLM_PROVIDER")

	viper.SetDefault("telegram.enabled", true)
	viper.SetDefault("telegram.poll_timeout", 30)

	viper.SetDefault("llm.provider", "openrouter")
	viper.SetDefault("llm.models", []string{
		"meta-llama/llama-3.3-70b-instruct:free",
		"deepseek/deepseek-r1-0528-qwen3-8b:free",
	})
	viper.SetDefault("llm.timeout", 60)

	viper.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("openrouter.title", "tgrelay")

	viper.SetDefault("ollama.host", "http://localhost:11434")

	viper.SetDefault("prompt.path", "./system_prompt.txt")
	viper.SetDefault("prompt.dir", "./prompts")

	viper.SetDefault("server.enabled", false)
	viper.SetDefault("server.addr", ":8080")

	// Allow environment variables
	viper.SetEnvPrefix("TGRELAY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate catches misconfiguration at startup rather than on the first message.
func (c *Config) Validate() error {
	if len(c.LLM.Models) == 0 {
		return fmt.Errorf("llm.models must list at least one model")
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set in environment")
	}
	if c.LLM.Provider == "openrouter" && c.OpenRouter.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is not set in environment")
	}
	return nil
}
