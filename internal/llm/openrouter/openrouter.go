package openrouter

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tahcohcat/tgrelay/config"
	"github.com/tahcohcat/tgrelay/internal/logger"
)

// Client talks to OpenRouter (or any OpenAI-compatible endpoint) through the
// chat completions API.
type Client struct {
	client *openai.Client
	logger *logger.Log
}

// headerTransport adds the OpenRouter attribution header to every request.
type headerTransport struct {
	base  http.RoundTripper
	title string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(clone)
}

func NewClient(cfg *config.OpenRouterConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Title != "" {
		clientCfg.HTTPClient = &http.Client{
			Transport: &headerTransport{base: http.DefaultTransport, title: cfg.Title},
		}
	}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger.New(),
	}, nil
}

// Complete issues a single chat completion against the given model. A
// response without choices comes back as an empty string so the caller can
// treat it like any other empty reply.
func (c *Client) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

// IsModelAvailable checks whether the endpoint lists the given model.
func (c *Client) IsModelAvailable(ctx context.Context, model string) error {
	models, err := c.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, m := range models.Models {
		if m.ID == model {
			return nil
		}
	}

	return fmt.Errorf("model %s not offered by the endpoint", model)
}
