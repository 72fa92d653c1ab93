package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/tahcohcat/tgrelay/config"
	"github.com/tahcohcat/tgrelay/internal/logger"
)

type Client struct {
	client *api.Client
	logger *logger.Log
}

func NewClient(cfg *config.OllamaConfig) (*Client, error) {
	if cfg.Host == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return &Client{client: client, logger: logger.New()}, nil
	}

	host, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
	}

	return &Client{
		client: api.NewClient(host, http.DefaultClient),
		logger: logger.New(),
	}, nil
}

func (c *Client) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {

	shouldStream := false

	req := &api.GenerateRequest{
		Model:  model,
		System: systemPrompt,
		Prompt: userMessage,
		Stream: &shouldStream,
	}

	c.logger.Debug(fmt.Sprintf("Generating response with model %s", model))

	var response string

	f := func(g api.GenerateResponse) error {
		response = g.Response
		return nil
	}

	err := c.client.Generate(ctx, req, f)
	if err != nil {
		c.logger.WithError(err).Error("Failed to generate response")
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	return response, nil
}

func (c *Client) IsModelAvailable(ctx context.Context, model string) error {
	models, err := c.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, m := range models.Models {
		if m.Name == model {
			return nil
		}
	}

	return fmt.Errorf("model %s not found. Available models: %v", model, getModelNames(models.Models))
}

func getModelNames(models []api.ListModelResponse) []string {
	names := make([]string, len(models))
	for i, model := range models {
		names[i] = model.Name
	}
	return names
}
