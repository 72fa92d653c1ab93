package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tahcohcat/tgrelay/internal/logger"
)

const defaultAttemptTimeout = 60 * time.Second

// Client relays a user message to the configured provider, walking the model
// roster in order until one attempt produces a usable reply. It holds no
// per-request state, so concurrent Complete calls are safe.
type Client struct {
	provider Provider
	roster   *Roster
	system   string
	timeout  time.Duration
	logger   *logger.Log
}

func NewClient(provider Provider, roster *Roster, systemPrompt string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}

	return &Client{
		provider: provider,
		roster:   roster,
		system:   systemPrompt,
		timeout:  timeout,
		logger:   logger.New(),
	}
}

// Complete tries each roster model in turn and returns the first non-empty
// reply, using the client's default system prompt. Attempts are strictly
// sequential, each bounded by its own deadline; a failed attempt moves on to
// the next model rather than retrying the same one. When the roster is
// exhausted the returned error is an *ExhaustedError listing every attempt
// in order.
func (c *Client) Complete(ctx context.Context, userMessage string) (string, error) {
	return c.CompleteWith(ctx, c.system, userMessage)
}

// CompleteWith runs the same roster fallback under a caller-supplied system
// prompt, so pipeline stages with their own instructions share one client.
func (c *Client) CompleteWith(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	attempts := make([]Attempt, 0, c.roster.Len())

	for _, model := range c.roster.Models() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		reply, err := c.attempt(ctx, model, systemPrompt, userMessage)
		if err == nil {
			return reply, nil
		}

		// A cancelled parent means shutdown, not a model failure
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		kind := Classify(err)
		attempts = append(attempts, Attempt{Model: model, Kind: kind, Err: err})
		c.logger.WithError(err).Warn(fmt.Sprintf("model %s failed (%s), falling back", model, kind))
	}

	return "", &ExhaustedError{Attempts: attempts}
}

func (c *Client) attempt(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Model(model, "sending completion request")

	reply, err := c.provider.Complete(attemptCtx, model, systemPrompt, userMessage)
	if err != nil {
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyReply
	}

	return reply, nil
}
