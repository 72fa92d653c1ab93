package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	openai "github.com/sashabaranov/go-openai"
)

// FailureKind classifies why a single model attempt failed.
type FailureKind string

const (
	FailureTimeout     FailureKind = "timeout"
	FailureRateLimited FailureKind = "rate_limited"
	FailureNetwork     FailureKind = "network"
	FailureProvider    FailureKind = "provider_error"
	FailureEmptyReply  FailureKind = "empty_reply"
)

// ErrEmptyReply marks a completion that returned without error but carried no
// text. A model that answers with nothing is not preferred over the next one.
var ErrEmptyReply = errors.New("model returned an empty reply")

// Attempt records the outcome of one model attempt within a request.
type Attempt struct {
	Model string
	Kind  FailureKind
	Err   error
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s: %s (%v)", a.Model, a.Kind, a.Err)
}

// ExhaustedError is returned when every model in the roster failed. Attempts
// are in roster order, one entry per model.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, attempt := range e.Attempts {
		parts[i] = attempt.String()
	}
	return "all models failed: " + strings.Join(parts, "; ")
}

// Classify maps a raw attempt error onto the failure taxonomy.
func Classify(err error) FailureKind {
	var apiErr *openai.APIError
	var statusErr api.StatusError
	var urlErr *url.Error
	var netErr net.Error

	switch {
	case errors.Is(err, ErrEmptyReply):
		return FailureEmptyReply
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.As(err, &apiErr):
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return FailureRateLimited
		}
		return FailureProvider
	case errors.As(err, &statusErr):
		if statusErr.StatusCode == http.StatusTooManyRequests {
			return FailureRateLimited
		}
		return FailureProvider
	case errors.As(err, &netErr) && netErr.Timeout():
		return FailureTimeout
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return FailureNetwork
	default:
		return FailureProvider
	}
}
