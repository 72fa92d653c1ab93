package openrouter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tahcohcat/tgrelay/config"
	"github.com/tahcohcat/tgrelay/internal/llm"
	"github.com/tahcohcat/tgrelay/internal/llm/openrouter"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := openrouter.NewClient(&config.OpenRouterConfig{}); err == nil {
		t.Fatalf("expected error when api key is missing")
	}
}

func TestCompleteSuccess(t *testing.T) {
	var captured struct {
		Authorization string
		Title         string
		Body          map[string]any
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Authorization = r.Header.Get("Authorization")
		captured.Title = r.Header.Get("X-Title")
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&captured.Body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "hello there"},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer srv.Close()

	client, err := openrouter.NewClient(&config.OpenRouterConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Title:   "tgrelay-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, err := client.Complete(context.Background(), "test-model", "be brief", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "hello there" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if !strings.HasPrefix(captured.Authorization, "Bearer ") {
		t.Fatalf("authorization header missing: %q", captured.Authorization)
	}
	if captured.Title != "tgrelay-test" {
		t.Fatalf("attribution header missing: %q", captured.Title)
	}
	if captured.Body["model"] != "test-model" {
		t.Fatalf("model field missing in request: %v", captured.Body["model"])
	}
}

func TestCompleteRateLimitClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "requests",
			},
		})
	}))
	defer srv.Close()

	client, err := openrouter.NewClient(&config.OpenRouterConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = client.Complete(context.Background(), "test-model", "sys", "hi")
	if err == nil {
		t.Fatalf("expected error on 429 response")
	}
	if kind := llm.Classify(err); kind != llm.FailureRateLimited {
		t.Fatalf("expected rate_limited classification, got %s (%v)", kind, err)
	}
}

func TestCompleteNoChoicesReturnsEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{},
		})
	}))
	defer srv.Close()

	client, err := openrouter.NewClient(&config.OpenRouterConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, err := client.Complete(context.Background(), "test-model", "sys", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "" {
		t.Fatalf("expected empty reply, got %q", reply)
	}
}
