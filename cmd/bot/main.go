// cmd/bot/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tahcohcat/tgrelay/config"
	"github.com/tahcohcat/tgrelay/internal/bot"
	"github.com/tahcohcat/tgrelay/internal/llm"
	"github.com/tahcohcat/tgrelay/internal/pipeline"
	"github.com/tahcohcat/tgrelay/internal/prompt"
	"github.com/tahcohcat/tgrelay/internal/server"
	"github.com/tahcohcat/tgrelay/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	systemPrompt, err := prompt.LoadSystem(cfg.Prompt.Path)
	if err != nil {
		log.Fatalf("Failed to load system prompt: %v", err)
	}

	formalizerPrompt, err := prompt.LoadModule(cfg.Prompt.Dir, prompt.ModuleFormalizer)
	if err != nil {
		log.Fatalf("Failed to load formalizer prompt: %v", err)
	}

	explainerPrompt, err := prompt.LoadModule(cfg.Prompt.Dir, prompt.ModuleExplainer)
	if err != nil {
		log.Fatalf("Failed to load explainer prompt: %v", err)
	}

	roster, err := llm.NewRoster(cfg.LLM.Models)
	if err != nil {
		log.Fatalf("Invalid model roster: %v", err)
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to create LLM provider: %v", err)
	}

	client := llm.NewClient(provider, roster, systemPrompt, time.Duration(cfg.LLM.Timeout)*time.Second)
	proofPipeline := pipeline.New(client, formalizerPrompt, explainerPrompt)
	handler := bot.NewHandler(proofPipeline)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkModels(ctx, provider, roster)

	if cfg.Server.Enabled {
		srv := server.New(&cfg.Server, server.Status{
			Provider: cfg.LLM.Provider,
			Models:   roster.Models(),
		})

		hub := websocket.NewHub(handler)
		hub.RegisterRoutes(ctx, srv.Router())

		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("Diagnostics server stopped: %v", err)
			}
		}()
	}

	if !cfg.Telegram.Enabled {
		if !cfg.Server.Enabled {
			log.Fatal("No transport enabled: set telegram.enabled or server.enabled")
		}
		log.Printf("🔌 Running without Telegram, chat available on ws://localhost%s/ws", cfg.Server.Addr)
		<-ctx.Done()
		return
	}

	runtime, err := bot.NewTelegramRuntime(&cfg.Telegram, handler)
	if err != nil {
		log.Fatalf("Failed to start Telegram runtime: %v", err)
	}

	log.Printf("🤖 tgrelay starting (provider: %s, %d models in roster)", cfg.LLM.Provider, roster.Len())

	if err := runtime.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Telegram runtime stopped: %v", err)
	}
}

// checkModels warns early about roster entries the provider cannot serve.
// Failures are not fatal: a model may come back before the roster reaches it.
func checkModels(ctx context.Context, provider llm.Provider, roster *llm.Roster) {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, model := range roster.Models() {
		if err := provider.IsModelAvailable(checkCtx, model); err != nil {
			log.Printf("⚠️ Model %s not confirmed available: %v", model, err)
		}
	}
}
