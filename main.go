package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deskmate/chat"
	"deskmate/config"
	"deskmate/model"
	"deskmate/provider"
	"deskmate/screenshot"
	"deskmate/server"
	"deskmate/storage"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	credentials := config.NewCredentialStore()
	if err := credentials.Load(cfg.DataDir()); err != nil {
		fmt.Printf("Failed to load credentials: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewMessageStorage(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to initialize message storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	chatCompleter := buildCompleter(cfg, credentials, cfg.ChatModel)
	analysisCompleter := buildCompleter(cfg, credentials, cfg.AnalysisModel)

	prompts := config.NewPrompts(cfg.DataDir())
	gate := chat.NewGate(cfg.DataDir(), chat.DefaultAnalysisInterval)

	engine := chat.NewEngine(store, chatCompleter, analysisCompleter, prompts, screenshot.New(), gate, chat.Options{
		HistoryWindow:       cfg.HistoryWindow,
		AnalysisWindow:      cfg.AnalysisWindow,
		PrimaryMaxTokens:    cfg.PrimaryMaxTokens,
		CommentaryMaxTokens: cfg.CommentaryMaxTokens,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// An unreachable local server is worth a warning up front
	if p, ok := chatCompleter.(*provider.OllamaProvider); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := p.Ping(pingCtx); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		cancel()
	}

	srv := server.New(engine, store, prompts)
	fmt.Printf("deskmate %s listening on %s\n", Version, cfg.Listen)
	if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}
}

// buildCompleter creates a provider for the given model. A missing cloud
// API key yields a nil completer; the engine then reports the auth failure
// per request instead of refusing to start.
func buildCompleter(cfg *config.Config, credentials *config.CredentialStore, modelName string) model.Completer {
	pCfg := provider.Config{
		Type:    provider.ProviderType(cfg.ProviderType),
		BaseURL: cfg.BaseURL,
		Model:   modelName,
		APIKey:  credentials.Get(cfg.ProviderType),
	}

	completer, err := provider.NewProvider(pCfg)
	if err != nil {
		fmt.Printf("Warning: %s provider unavailable for %s: %v\n", cfg.ProviderType, modelName, err)
		if config.DebugLog != nil {
			config.DebugLog.Printf("provider construction failed: %v", err)
		}
		return nil
	}
	return completer
}
