package provider

import (
	"fmt"

	"deskmate/model"
)

// NewProvider creates a completer based on configuration.
//
// This is the centralized factory for all provider types. Cloud providers
// (OpenAI, Anthropic) require an API key and return ErrAuth without one;
// Ollama only needs a reachable server.
func NewProvider(cfg Config) (model.Completer, error) {
	switch cfg.Type {
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
