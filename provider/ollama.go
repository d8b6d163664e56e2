package provider

import (
	"context"
	"fmt"

	"deskmate/model"
	"deskmate/ollama"
)

// OllamaProvider wraps ollama.Client to implement model.Completer.
//
// No API key is involved; the client talks to a local server, so every
// request failure maps to ErrNetwork.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL. If empty, defaults to
//     "http://localhost:11434".
//   - modelName: The model name to use (e.g., "llama3.1:latest").
func NewOllamaProvider(baseURL, modelName string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Ping checks that the Ollama server is reachable
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Complete implements model.Completer
func (p *OllamaProvider) Complete(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
	text, err := p.client.Chat(ctx, ConvertToOllamaMessages(messages), maxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrNetwork, err)
	}
	if text == "" {
		return model.NoResponse, nil
	}
	return text, nil
}
