package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"deskmate/model"
)

// AnthropicProvider implements model.Completer using Anthropic's official API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Parameters:
//   - baseURL: Anthropic API base URL (default: "https://api.anthropic.com")
//   - apiKey: Anthropic API key (required)
//   - modelName: Model to use (default: "claude-sonnet-4-5-20250929")
//
// Returns ErrAuth if the API key is missing.
func NewAnthropicProvider(baseURL, apiKey, modelName string) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Anthropic API key is required", model.ErrAuth)
	}

	var anthropicModel anthropic.Model
	if modelName == "" {
		anthropicModel = anthropic.ModelClaudeSonnet4_5_20250929
	} else {
		anthropicModel = anthropic.Model(modelName)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client: &client,
		model:  anthropicModel,
	}, nil
}

// Complete implements model.Completer with a single non-streaming request.
func (p *AnthropicProvider) Complete(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
	anthropicMessages, systemBlocks := ConvertToAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  anthropicMessages,
		MaxTokens: maxTokens,
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			// apierr.Error() carries the response body for diagnostics
			if apierr.StatusCode == 401 || apierr.StatusCode == 403 {
				return "", fmt.Errorf("%w: Anthropic rejected the API key: %s", model.ErrAuth, apierr.Error())
			}
			return "", fmt.Errorf("%w: %s", model.ErrNetwork, apierr.Error())
		}
		return "", fmt.Errorf("%w: %v", model.ErrNetwork, err)
	}

	text := ""
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text += variant.Text
		}
	}
	if text == "" {
		return model.NoResponse, nil
	}
	return text, nil
}
