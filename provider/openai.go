package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"deskmate/model"
)

// OpenAIProvider implements model.Completer using OpenAI's official API.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Model to use (default: "gpt-4.1-2025-04-14")
//
// Returns ErrAuth if the API key is missing.
func NewOpenAIProvider(baseURL, apiKey, modelName string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", model.ErrAuth)
	}
	if modelName == "" {
		modelName = "gpt-4.1-2025-04-14"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client: client,
		model:  modelName,
	}, nil
}

// Complete implements model.Completer with a single non-streaming request.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:  ConvertToOpenAIMessages(messages),
		Model:     openai.ChatModel(p.model),
		MaxTokens: openai.Int(maxTokens),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			// apierr.Error() carries the response body for diagnostics
			if apierr.StatusCode == 401 || apierr.StatusCode == 403 {
				return "", fmt.Errorf("%w: OpenAI rejected the API key: %s", model.ErrAuth, apierr.Error())
			}
			return "", fmt.Errorf("%w: %s", model.ErrNetwork, apierr.Error())
		}
		return "", fmt.Errorf("%w: %v", model.ErrNetwork, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return model.NoResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}
