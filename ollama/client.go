package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// Client wraps the Ollama API client for non-streaming completions against
// a local server.
type Client struct {
	client  *api.Client
	model   string
	baseURL string
}

func NewClient(baseURL, model string) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	client := api.NewClient(parsedURL, http.DefaultClient)

	return &Client{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Chat sends a non-streaming chat request and returns the full response
// text. maxTokens caps generation via the num_predict option; a
// non-positive value leaves the model default in place.
func (c *Client) Chat(ctx context.Context, messages []api.Message, maxTokens int64) (string, error) {
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(false),
	}
	if maxTokens > 0 {
		req.Options = map[string]any{"num_predict": maxTokens}
	}

	var sb strings.Builder
	respFunc := func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	}

	if err := c.client.Chat(ctx, req, respFunc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Ping checks connectivity to the Ollama server
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.Version(ctx); err != nil {
		return fmt.Errorf("ollama server unreachable at %s: %w", c.baseURL, err)
	}
	return nil
}
