// Package provider implements model.Completer for the supported LLM
// backends (OpenAI, Anthropic, Ollama).
//
// The provider layer owns all type conversions between the app's wire
// messages and each SDK's request types, so the orchestration code stays
// provider-agnostic. Completions are non-streaming: the engine persists
// whole turns, so partial output has no consumer.
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama    ProviderType = "ollama"
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // For OpenAI/Anthropic (unused for Ollama)
}
