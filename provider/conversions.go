package provider

import (
	"encoding/base64"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"deskmate/model"
)

// ConvertToOpenAIMessages converts wire messages to OpenAI request format.
// A user message carrying a screenshot becomes a multi-part message with a
// PNG data URL image part.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case "system":
			result[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			if len(msg.ImagePNG) > 0 {
				parts := []openai.ChatCompletionContentPartUnionParam{
					openai.TextContentPart(msg.Content),
					openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
						URL: pngDataURL(msg.ImagePNG),
					}),
				}
				result[i] = openai.UserMessage(parts)
			} else {
				result[i] = openai.UserMessage(msg.Content)
			}
		}
	}

	return result
}

// ConvertToAnthropicMessages converts wire messages to Anthropic request
// format. Anthropic takes the system instruction as a separate parameter,
// so it is returned as text blocks alongside the message array.
func ConvertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{
				Text: msg.Content,
			})

		case "assistant":
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)),
			)

		default:
			if len(msg.ImagePNG) > 0 {
				anthropicMsgs = append(anthropicMsgs,
					anthropic.NewUserMessage(
						anthropic.NewTextBlock(msg.Content),
						anthropic.NewImageBlockBase64("image/png", base64.StdEncoding.EncodeToString(msg.ImagePNG)),
					),
				)
			} else {
				anthropicMsgs = append(anthropicMsgs,
					anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
				)
			}
		}
	}

	return anthropicMsgs, systemBlocks
}

// ConvertToOllamaMessages converts wire messages to Ollama request format.
// Ollama takes raw image bytes on the message rather than a data URL.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
		if len(msg.ImagePNG) > 0 {
			result[i].Images = []api.ImageData{api.ImageData(msg.ImagePNG)}
		}
	}
	return result
}

func pngDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
