package chat

import "deskmate/model"

// Content tags prefixed onto history entries so the model can tell the
// voices apart in a single transcript.
const (
	tagPersonaInner = "[Persona's Inner Thoughts]: "
	tagPersona      = "[Persona]: "
	tagAssistant    = "[AI Assistant Response]: "
	tagAnalysis     = "[Analysis]: "
)

// includeInContext reports whether a stored message belongs in the context
// window for the given conversation level.
func includeInContext(level model.Level, role model.Role) bool {
	switch level {
	case model.LevelDialogue:
		return role == model.RoleUser || role == model.RolePersona || role == model.RoleAssistant
	case model.LevelAnalysis:
		return role == model.RoleUser || role == model.RoleAnalyst
	default:
		return role != model.RoleAnalyst
	}
}

// relabel maps a stored message onto a wire message for the given level.
// Persona and analyst turns are folded into the assistant role with a
// content tag, since providers only understand user/assistant.
func relabel(level model.Level, msg model.ChatMessage) model.Message {
	switch msg.Role {
	case model.RoleUser:
		return model.UserMessage(msg.Content)
	case model.RolePersona:
		if level == model.LevelDialogue {
			return model.AssistantMessage(tagPersonaInner + msg.Content)
		}
		return model.AssistantMessage(tagPersona + msg.Content)
	case model.RoleAnalyst:
		return model.AssistantMessage(tagAnalysis + msg.Content)
	default:
		if level == model.LevelDialogue {
			return model.AssistantMessage(tagAssistant + msg.Content)
		}
		return model.AssistantMessage(msg.Content)
	}
}

// BuildContext assembles the message list for a completion request: the
// system instruction, the level-filtered history, then the new user input.
// A screenshot is only attached on the default level.
func BuildContext(level model.Level, instruction string, history []model.ChatMessage, input string, screenshotPNG []byte) []model.Message {
	messages := []model.Message{model.SystemMessage(instruction)}

	for _, msg := range history {
		if !includeInContext(level, msg.Role) {
			continue
		}
		messages = append(messages, relabel(level, msg))
	}

	user := model.UserMessage(input)
	if level == model.LevelDefault && len(screenshotPNG) > 0 {
		user.ImagePNG = screenshotPNG
	}
	messages = append(messages, user)

	return messages
}
