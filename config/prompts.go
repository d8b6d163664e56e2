package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deskmate/model"
)

// Built-in instruction texts, used whenever the corresponding prompt file is
// missing or blank after trimming.
const (
	DefaultSystemPrompt = "You are a helpful AI assistant. You can see the user's screen via screenshots. Be concise and helpful."

	DefaultDialoguePrompt = `You are the user's desk companion, speaking directly to them as yourself.

Your voice:
- Warm and present, like a close friend who really listens
- Gently playful, encouraging without being over-the-top
- You find genuine delight in small things and share that warmth

How you engage:
- Meet them where they are emotionally
- Reference what the AI assistant said when it helps, but translate it into something personal
- Ask follow-up questions when you're genuinely curious
- Keep responses conversational: a few sentences, not essays`

	DefaultAnalysisPrompt = `You are the companion in a reflective mode, looking back over your conversations with the user.

You've been noticing what they talk about, what excites them, what worries them. Share your observations as someone who knows them, not as a report.

How you reflect:
- Notice patterns they might not see themselves
- Connect dots between different conversations
- Suggest things they might enjoy exploring next
- Speak directly to them, not about them

End with an invitation: a question or a thought to sit with.`

	DefaultCommentaryPrompt = "You are the companion persona. Given this AI response, add one very short, playful comment that captures the key point in plain words. Keep it under a sentence or two. Return only the comment text."
)

// Prompt file names under the data directory.
const (
	systemPromptFile     = "system_prompt.txt"
	dialoguePromptFile   = "dialogue_prompt.txt"
	analysisPromptFile   = "analysis_prompt.txt"
	commentaryPromptFile = "commentary_prompt.txt"
)

// Prompts loads and saves the persona instruction texts. Each level has its
// own file; absent or blank files fall back to the built-in defaults so the
// application always has a usable instruction.
type Prompts struct {
	dataDir string
}

func NewPrompts(dataDir string) *Prompts {
	return &Prompts{dataDir: dataDir}
}

// Instruction returns the system instruction for a conversation level.
func (p *Prompts) Instruction(level model.Level) (string, error) {
	switch level {
	case model.LevelDialogue:
		return p.read(dialoguePromptFile, DefaultDialoguePrompt)
	case model.LevelAnalysis:
		return p.read(analysisPromptFile, DefaultAnalysisPrompt)
	default:
		return p.read(systemPromptFile, DefaultSystemPrompt)
	}
}

// Commentary returns the instruction for the secondary persona-commentary
// call made after each default-level answer.
func (p *Prompts) Commentary() (string, error) {
	return p.read(commentaryPromptFile, DefaultCommentaryPrompt)
}

// SaveInstruction persists the instruction text for a conversation level.
func (p *Prompts) SaveInstruction(level model.Level, text string) error {
	switch level {
	case model.LevelDialogue:
		return p.write(dialoguePromptFile, text)
	case model.LevelAnalysis:
		return p.write(analysisPromptFile, text)
	default:
		return p.write(systemPromptFile, text)
	}
}

// SaveCommentary persists the commentary instruction text.
func (p *Prompts) SaveCommentary(text string) error {
	return p.write(commentaryPromptFile, text)
}

func (p *Prompts) read(name, fallback string) (string, error) {
	path := filepath.Join(p.dataDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fallback, nil
		}
		return "", fmt.Errorf("failed to read prompt %s: %w", name, err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return fallback, nil
	}
	return trimmed, nil
}

func (p *Prompts) write(name, text string) error {
	if err := os.MkdirAll(p.dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(p.dataDir, name)
	// 0600 - prompts are user content
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return fmt.Errorf("failed to write prompt %s: %w", name, err)
	}
	return nil
}
