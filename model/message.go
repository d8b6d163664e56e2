// Package model defines the provider-agnostic types shared across Deskmate:
// persisted chat turns, the wire message format sent to completion services,
// and the Completer interface the orchestrator depends on.
//
// The Completer interface lives here (not in the provider package) so that
// the chat and server packages can use it without importing any
// provider-specific SDK code.
package model

import "fmt"

// Role identifies who produced a stored conversation turn.
//
// The external completion protocol only understands "user" and "assistant";
// the persona and analyst roles are Deskmate-internal and are relabeled
// (with a content tag) before being sent over the wire.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RolePersona   Role = "persona"
	RoleAnalyst   Role = "analyst"
)

// Valid reports whether r is one of the four storable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RolePersona, RoleAnalyst:
		return true
	}
	return false
}

// ParseRole converts a stored role string back to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrParse, s)
	}
	return r, nil
}

// Level is the conversation mode a turn was produced under. It is stamped
// on every stored message at creation and never reinterpreted: the three
// levels keep strictly separate context windows.
type Level int

const (
	// LevelDefault is the general assistant mode. Responses are stored
	// under RoleAssistant and followed by a short persona commentary.
	LevelDefault Level = 0

	// LevelDialogue is direct persona conversation. Responses are stored
	// under RolePersona.
	LevelDialogue Level = 1

	// LevelAnalysis is the reflective mode. Responses are stored under
	// RoleAnalyst.
	LevelAnalysis Level = 2
)

// LevelFromInt validates a caller-supplied level number.
func LevelFromInt(n int) (Level, error) {
	switch Level(n) {
	case LevelDefault, LevelDialogue, LevelAnalysis:
		return Level(n), nil
	}
	return 0, fmt.Errorf("%w: invalid conversation level %d", ErrParse, n)
}

// ChatMessage is one persisted conversation turn. Messages are immutable
// once written and are only ever removed by a bulk clear.
type ChatMessage struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"` // RFC 3339, sortable
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Level     Level  `json:"level"`
}

// Message is a single entry of an outbound completion request. Content may
// carry an optional PNG screenshot alongside the text; providers that
// support vision attach it as an image part, all others ignore it.
type Message struct {
	Role     string
	Content  string
	ImagePNG []byte
}

// SystemMessage builds a system-role wire message.
func SystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage builds a user-role wire message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage builds an assistant-role wire message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}
