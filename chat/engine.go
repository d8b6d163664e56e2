package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"deskmate/config"
	"deskmate/model"
)

const (
	// DefaultHistoryLimit caps a plain history fetch when no limit is given
	DefaultHistoryLimit = 100

	commentaryLeadIn = "Here is the AI response to comment on:\n\n"
	analysisLeadIn   = "Analyze this conversation history:\n\n"
)

// MessageStore is the slice of the storage layer the engine needs
type MessageStore interface {
	Append(msg model.ChatMessage) error
	Recent(n int) ([]model.ChatMessage, error)
	Clear() error
}

// InstructionSource supplies the system instruction texts
type InstructionSource interface {
	Instruction(level model.Level) (string, error)
	Commentary() (string, error)
}

// ScreenshotSource captures the current screen as a PNG
type ScreenshotSource interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Options holds the tunable windows and budgets for the engine
type Options struct {
	HistoryWindow       int
	AnalysisWindow      int
	PrimaryMaxTokens    int64
	CommentaryMaxTokens int64
}

// DefaultOptions returns the standard engine tuning
func DefaultOptions() Options {
	return Options{
		HistoryWindow:       10,
		AnalysisWindow:      50,
		PrimaryMaxTokens:    1000,
		CommentaryMaxTokens: 500,
	}
}

// Reply is the outcome of one user turn. Commentary is nil unless the
// secondary persona call ran and succeeded.
type Reply struct {
	Answer     model.ChatMessage
	Commentary *model.ChatMessage
}

// AnalysisResult reports what a deep analysis trigger did. When the
// cooldown blocked the run, Ran is false and Remaining holds the seconds
// left.
type AnalysisResult struct {
	Ran       bool
	Remaining int64
	Message   model.ChatMessage
}

// Engine orchestrates conversation turns: it assembles context, calls the
// completion providers, and persists the results.
type Engine struct {
	store   MessageStore
	chat    model.Completer
	analyst model.Completer
	prompts InstructionSource
	screens ScreenshotSource
	gate    *Gate
	opts    Options
	now     func() time.Time
}

// NewEngine wires up an engine. chat and analyst may be nil when no
// credential is configured; the corresponding operations then fail with
// ErrAuth. screens may be nil to disable screenshot capture.
func NewEngine(store MessageStore, chat, analyst model.Completer, prompts InstructionSource, screens ScreenshotSource, gate *Gate, opts Options) *Engine {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = DefaultOptions().HistoryWindow
	}
	if opts.AnalysisWindow <= 0 {
		opts.AnalysisWindow = DefaultOptions().AnalysisWindow
	}
	if opts.PrimaryMaxTokens <= 0 {
		opts.PrimaryMaxTokens = DefaultOptions().PrimaryMaxTokens
	}
	if opts.CommentaryMaxTokens <= 0 {
		opts.CommentaryMaxTokens = DefaultOptions().CommentaryMaxTokens
	}
	return &Engine{
		store:   store,
		chat:    chat,
		analyst: analyst,
		prompts: prompts,
		screens: screens,
		gate:    gate,
		opts:    opts,
		now:     time.Now,
	}
}

// HandleUserMessage runs one conversation turn at the given level. The user
// turn and the response are only persisted after the primary completion
// succeeds, sharing a single timestamp. On the default level a secondary
// commentary call runs afterwards; its failure never fails the turn.
// Screenshots are captured only when the caller opts in and the level is
// the default one.
func (e *Engine) HandleUserMessage(ctx context.Context, input string, level model.Level, wantsScreenshot bool) (Reply, error) {
	if e.chat == nil {
		return Reply{}, model.ErrAuth
	}
	if strings.TrimSpace(input) == "" {
		return Reply{}, fmt.Errorf("%w: empty user message", model.ErrParse)
	}

	instruction, err := e.prompts.Instruction(level)
	if err != nil {
		return Reply{}, err
	}

	history, err := e.store.Recent(e.opts.HistoryWindow)
	if err != nil {
		return Reply{}, err
	}

	var screenshot []byte
	if wantsScreenshot && level == model.LevelDefault && e.screens != nil {
		screenshot, err = e.screens.Capture(ctx)
		if err != nil {
			// Capture failure degrades to a text-only turn
			if config.DebugLog != nil {
				config.DebugLog.Printf("screenshot capture failed: %v", err)
			}
			screenshot = nil
		}
	}

	messages := BuildContext(level, instruction, history, input, screenshot)

	answer, err := e.chat.Complete(ctx, messages, e.opts.PrimaryMaxTokens)
	if err != nil {
		return Reply{}, err
	}

	responseRole := model.RoleAssistant
	switch level {
	case model.LevelDialogue:
		responseRole = model.RolePersona
	case model.LevelAnalysis:
		responseRole = model.RoleAnalyst
	}

	// Shared timestamp so the pair sorts as one exchange
	ts := e.now().UTC().Format(time.RFC3339)

	userMsg := model.ChatMessage{
		ID:        uuid.New().String(),
		Timestamp: ts,
		Role:      model.RoleUser,
		Content:   input,
		Level:     level,
	}
	answerMsg := model.ChatMessage{
		ID:        uuid.New().String(),
		Timestamp: ts,
		Role:      responseRole,
		Content:   answer,
		Level:     level,
	}

	if err := e.store.Append(userMsg); err != nil {
		return Reply{}, err
	}
	if err := e.store.Append(answerMsg); err != nil {
		return Reply{}, err
	}

	reply := Reply{Answer: answerMsg}
	if level == model.LevelDefault {
		if commentary := e.commentOn(ctx, answer); commentary != nil {
			reply.Commentary = commentary
		}
	}
	return reply, nil
}

// commentOn runs the secondary persona call. Any failure is swallowed;
// the primary answer already stands.
func (e *Engine) commentOn(ctx context.Context, answer string) *model.ChatMessage {
	instruction, err := e.prompts.Commentary()
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("commentary prompt load failed: %v", err)
		}
		return nil
	}

	messages := []model.Message{
		model.SystemMessage(instruction),
		model.UserMessage(commentaryLeadIn + answer),
	}

	text, err := e.chat.Complete(ctx, messages, e.opts.CommentaryMaxTokens)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("commentary call failed: %v", err)
		}
		return nil
	}
	if text == "" || text == model.NoResponse {
		// A placeholder comment is worse than none.
		return nil
	}

	msg := model.ChatMessage{
		ID:        uuid.New().String(),
		Timestamp: e.now().UTC().Format(time.RFC3339),
		Role:      model.RolePersona,
		Content:   text,
		Level:     model.LevelDefault,
	}
	if err := e.store.Append(msg); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("commentary persist failed: %v", err)
		}
		return nil
	}
	return &msg
}

// TriggerDeepAnalysis runs the reflective analysis pass over recent history
// if the cooldown gate is open. The gate is stamped only after the analysis
// result has been persisted, so a failed run can retry immediately.
func (e *Engine) TriggerDeepAnalysis(ctx context.Context) (AnalysisResult, error) {
	if e.analyst == nil {
		return AnalysisResult{}, model.ErrAuth
	}

	var analysisMsg model.ChatMessage

	status, err := e.gate.Run(func() error {
		instruction, err := e.prompts.Instruction(model.LevelAnalysis)
		if err != nil {
			return err
		}

		history, err := e.store.Recent(e.opts.AnalysisWindow)
		if err != nil {
			return err
		}

		messages := []model.Message{
			model.SystemMessage(instruction),
			model.UserMessage(analysisLeadIn + transcript(history)),
		}

		text, err := e.analyst.Complete(ctx, messages, e.opts.PrimaryMaxTokens)
		if err != nil {
			return err
		}

		analysisMsg = model.ChatMessage{
			ID:        uuid.New().String(),
			Timestamp: e.now().UTC().Format(time.RFC3339),
			Role:      model.RoleAnalyst,
			Content:   text,
			Level:     model.LevelAnalysis,
		}
		return e.store.Append(analysisMsg)
	})
	if err != nil {
		return AnalysisResult{}, err
	}
	if status.Blocked {
		return AnalysisResult{Remaining: status.Remaining}, nil
	}
	return AnalysisResult{Ran: true, Message: analysisMsg}, nil
}

// transcript renders history as a plain text block for the analysis call
func transcript(history []model.ChatMessage) string {
	lines := make([]string, len(history))
	for i, msg := range history {
		lines[i] = fmt.Sprintf("[%s]: %s", msg.Role, msg.Content)
	}
	return strings.Join(lines, "\n\n")
}

// History returns the most recent stored messages in chronological order.
// A non-positive limit uses DefaultHistoryLimit.
func (e *Engine) History(limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return e.store.Recent(limit)
}

// ClearHistory wipes the conversation store
func (e *Engine) ClearHistory() error {
	return e.store.Clear()
}
