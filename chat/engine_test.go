package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"deskmate/model"
	"deskmate/provider/testutil"
)

type fakeStore struct {
	msgs      []model.ChatMessage
	recentN   []int
	appendErr error
}

func (f *fakeStore) Append(msg model.ChatMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeStore) Recent(n int) ([]model.ChatMessage, error) {
	f.recentN = append(f.recentN, n)
	if n <= 0 || n >= len(f.msgs) {
		return f.msgs, nil
	}
	return f.msgs[len(f.msgs)-n:], nil
}

func (f *fakeStore) Clear() error {
	f.msgs = nil
	return nil
}

type fakePrompts struct{}

func (fakePrompts) Instruction(level model.Level) (string, error) {
	switch level {
	case model.LevelDialogue:
		return "dialogue instruction", nil
	case model.LevelAnalysis:
		return "analysis instruction", nil
	default:
		return "system instruction", nil
	}
}

func (fakePrompts) Commentary() (string, error) {
	return "commentary instruction", nil
}

func newTestEngine(t *testing.T, chat, analyst model.Completer) (*Engine, *fakeStore, *Gate) {
	t.Helper()
	store := &fakeStore{}
	gate := NewGate(t.TempDir(), DefaultAnalysisInterval)
	at := time.Unix(1_700_000_000, 0)
	gate.now = func() time.Time { return at }
	e := NewEngine(store, chat, analyst, fakePrompts{}, nil, gate, DefaultOptions())
	e.now = func() time.Time { return at }
	return e, store, gate
}

func TestHandleUserMessageDefaultLevel(t *testing.T) {
	mock := testutil.NewMockCompleter()
	responses := []string{"primary answer", "witty remark"}
	mock.CompleteFunc = func(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
		resp := responses[0]
		responses = responses[1:]
		return resp, nil
	}

	e, store, _ := newTestEngine(t, mock, nil)

	reply, err := e.HandleUserMessage(context.Background(), "hello there", model.LevelDefault, false)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if reply.Answer.Content != "primary answer" {
		t.Errorf("answer = %q, want primary answer", reply.Answer.Content)
	}
	if reply.Answer.Role != model.RoleAssistant {
		t.Errorf("answer role = %s, want assistant", reply.Answer.Role)
	}
	if reply.Commentary == nil {
		t.Fatal("expected commentary")
	}
	if reply.Commentary.Content != "witty remark" {
		t.Errorf("commentary = %q, want witty remark", reply.Commentary.Content)
	}
	if reply.Commentary.Role != model.RolePersona {
		t.Errorf("commentary role = %s, want persona", reply.Commentary.Role)
	}
	if reply.Commentary.Level != model.LevelDefault {
		t.Errorf("commentary level = %d, want 0", reply.Commentary.Level)
	}

	// user turn, answer, commentary
	if len(store.msgs) != 3 {
		t.Fatalf("persisted %d messages, want 3", len(store.msgs))
	}
	if store.msgs[0].Role != model.RoleUser || store.msgs[0].Content != "hello there" {
		t.Errorf("first persisted = %+v, want user turn", store.msgs[0])
	}
	if store.msgs[0].Timestamp != store.msgs[1].Timestamp {
		t.Error("user turn and answer should share a timestamp")
	}

	// History window was respected on the context fetch
	if store.recentN[0] != 10 {
		t.Errorf("context fetch used window %d, want 10", store.recentN[0])
	}

	// Two network calls: primary plus commentary
	if len(mock.Calls) != 2 {
		t.Fatalf("made %d completion calls, want 2", len(mock.Calls))
	}
	commentaryCall := mock.Calls[1]
	if commentaryCall[0].Content != "commentary instruction" {
		t.Errorf("commentary system = %q", commentaryCall[0].Content)
	}
	if commentaryCall[1].Content != "Here is the AI response to comment on:\n\nprimary answer" {
		t.Errorf("commentary user content = %q", commentaryCall[1].Content)
	}
}

func TestHandleUserMessageDialogueLevel(t *testing.T) {
	mock := testutil.NewMockCompleter()
	e, store, _ := newTestEngine(t, mock, nil)

	reply, err := e.HandleUserMessage(context.Background(), "how was your day", model.LevelDialogue, false)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if reply.Answer.Role != model.RolePersona {
		t.Errorf("answer role = %s, want persona", reply.Answer.Role)
	}
	if reply.Commentary != nil {
		t.Error("dialogue level should not run commentary")
	}
	if len(mock.Calls) != 1 {
		t.Errorf("made %d completion calls, want 1", len(mock.Calls))
	}
	if len(store.msgs) != 2 {
		t.Errorf("persisted %d messages, want 2", len(store.msgs))
	}
	if mock.Calls[0][0].Content != "dialogue instruction" {
		t.Errorf("system instruction = %q, want dialogue instruction", mock.Calls[0][0].Content)
	}
}

type fakeScreens struct {
	png []byte
	err error
}

func (f fakeScreens) Capture(ctx context.Context) ([]byte, error) {
	return f.png, f.err
}

func TestHandleUserMessageScreenshotOptIn(t *testing.T) {
	mock := testutil.NewMockCompleter()
	e, _, _ := newTestEngine(t, mock, nil)
	e.screens = fakeScreens{png: []byte{0x89, 'P', 'N', 'G'}}

	// Opted out: no image on the outgoing user message
	if _, err := e.HandleUserMessage(context.Background(), "no shot", model.LevelDefault, false); err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	call := mock.Calls[0]
	if len(call[len(call)-1].ImagePNG) != 0 {
		t.Error("screenshot attached without opt-in")
	}

	// Opted in at default level: image rides on the user message
	if _, err := e.HandleUserMessage(context.Background(), "with shot", model.LevelDefault, true); err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	call = mock.Calls[2] // call 1 was the first turn's commentary
	if len(call[len(call)-1].ImagePNG) == 0 {
		t.Error("screenshot missing despite opt-in")
	}

	// Opted in at dialogue level: still no image
	if _, err := e.HandleUserMessage(context.Background(), "dialogue shot", model.LevelDialogue, true); err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	call = mock.Calls[len(mock.Calls)-1]
	if len(call[len(call)-1].ImagePNG) != 0 {
		t.Error("screenshot attached outside default level")
	}
}

func TestHandleUserMessageScreenshotFailureDegrades(t *testing.T) {
	mock := testutil.NewMockCompleter()
	e, store, _ := newTestEngine(t, mock, nil)
	e.screens = fakeScreens{err: errors.New("no display")}

	if _, err := e.HandleUserMessage(context.Background(), "hello", model.LevelDefault, true); err != nil {
		t.Fatalf("turn failed despite degradable capture error: %v", err)
	}
	if len(store.msgs) != 3 {
		t.Errorf("persisted %d messages, want 3", len(store.msgs))
	}
}

func TestHandleUserMessageAnalysisLevel(t *testing.T) {
	mock := testutil.NewMockCompleter()
	e, store, _ := newTestEngine(t, mock, nil)

	reply, err := e.HandleUserMessage(context.Background(), "what have you noticed", model.LevelAnalysis, false)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if reply.Answer.Role != model.RoleAnalyst {
		t.Errorf("answer role = %s, want analyst", reply.Answer.Role)
	}
	if reply.Commentary != nil {
		t.Error("analysis level should not run commentary")
	}
	if len(store.msgs) != 2 {
		t.Errorf("persisted %d messages, want 2", len(store.msgs))
	}
}

func TestHandleUserMessagePrimaryFailure(t *testing.T) {
	mock := testutil.NewMockCompleter()
	mock.CompleteFunc = func(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
		return "", model.ErrNetwork
	}
	e, store, _ := newTestEngine(t, mock, nil)

	_, err := e.HandleUserMessage(context.Background(), "hello", model.LevelDefault, false)
	if !errors.Is(err, model.ErrNetwork) {
		t.Fatalf("got err %v, want ErrNetwork", err)
	}

	// Nothing persisted, commentary never attempted
	if len(store.msgs) != 0 {
		t.Errorf("persisted %d messages after failure, want 0", len(store.msgs))
	}
	if len(mock.Calls) != 1 {
		t.Errorf("made %d completion calls, want 1", len(mock.Calls))
	}
}

func TestHandleUserMessageCommentaryFailure(t *testing.T) {
	mock := testutil.NewMockCompleter()
	first := true
	mock.CompleteFunc = func(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
		if first {
			first = false
			return "primary answer", nil
		}
		return "", model.ErrNetwork
	}
	e, store, _ := newTestEngine(t, mock, nil)

	reply, err := e.HandleUserMessage(context.Background(), "hello", model.LevelDefault, false)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if reply.Answer.Content != "primary answer" {
		t.Errorf("answer = %q", reply.Answer.Content)
	}
	if reply.Commentary != nil {
		t.Error("commentary should be nil after its call failed")
	}
	if len(store.msgs) != 2 {
		t.Errorf("persisted %d messages, want 2", len(store.msgs))
	}
}

func TestHandleUserMessageCommentaryPlaceholder(t *testing.T) {
	mock := testutil.NewMockCompleter()
	first := true
	mock.CompleteFunc = func(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
		if first {
			first = false
			return "primary answer", nil
		}
		return model.NoResponse, nil
	}
	e, store, _ := newTestEngine(t, mock, nil)

	reply, err := e.HandleUserMessage(context.Background(), "hello", model.LevelDefault, false)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if reply.Commentary != nil {
		t.Errorf("commentary = %q, want nil for a placeholder reply", reply.Commentary.Content)
	}
	if len(store.msgs) != 2 {
		t.Errorf("persisted %d messages, want 2", len(store.msgs))
	}
	for _, m := range store.msgs {
		if m.Role == model.RolePersona {
			t.Errorf("placeholder commentary was persisted: %q", m.Content)
		}
	}
}

func TestHandleUserMessageNoCompleter(t *testing.T) {
	e, _, _ := newTestEngine(t, nil, nil)

	_, err := e.HandleUserMessage(context.Background(), "hello", model.LevelDefault, false)
	if !errors.Is(err, model.ErrAuth) {
		t.Errorf("got err %v, want ErrAuth", err)
	}
}

func TestHandleUserMessageEmptyInput(t *testing.T) {
	e, _, _ := newTestEngine(t, testutil.NewMockCompleter(), nil)

	_, err := e.HandleUserMessage(context.Background(), "   ", model.LevelDefault, false)
	if !errors.Is(err, model.ErrParse) {
		t.Errorf("got err %v, want ErrParse", err)
	}
}

func TestTriggerDeepAnalysis(t *testing.T) {
	analyst := testutil.NewMockCompleter()
	analyst.CompleteFunc = func(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
		return "you keep coming back to concurrency", nil
	}
	e, store, _ := newTestEngine(t, nil, analyst)

	store.msgs = []model.ChatMessage{
		{Role: model.RoleUser, Content: "question one"},
		{Role: model.RoleAssistant, Content: "answer one"},
	}

	result, err := e.TriggerDeepAnalysis(context.Background())
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if !result.Ran {
		t.Fatal("analysis did not run")
	}
	if result.Message.Role != model.RoleAnalyst {
		t.Errorf("role = %s, want analyst", result.Message.Role)
	}
	if result.Message.Level != model.LevelAnalysis {
		t.Errorf("level = %d, want 2", result.Message.Level)
	}

	// Analysis outcome is persisted
	last := store.msgs[len(store.msgs)-1]
	if last.Content != "you keep coming back to concurrency" {
		t.Errorf("persisted content = %q", last.Content)
	}

	// Transcript format: "[role]: content" blocks separated by blank lines
	call := analyst.Calls[0]
	wantTranscript := "Analyze this conversation history:\n\n[user]: question one\n\n[assistant]: answer one"
	if call[1].Content != wantTranscript {
		t.Errorf("transcript = %q, want %q", call[1].Content, wantTranscript)
	}
	if call[0].Content != "analysis instruction" {
		t.Errorf("system = %q, want analysis instruction", call[0].Content)
	}
}

func TestTriggerDeepAnalysisCooldown(t *testing.T) {
	analyst := testutil.NewMockCompleter()
	e, _, _ := newTestEngine(t, nil, analyst)

	first, err := e.TriggerDeepAnalysis(context.Background())
	if err != nil {
		t.Fatalf("first analysis failed: %v", err)
	}
	if !first.Ran {
		t.Fatal("first analysis did not run")
	}

	second, err := e.TriggerDeepAnalysis(context.Background())
	if err != nil {
		t.Fatalf("second trigger failed: %v", err)
	}
	if second.Ran {
		t.Error("second analysis ran inside the cooldown window")
	}
	if second.Remaining != 21600 {
		t.Errorf("remaining = %d, want 21600", second.Remaining)
	}

	// Only the first trigger reached the network
	if len(analyst.Calls) != 1 {
		t.Errorf("made %d completion calls, want 1", len(analyst.Calls))
	}
}

func TestTriggerDeepAnalysisNoCompleter(t *testing.T) {
	e, _, _ := newTestEngine(t, testutil.NewMockCompleter(), nil)

	_, err := e.TriggerDeepAnalysis(context.Background())
	if !errors.Is(err, model.ErrAuth) {
		t.Errorf("got err %v, want ErrAuth", err)
	}
}

func TestTriggerDeepAnalysisFailureLeavesGateOpen(t *testing.T) {
	analyst := testutil.NewMockCompleter()
	fail := true
	analyst.CompleteFunc = func(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
		if fail {
			return "", model.ErrNetwork
		}
		return "reflection", nil
	}
	e, _, _ := newTestEngine(t, nil, analyst)

	if _, err := e.TriggerDeepAnalysis(context.Background()); !errors.Is(err, model.ErrNetwork) {
		t.Fatalf("got err %v, want ErrNetwork", err)
	}

	fail = false
	result, err := e.TriggerDeepAnalysis(context.Background())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !result.Ran {
		t.Error("retry blocked; failed run should not stamp the gate")
	}
}

func TestHistoryDefaultLimit(t *testing.T) {
	e, store, _ := newTestEngine(t, nil, nil)

	if _, err := e.History(0); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if store.recentN[0] != DefaultHistoryLimit {
		t.Errorf("history fetch used limit %d, want %d", store.recentN[0], DefaultHistoryLimit)
	}

	if _, err := e.History(7); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if store.recentN[1] != 7 {
		t.Errorf("history fetch used limit %d, want 7", store.recentN[1])
	}
}

func TestClearHistory(t *testing.T) {
	e, store, _ := newTestEngine(t, nil, nil)
	store.msgs = []model.ChatMessage{{Role: model.RoleUser, Content: "x"}}

	if err := e.ClearHistory(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if len(store.msgs) != 0 {
		t.Errorf("%d messages remain after clear", len(store.msgs))
	}
}

func TestTranscriptEmptyHistory(t *testing.T) {
	if got := transcript(nil); got != "" {
		t.Errorf("transcript(nil) = %q, want empty", got)
	}
	if got := transcript([]model.ChatMessage{{Role: model.RoleUser, Content: "only"}}); !strings.HasPrefix(got, "[user]: only") {
		t.Errorf("transcript = %q", got)
	}
}
