// Package server exposes the conversation engine over a local HTTP API so
// a desktop shell can drive it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"deskmate/chat"
	"deskmate/config"
	"deskmate/model"
	"deskmate/storage"
)

// Server wires the engine and storage into an HTTP handler
type Server struct {
	engine  *chat.Engine
	store   *storage.MessageStorage
	prompts *config.Prompts
}

func New(engine *chat.Engine, store *storage.MessageStorage, prompts *config.Prompts) *Server {
	return &Server{
		engine:  engine,
		store:   store,
		prompts: prompts,
	}
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /analysis", s.handleAnalysis)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("DELETE /history", s.handleClearHistory)
	mux.HandleFunc("GET /history/search", s.handleSearch)
	mux.HandleFunc("GET /prompts/{name}", s.handleGetPrompt)
	mux.HandleFunc("PUT /prompts/{name}", s.handlePutPrompt)

	return mux
}

// ListenAndServe runs the HTTP server until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the app's error taxonomy onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrParse):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNetwork):
		status = http.StatusBadGateway
	case errors.Is(err, model.ErrStorage):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("response encode failed: %v", err)
	}
}

type chatRequest struct {
	Message           string `json:"message"`
	Level             int    `json:"level"`
	IncludeScreenshot bool   `json:"include_screenshot"`
}

type chatResponse struct {
	Response   model.ChatMessage  `json:"response"`
	Commentary *model.ChatMessage `json:"commentary,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %v", model.ErrParse, err))
		return
	}

	level, err := model.LevelFromInt(req.Level)
	if err != nil {
		writeError(w, err)
		return
	}

	reply, err := s.engine.HandleUserMessage(r.Context(), req.Message, level, req.IncludeScreenshot)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:   reply.Answer,
		Commentary: reply.Commentary,
	})
}

type analysisResponse struct {
	OnCooldown bool               `json:"on_cooldown"`
	Remaining  int64              `json:"remaining_seconds,omitempty"`
	Insights   *model.ChatMessage `json:"insights,omitempty"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.TriggerDeepAnalysis(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := analysisResponse{
		OnCooldown: !result.Ran,
		Remaining:  result.Remaining,
	}
	if result.Ran {
		resp.Insights = &result.Message
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: invalid limit %q", model.ErrParse, raw))
			return
		}
		limit = n
	}

	messages, err := s.engine.History(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ClearHistory(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches, err := s.store.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

type promptResponse struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type promptUpdate struct {
	Text string `json:"text"`
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var text string
	var err error
	switch name {
	case "system":
		text, err = s.prompts.Instruction(model.LevelDefault)
	case "dialogue":
		text, err = s.prompts.Instruction(model.LevelDialogue)
	case "analysis":
		text, err = s.prompts.Instruction(model.LevelAnalysis)
	case "commentary":
		text, err = s.prompts.Commentary()
	default:
		writeError(w, fmt.Errorf("%w: unknown prompt %q", model.ErrParse, name))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Name: name, Text: text})
}

func (s *Server) handlePutPrompt(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req promptUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %v", model.ErrParse, err))
		return
	}

	var err error
	switch name {
	case "system":
		err = s.prompts.SaveInstruction(model.LevelDefault, req.Text)
	case "dialogue":
		err = s.prompts.SaveInstruction(model.LevelDialogue, req.Text)
	case "analysis":
		err = s.prompts.SaveInstruction(model.LevelAnalysis, req.Text)
	case "commentary":
		err = s.prompts.SaveCommentary(req.Text)
	default:
		writeError(w, fmt.Errorf("%w: unknown prompt %q", model.ErrParse, name))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
