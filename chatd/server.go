package chatd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	glog "github.com/goliatone/go-logger/glog"
	"tolv.systems/chatmark"
	"tolv.systems/chatmark/html"
)

const (
	maxMessageLength = 4000
	maxTitleLength   = 100
	shutdownTimeout  = 10 * time.Second
)

// Server carries the HTTP surface of the chat service.
type Server struct {
	cfg     Config
	store   Store
	llm     Completer
	limiter Limiter
	log     glog.Logger
}

// NewServer wires the service. A nil limiter disables rate limiting; a nil
// logger logs errors only.
func NewServer(cfg Config, store Store, llm Completer, limiter Limiter, log glog.Logger) *Server {
	if log == nil {
		log = quietLogger()
	}
	return &Server{cfg: cfg, store: store, llm: llm, limiter: limiter, log: log}
}

// Handler returns the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/health/redis", s.handleRedisHealth)
	mux.HandleFunc("GET /api/conversations", s.handleConversationList)
	mux.HandleFunc("GET /api/conversations/{id}", s.handleConversationGet)
	mux.HandleFunc("DELETE /api/conversations/{id}", s.handleConversationDelete)
	mux.HandleFunc("DELETE /api/conversations", s.handleConversationDeleteAll)
	mux.HandleFunc("PUT /api/conversations/{id}/title", s.handleTitleUpdate)
	mux.HandleFunc("GET /api/render/{id}", s.handleRender)

	var h http.Handler = mux
	h = Recover(s.log)(h)
	h = RequestLog(s.log)(h)
	h = RateLimit(s.limiter, s.log)(h)
	h = CORS(h)
	return h
}

// Run serves until ctx is cancelled, then drains with a shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("listening", "addr", s.cfg.Addr)
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("chatd: serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("chatd: shutdown: %w", err)
	}
	return nil
}

// ChatRequest is the POST /api/chat payload.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message,
			validation.Required,
			validation.RuneLength(1, maxMessageLength),
			validation.By(notBlank),
		),
	)
}

// ChatResponse is the POST /api/chat reply.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

type titleUpdateRequest struct {
	Title string `json:"title"`
}

func (r titleUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required,
			validation.RuneLength(1, maxTitleLength),
			validation.By(notBlank),
		),
	)
}

func notBlank(value any) error {
	if s, _ := value.(string); strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload ChatRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, &ValidationError{Field: "body", Message: err.Error()})
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	var conv *Conversation
	if payload.ConversationID != "" {
		existing, err := s.store.Get(ctx, payload.ConversationID)
		if err != nil {
			writeError(w, err)
			return
		}
		conv = existing
	} else {
		conv = NewConversation(payload.Message)
	}
	conv.Append(RoleUser, payload.Message)

	reply, err := s.llm.Complete(ctx, conv.Messages)
	if err != nil {
		writeError(w, err)
		return
	}
	conv.Append(RoleAssistant, reply)

	if err := s.store.Save(ctx, conv); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Response: reply, ConversationID: conv.ID})
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"models": s.cfg.LLM.Models}
	if len(s.cfg.LLM.Models) > 0 {
		resp["default"] = s.cfg.LLM.Models[0]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "chatmark-api",
	})
}

func (s *Server) handleRedisHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Warn("store ping failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":          "error",
			"redis_connected": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"redis_connected": true,
	})
}

func (s *Server) handleConversationList(w http.ResponseWriter, r *http.Request) {
	convs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summaries = append(summaries, conv.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"conversations": summaries,
	})
}

func (s *Server) handleConversationGet(w http.ResponseWriter, r *http.Request) {
	conv, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleConversationDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Conversation deleted",
	})
}

func (s *Server) handleConversationDeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "All conversations deleted",
		"deleted": n,
	})
}

func (s *Server) handleTitleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload titleUpdateRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, &ValidationError{Field: "body", Message: err.Error()})
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	conv, err := s.store.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	conv.Title = strings.TrimSpace(payload.Title)
	conv.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, conv); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Title updated",
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	conv, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	content, ok := conv.LastAssistantContent()
	if !ok {
		writeError(w, &ValidationError{Message: "conversation has no assistant reply"})
		return
	}
	nodes := chatmark.Parse(content)
	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := html.Render(w, nodes); err != nil {
			s.log.Error("render write failed", "conversation", conv.ID, "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conv.ID,
		"nodes":           nodeDTOs(nodes),
	})
}

func wantsHTML(r *http.Request) bool {
	if r.URL.Query().Get("format") == "html" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

type errorEnvelope struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	ErrorType string `json:"error_type"`
	Timestamp string `json:"timestamp"`
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorEnvelope) {
	env := errorEnvelope{
		Status:    "error",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err == nil {
		env.Message = "An unexpected error occurred"
		env.ErrorType = "internal_error"
		return http.StatusInternalServerError, env
	}

	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		env.Message = "Resource not found"
		if notFound.Resource != "" {
			env.Message = capitalize(notFound.Resource) + " not found"
		}
		env.Details = notFound.Key
		env.ErrorType = "not_found"
		return http.StatusNotFound, env
	}

	var vErrs validation.Errors
	if errors.As(err, &vErrs) || errors.Is(err, ErrValidation) {
		env.Message = "Validation error"
		env.Details = err.Error()
		env.ErrorType = "validation_error"
		return http.StatusUnprocessableEntity, env
	}

	if errors.Is(err, ErrStorage) {
		env.Message = "Storage service unavailable"
		env.Details = err.Error()
		env.ErrorType = "storage_error"
		return http.StatusServiceUnavailable, env
	}

	env.Message = "An unexpected error occurred"
	env.Details = err.Error()
	env.ErrorType = "internal_error"
	return http.StatusInternalServerError, env
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
