package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vittamhq/loan-widget/internal/api/response"
	"github.com/vittamhq/loan-widget/internal/assist"
	"github.com/vittamhq/loan-widget/internal/domain"
)

var validate = validator.New()

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	assist *assist.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(assistService *assist.Service) *SessionHandler {
	return &SessionHandler{assist: assistService}
}

// Create opens a new conversation session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, welcome, err := h.assist.CreateSession(r.Context())
	if err != nil {
		response.InternalError(w, "failed to create session")
		return
	}

	response.Created(w, map[string]any{
		"session_id": session.SessionID,
		"message":    welcome,
		"stage":      session.Metadata.ConversationStage,
	})
}

// History returns the session transcript in chronological order
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.assist.History(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to load history")
		return
	}

	history := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		history = append(history, map[string]any{
			"role":      m.Role,
			"content":   m.Content,
			"timestamp": m.CreatedAt,
		})
	}

	response.OK(w, map[string]any{
		"session_id": sessionID,
		"history":    history,
	})
}

// Delete removes a session with its transcript, documents, and files
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.assist.DeleteSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to delete session")
		return
	}

	response.NoContent(w)
}
