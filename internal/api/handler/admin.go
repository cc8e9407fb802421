package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vittamhq/loan-widget/internal/api/response"
	"github.com/vittamhq/loan-widget/internal/assist"
	"github.com/vittamhq/loan-widget/internal/config"
	"github.com/vittamhq/loan-widget/internal/domain"
	"github.com/vittamhq/loan-widget/internal/security"
)

// AdminHandler handles the operator API used by the CRM dashboard
type AdminHandler struct {
	cfg           config.OpsConfig
	jwtManager    *security.JWTManager
	sessions      domain.SessionRepository
	conversations domain.ConversationRepository
	documents     domain.DocumentRepository
	sanctions     domain.SanctionRepository
	assist        *assist.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	cfg config.OpsConfig,
	jwtManager *security.JWTManager,
	sessions domain.SessionRepository,
	conversations domain.ConversationRepository,
	documents domain.DocumentRepository,
	sanctions domain.SanctionRepository,
	assistService *assist.Service,
) *AdminHandler {
	return &AdminHandler{
		cfg:           cfg,
		jwtManager:    jwtManager,
		sessions:      sessions,
		conversations: conversations,
		documents:     documents,
		sanctions:     sanctions,
		assist:        assistService,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an operator and issues a token
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	if input.Username != h.cfg.Username || !security.CheckPassword(h.cfg.PasswordHash, input.Password) {
		response.Unauthorized(w, "invalid credentials")
		return
	}

	token, err := h.jwtManager.GenerateToken(input.Username)
	if err != nil {
		response.InternalError(w, "failed to generate token")
		return
	}

	response.OK(w, map[string]any{
		"token":      token,
		"expires_in": int64(h.jwtManager.TokenTTL().Seconds()),
	})
}

// ListSessions returns sessions newest-first with message counts
func (h *AdminHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	sessions, err := h.sessions.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w, "failed to list sessions")
		return
	}

	items := make([]map[string]any, 0, len(sessions))
	for _, s := range sessions {
		count, err := h.conversations.CountBySession(r.Context(), s.SessionID)
		if err != nil {
			response.InternalError(w, "failed to count messages")
			return
		}
		items = append(items, map[string]any{
			"session_id":    s.SessionID,
			"created_at":    s.CreatedAt,
			"updated_at":    s.UpdatedAt,
			"stage":         s.Metadata.ConversationStage,
			"customer_id":   s.Metadata.CustomerID,
			"message_count": count,
		})
	}

	response.OK(w, map[string]any{
		"sessions": items,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetSession returns one session with its transcript and documents
func (h *AdminHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to load session")
		return
	}

	messages, err := h.conversations.ListBySession(r.Context(), sessionID, 0)
	if err != nil {
		response.InternalError(w, "failed to load transcript")
		return
	}

	docs, err := h.documents.ListBySession(r.Context(), sessionID)
	if err != nil {
		response.InternalError(w, "failed to load documents")
		return
	}

	response.OK(w, map[string]any{
		"session":   session,
		"messages":  messages,
		"documents": docs,
	})
}

// DeleteSession removes a session and everything attached to it
func (h *AdminHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
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

// ListSanctions returns issued sanctions newest-first
func (h *AdminHandler) ListSanctions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	sanctions, err := h.sanctions.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w, "failed to list sanctions")
		return
	}

	response.OK(w, map[string]any{
		"sanctions": sanctions,
		"limit":     limit,
		"offset":    offset,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
