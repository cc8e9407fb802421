package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vittamhq/loan-widget/internal/api/response"
	"github.com/vittamhq/loan-widget/internal/domain"
	"github.com/vittamhq/loan-widget/internal/verification"
)

// DocumentHandler handles document listing and verification endpoints
type DocumentHandler struct {
	documents    domain.DocumentRepository
	verification *verification.Service
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents domain.DocumentRepository, verificationService *verification.Service) *DocumentHandler {
	return &DocumentHandler{
		documents:    documents,
		verification: verificationService,
	}
}

// List returns the documents uploaded for a session
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	docs, err := h.documents.ListBySession(r.Context(), sessionID)
	if err != nil {
		response.InternalError(w, "failed to list documents")
		return
	}

	response.OK(w, map[string]any{
		"session_id": sessionID,
		"documents":  docs,
	})
}

// VerifySession verifies every document uploaded for a session
func (h *DocumentHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, err := h.verification.VerifySession(r.Context(), sessionID)
	if err != nil {
		response.InternalError(w, "verification failed")
		return
	}

	response.OK(w, result)
}

// VerifyDocument verifies a single document by its id
func (h *DocumentHandler) VerifyDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	result, err := h.verification.VerifyDocument(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "document not found")
			return
		}
		response.InternalError(w, "verification failed")
		return
	}

	response.OK(w, result)
}
