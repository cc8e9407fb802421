package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vittamhq/loan-widget/internal/api/response"
	"github.com/vittamhq/loan-widget/internal/doctype"
	"github.com/vittamhq/loan-widget/internal/domain"
	"github.com/vittamhq/loan-widget/internal/storage"
)

// UploadHandler handles document upload endpoints
type UploadHandler struct {
	sessions    domain.SessionRepository
	documents   domain.DocumentRepository
	store       *storage.Store
	maxFileSize int64
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(sessions domain.SessionRepository, documents domain.DocumentRepository, store *storage.Store, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		sessions:    sessions,
		documents:   documents,
		store:       store,
		maxFileSize: maxFileSize,
	}
}

// Upload stores one document for a session. The doc_id must be one of the
// canonical document keys; anything else is rejected so the document set
// stays closed.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize*2)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	sessionID := r.FormValue("session_id")
	docID := r.FormValue("doc_id")
	if sessionID == "" || docID == "" {
		response.BadRequest(w, "session_id and doc_id are required")
		return
	}

	if !doctype.IsCanonical(docID) {
		response.BadRequest(w, fmt.Sprintf("invalid doc_id %q. Allowed: %s", docID, strings.Join(doctype.CanonicalKeys(), ", ")))
		return
	}

	if _, err := h.sessions.Get(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to load session")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	defer file.Close()

	if header.Size == 0 {
		response.BadRequest(w, "uploaded file is empty")
		return
	}
	if header.Size > h.maxFileSize {
		response.BadRequest(w, fmt.Sprintf("file exceeds the %d byte limit", h.maxFileSize))
		return
	}

	path, size, err := h.store.Save(sessionID, docID, header.Filename, file)
	if err != nil {
		response.InternalError(w, "failed to save file")
		return
	}

	info, _ := doctype.Lookup(docID)
	doc := &domain.Document{
		DocumentID:         uuid.New().String(),
		SessionID:          sessionID,
		DocID:              docID,
		DocName:            info.Name,
		OriginalFilename:   header.Filename,
		FilePath:           path,
		FileSize:           size,
		UploadedAt:         time.Now().UTC(),
		VerificationStatus: domain.VerificationPending,
	}

	if err := h.documents.Upsert(r.Context(), doc); err != nil {
		response.InternalError(w, "failed to record document")
		return
	}

	response.Created(w, doc)
}
