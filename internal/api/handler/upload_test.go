package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vittamhq/loan-widget/internal/domain"
	"github.com/vittamhq/loan-widget/internal/storage"
)

// stubSessionRepo knows a single session id.
type stubSessionRepo struct {
	known string
}

func (s *stubSessionRepo) Create(ctx context.Context, session *domain.Session) error { return nil }

func (s *stubSessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID != s.known {
		return nil, domain.ErrNotFound
	}
	return &domain.Session{SessionID: sessionID, IsActive: true}, nil
}

func (s *stubSessionRepo) Update(ctx context.Context, session *domain.Session) error { return nil }

func (s *stubSessionRepo) List(ctx context.Context, limit, offset int) ([]domain.Session, error) {
	return nil, nil
}

func (s *stubSessionRepo) Delete(ctx context.Context, sessionID string) error { return nil }

// stubDocumentRepo records upserts.
type stubDocumentRepo struct {
	upserted []domain.Document
}

func (s *stubDocumentRepo) Upsert(ctx context.Context, doc *domain.Document) error {
	s.upserted = append(s.upserted, *doc)
	return nil
}

func (s *stubDocumentRepo) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (s *stubDocumentRepo) GetByDocID(ctx context.Context, sessionID, docID string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (s *stubDocumentRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.Document, error) {
	return nil, nil
}

func (s *stubDocumentRepo) SetVerification(ctx context.Context, documentID string, status domain.VerificationStatus, feedback string, verifiedAt *time.Time) error {
	return nil
}

func (s *stubDocumentRepo) DeleteBySession(ctx context.Context, sessionID string) error { return nil }

func newUploadHandler(t *testing.T) (*UploadHandler, *stubDocumentRepo) {
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	docs := &stubDocumentRepo{}
	return NewUploadHandler(&stubSessionRepo{known: "s1"}, docs, store, 1<<20), docs
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, contents []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := fw.Write(contents); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, h *UploadHandler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Success {
		t.Error("expected success to be false")
	}
	return body.Error
}

func TestUpload_Success(t *testing.T) {
	h, docs := newUploadHandler(t)

	body, ct := multipartBody(t, map[string]string{"session_id": "s1", "doc_id": "salary_slip"}, "file", "slip.jpg", []byte("jpeg-bytes"))
	rec := doUpload(t, h, body, ct)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(docs.upserted) != 1 {
		t.Fatalf("expected 1 upserted document, got %d", len(docs.upserted))
	}

	doc := docs.upserted[0]
	if doc.DocID != "salary_slip" {
		t.Errorf("expected doc_id salary_slip, got %q", doc.DocID)
	}
	if doc.DocName == "" {
		t.Error("expected doc_name to be filled from the document catalogue")
	}
	if doc.VerificationStatus != domain.VerificationPending {
		t.Errorf("expected pending status, got %q", doc.VerificationStatus)
	}
	if doc.FileSize != int64(len("jpeg-bytes")) {
		t.Errorf("expected file size %d, got %d", len("jpeg-bytes"), doc.FileSize)
	}
}

func TestUpload_NonCanonicalDocID(t *testing.T) {
	h, docs := newUploadHandler(t)

	body, ct := multipartBody(t, map[string]string{"session_id": "s1", "doc_id": "passport_photo"}, "file", "photo.jpg", []byte("jpeg"))
	rec := doUpload(t, h, body, ct)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	msg := decodeError(t, rec)
	if !strings.Contains(msg, "salary_slip") || !strings.Contains(msg, "identity_proof") {
		t.Errorf("expected the error to list allowed doc ids, got %q", msg)
	}
	if len(docs.upserted) != 0 {
		t.Error("expected no document to be recorded")
	}
}

func TestUpload_MissingFields(t *testing.T) {
	h, _ := newUploadHandler(t)

	body, ct := multipartBody(t, map[string]string{"doc_id": "salary_slip"}, "file", "slip.jpg", []byte("jpeg"))
	rec := doUpload(t, h, body, ct)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestUpload_UnknownSession(t *testing.T) {
	h, _ := newUploadHandler(t)

	body, ct := multipartBody(t, map[string]string{"session_id": "nope", "doc_id": "salary_slip"}, "file", "slip.jpg", []byte("jpeg"))
	rec := doUpload(t, h, body, ct)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestUpload_EmptyFile(t *testing.T) {
	h, _ := newUploadHandler(t)

	body, ct := multipartBody(t, map[string]string{"session_id": "s1", "doc_id": "salary_slip"}, "file", "slip.jpg", nil)
	rec := doUpload(t, h, body, ct)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	msg := decodeError(t, rec)
	if !strings.Contains(msg, "empty") {
		t.Errorf("expected an empty-file error, got %q", msg)
	}
}

func TestUpload_NoFilePart(t *testing.T) {
	h, _ := newUploadHandler(t)

	body, ct := multipartBody(t, map[string]string{"session_id": "s1", "doc_id": "salary_slip"}, "", "", nil)
	rec := doUpload(t, h, body, ct)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
