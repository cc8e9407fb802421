package domain

import (
	"context"
	"time"
)

// VerificationStatus is the lifecycle state of an uploaded document.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Document is an uploaded file tied to a session and a canonical doc type.
type Document struct {
	DocumentID           string             `bson:"document_id" json:"document_id"`
	SessionID            string             `bson:"session_id" json:"session_id"`
	DocID                string             `bson:"doc_id" json:"doc_id"`
	DocName              string             `bson:"doc_name" json:"doc_name"`
	OriginalFilename     string             `bson:"original_filename" json:"original_filename"`
	FilePath             string             `bson:"file_path" json:"file_path"`
	FileSize             int64              `bson:"file_size" json:"file_size"`
	UploadedAt           time.Time          `bson:"uploaded_at" json:"uploaded_at"`
	VerificationStatus   VerificationStatus `bson:"verification_status" json:"verification_status"`
	VerificationFeedback string             `bson:"verification_feedback,omitempty" json:"verification_feedback,omitempty"`
	VerifiedAt           *time.Time         `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}

// DocumentRepository defines the interface for document metadata storage.
// Upsert keys on (session_id, doc_id): re-uploading a document type for a
// session replaces the previous entry.
type DocumentRepository interface {
	Upsert(ctx context.Context, doc *Document) error
	Get(ctx context.Context, documentID string) (*Document, error)
	GetByDocID(ctx context.Context, sessionID, docID string) (*Document, error)
	ListBySession(ctx context.Context, sessionID string) ([]Document, error)
	SetVerification(ctx context.Context, documentID string, status VerificationStatus, feedback string, verifiedAt *time.Time) error
	DeleteBySession(ctx context.Context, sessionID string) error
}
