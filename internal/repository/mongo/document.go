package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vittamhq/loan-widget/internal/domain"
)

// DocumentRepository implements domain.DocumentRepository
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Upsert stores document metadata keyed by (session_id, doc_id). A re-upload
// of the same document type replaces the previous record and resets its
// verification state to whatever the caller provides.
func (r *DocumentRepository) Upsert(ctx context.Context, doc *domain.Document) error {
	filter := bson.M{"session_id": doc.SessionID, "doc_id": doc.DocID}
	update := bson.M{"$set": bson.M{
		"document_id":           doc.DocumentID,
		"doc_name":              doc.DocName,
		"original_filename":     doc.OriginalFilename,
		"file_path":             doc.FilePath,
		"file_size":             doc.FileSize,
		"uploaded_at":           doc.UploadedAt,
		"verification_status":   doc.VerificationStatus,
		"verification_feedback": doc.VerificationFeedback,
		"verified_at":           doc.VerifiedAt,
	}}

	opts := options.Update().SetUpsert(true)
	if _, err := r.db.collection(documentsCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.collection(documentsCollection).
		FindOne(ctx, bson.M{"document_id": documentID}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) GetByDocID(ctx context.Context, sessionID, docID string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.collection(documentsCollection).
		FindOne(ctx, bson.M{"session_id": sessionID, "doc_id": docID}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Document, error) {
	opts := options.Find().SetSort(bson.M{"uploaded_at": 1})

	cursor, err := r.db.collection(documentsCollection).Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []domain.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) SetVerification(ctx context.Context, documentID string, status domain.VerificationStatus, feedback string, verifiedAt *time.Time) error {
	update := bson.M{"$set": bson.M{
		"verification_status":   status,
		"verification_feedback": feedback,
		"verified_at":           verifiedAt,
	}}

	res, err := r.db.collection(documentsCollection).UpdateOne(ctx, bson.M{"document_id": documentID}, update)
	if err != nil {
		return fmt.Errorf("failed to set verification: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := r.db.collection(documentsCollection).DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}
