package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vittamhq/loan-widget/internal/domain"
)

// ConversationRepository implements domain.ConversationRepository
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, msg *domain.ConversationMessage) error {
	if _, err := r.db.collection(conversationsCollection).InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to create conversation message: %w", err)
	}
	return nil
}

// ListBySession returns the transcript in chronological order (oldest first).
func (r *ConversationRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.ConversationMessage, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.db.collection(conversationsCollection).Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []domain.ConversationMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	return messages, nil
}

func (r *ConversationRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	count, err := r.db.collection(conversationsCollection).CountDocuments(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return 0, fmt.Errorf("failed to count conversation: %w", err)
	}
	return count, nil
}

func (r *ConversationRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	if _, err := r.db.collection(conversationsCollection).DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}
