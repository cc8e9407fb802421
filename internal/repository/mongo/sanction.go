package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vittamhq/loan-widget/internal/domain"
)

// SanctionRepository implements domain.SanctionRepository
type SanctionRepository struct {
	db *DB
}

// NewSanctionRepository creates a new sanction repository
func NewSanctionRepository(db *DB) *SanctionRepository {
	return &SanctionRepository{db: db}
}

func (r *SanctionRepository) Create(ctx context.Context, sanction *domain.Sanction) error {
	if _, err := r.db.collection(sanctionsCollection).InsertOne(ctx, sanction); err != nil {
		return fmt.Errorf("failed to create sanction: %w", err)
	}
	return nil
}

func (r *SanctionRepository) LatestBySession(ctx context.Context, sessionID string) (*domain.Sanction, error) {
	opts := options.FindOne().SetSort(bson.M{"created_at": -1})

	var s domain.Sanction
	err := r.db.collection(sanctionsCollection).
		FindOne(ctx, bson.M{"session_id": sessionID}, opts).
		Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sanction: %w", err)
	}
	return &s, nil
}

func (r *SanctionRepository) List(ctx context.Context, limit, offset int) ([]domain.Sanction, error) {
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.db.collection(sanctionsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sanctions: %w", err)
	}
	defer cursor.Close(ctx)

	var sanctions []domain.Sanction
	if err := cursor.All(ctx, &sanctions); err != nil {
		return nil, fmt.Errorf("failed to decode sanctions: %w", err)
	}
	return sanctions, nil
}
