package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vittamhq/loan-widget/internal/config"
)

// Collection names used across the repositories.
const (
	sessionsCollection      = "sessions"
	conversationsCollection = "conversations"
	documentsCollection     = "documents"
	sanctionsCollection     = "sanctions"
	usersCollection         = "users"
	kycsCollection          = "kycs"
	offerTemplateCollection = "offer_template"
)

// DB wraps the Mongo client and database handle
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewDB connects to MongoDB, verifies the connection, and bootstraps the
// indexes the query paths depend on.
func NewDB(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		clientOpts.SetConnectTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := &DB{client: client, db: client.Database(cfg.Database)}

	if err := db.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return db, nil
}

func (d *DB) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		sessionsCollection: {
			{Keys: map[string]any{"session_id": 1}, Options: options.Index().SetUnique(true)},
			{Keys: map[string]any{"created_at": 1}},
			{Keys: map[string]any{"is_active": 1}},
		},
		conversationsCollection: {
			{Keys: map[string]any{"session_id": 1}},
			{Keys: map[string]any{"created_at": 1}},
		},
		documentsCollection: {
			{Keys: map[string]any{"session_id": 1, "doc_id": 1}, Options: options.Index().SetUnique(true)},
			{Keys: map[string]any{"document_id": 1}, Options: options.Index().SetUnique(true)},
		},
		sanctionsCollection: {
			{Keys: map[string]any{"session_id": 1}},
			{Keys: map[string]any{"created_at": -1}},
		},
		usersCollection: {
			{Keys: map[string]any{"phone": 1}},
		},
		kycsCollection: {
			{Keys: map[string]any{"pan": 1}},
		},
	}

	for name, models := range indexes {
		if _, err := d.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("collection %s: %w", name, err)
		}
	}
	return nil
}

// Close disconnects the underlying client
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// Ping verifies database connectivity
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}
