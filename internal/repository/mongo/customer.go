package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vittamhq/loan-widget/internal/domain"
)

// CustomerRepository implements domain.CustomerRepository over the pre-seeded
// users and kycs collections.
type CustomerRepository struct {
	db *DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) getOne(ctx context.Context, filter bson.M) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.collection(usersCollection).FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return r.getOne(ctx, bson.M{"customer_id": customerID})
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return r.getOne(ctx, bson.M{"phone": phone})
}

func (r *CustomerRepository) GetByPAN(ctx context.Context, pan string) (*domain.Customer, error) {
	return r.getOne(ctx, bson.M{"pan": strings.ToUpper(pan)})
}

func (r *CustomerRepository) GetKYCByPAN(ctx context.Context, pan string) (*domain.KYCRecord, error) {
	var rec domain.KYCRecord
	err := r.db.collection(kycsCollection).
		FindOne(ctx, bson.M{"pan": strings.ToUpper(pan)}).
		Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get kyc record: %w", err)
	}
	return &rec, nil
}

// OfferRepository implements domain.OfferRepository over the rate card rows
// in the offer_template collection.
type OfferRepository struct {
	db *DB
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// FindMatching returns the first active template whose score and amount
// bands cover the request, or ErrNotFound when no row matches.
func (r *OfferRepository) FindMatching(ctx context.Context, creditScore int, amount float64) (*domain.OfferTemplate, error) {
	filter := bson.M{
		"active":           true,
		"min_credit_score": bson.M{"$lte": creditScore},
		"max_credit_score": bson.M{"$gte": creditScore},
		"min_amount":       bson.M{"$lte": amount},
		"max_amount":       bson.M{"$gte": amount},
	}

	var tpl domain.OfferTemplate
	err := r.db.collection(offerTemplateCollection).FindOne(ctx, filter).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find offer template: %w", err)
	}
	return &tpl, nil
}
