package domain

import (
	"context"
	"time"
)

// CurrentLoan is one existing obligation on a customer's profile.
type CurrentLoan struct {
	Type        string  `bson:"type" json:"type"`
	EMI         float64 `bson:"emi" json:"emi"`
	Outstanding float64 `bson:"outstanding" json:"outstanding"`
}

// Customer is a known user from the pre-seeded users collection.
type Customer struct {
	CustomerID       string        `bson:"customer_id" json:"customer_id"`
	Name             string        `bson:"name,omitempty" json:"name,omitempty"`
	DOB              *time.Time    `bson:"dob,omitempty" json:"dob,omitempty"`
	City             string        `bson:"city,omitempty" json:"city,omitempty"`
	Phone            string        `bson:"phone,omitempty" json:"phone,omitempty"`
	Email            string        `bson:"email,omitempty" json:"email,omitempty"`
	PAN              string        `bson:"pan,omitempty" json:"pan,omitempty"`
	Salary           *float64      `bson:"salary,omitempty" json:"salary,omitempty"`
	CurrentLoans     []CurrentLoan `bson:"current_loans,omitempty" json:"current_loans,omitempty"`
	PreApprovedLimit float64       `bson:"pre_approved_limit,omitempty" json:"pre_approved_limit,omitempty"`
}

// KYCRecord holds bureau data keyed by PAN.
type KYCRecord struct {
	Name        string     `bson:"name,omitempty" json:"name,omitempty"`
	PAN         string     `bson:"pan" json:"pan"`
	CreditScore int        `bson:"credit_score,omitempty" json:"credit_score,omitempty"`
	Phone       string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Address     string     `bson:"address,omitempty" json:"address,omitempty"`
	DOB         *time.Time `bson:"dob,omitempty" json:"dob,omitempty"`
}

// OfferTemplate is a rate card row matched by credit score and amount.
type OfferTemplate struct {
	Name             string  `bson:"name" json:"name"`
	MinCreditScore   int     `bson:"min_credit_score" json:"min_credit_score"`
	MaxCreditScore   int     `bson:"max_credit_score" json:"max_credit_score"`
	MinAmount        float64 `bson:"min_amount" json:"min_amount"`
	MaxAmount        float64 `bson:"max_amount" json:"max_amount"`
	MinTenureMonths  int     `bson:"min_tenure_months" json:"min_tenure_months"`
	MaxTenureMonths  int     `bson:"max_tenure_months" json:"max_tenure_months"`
	BaseRate         float64 `bson:"base_rate" json:"base_rate"`
	ProcessingFeePct float64 `bson:"processing_fee_pct" json:"processing_fee_pct"`
	Active           bool    `bson:"active" json:"active"`
}

// CustomerRepository defines the interface for customer/KYC lookups
type CustomerRepository interface {
	GetByID(ctx context.Context, customerID string) (*Customer, error)
	GetByPhone(ctx context.Context, phone string) (*Customer, error)
	GetByPAN(ctx context.Context, pan string) (*Customer, error)
	GetKYCByPAN(ctx context.Context, pan string) (*KYCRecord, error)
}

// OfferRepository defines the interface for offer template lookups
type OfferRepository interface {
	FindMatching(ctx context.Context, creditScore int, amount float64) (*OfferTemplate, error)
}
