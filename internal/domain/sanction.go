package domain

import (
	"context"
	"time"
)

// BankDetails is the disbursement account captured before sanctioning.
type BankDetails struct {
	AccountNumber     string `bson:"account_number" json:"account_number"`
	IFSCCode          string `bson:"ifsc_code" json:"ifsc_code"`
	AccountHolderName string `bson:"account_holder_name" json:"account_holder_name"`
	BankName          string `bson:"bank_name,omitempty" json:"bank_name,omitempty"`
}

// Sanction is an approved loan offer recorded at the end of the journey.
type Sanction struct {
	SanctionID       string      `bson:"sanction_id" json:"sanction_id"`
	CustomerID       string      `bson:"customer_id" json:"customer_id"`
	SessionID        string      `bson:"session_id,omitempty" json:"session_id,omitempty"`
	CustomerName     string      `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	LoanAmount       float64     `bson:"loan_amount" json:"loan_amount"`
	TenureMonths     int         `bson:"tenure_months" json:"tenure_months"`
	InterestRate     float64     `bson:"interest_rate" json:"interest_rate"`
	EMI              float64     `bson:"emi" json:"emi"`
	TotalAmount      float64     `bson:"total_amount" json:"total_amount"`
	TotalInterest    float64     `bson:"total_interest" json:"total_interest"`
	ProcessingFee    float64     `bson:"processing_fee" json:"processing_fee"`
	ProcessingFeePct float64     `bson:"processing_fee_pct" json:"processing_fee_pct"`
	BankDetails      BankDetails `bson:"bank_details" json:"bank_details"`
	ValidityDays     int         `bson:"validity_days" json:"validity_days"`
	Status           string      `bson:"status" json:"status"`
	CreatedAt        time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `bson:"updated_at" json:"updated_at"`
}

// SanctionRepository defines the interface for sanction storage
type SanctionRepository interface {
	Create(ctx context.Context, sanction *Sanction) error
	LatestBySession(ctx context.Context, sessionID string) (*Sanction, error)
	List(ctx context.Context, limit, offset int) ([]Sanction, error)
}
