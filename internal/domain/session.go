package domain

import (
	"context"
	"time"
)

// ConversationStage tracks where a session is in the loan journey.
type ConversationStage string

const (
	StageInitial       ConversationStage = "initial"
	StageNeedsAnalysis ConversationStage = "needs_analysis"
	StageVerification  ConversationStage = "verification"
	StageUnderwriting  ConversationStage = "underwriting"
	StageSanction      ConversationStage = "sanction"
)

// SessionMetadata carries the mutable per-session loan context.
type SessionMetadata struct {
	CustomerID        string            `bson:"customer_id,omitempty" json:"customer_id,omitempty"`
	LoanAmount        float64           `bson:"loan_amount,omitempty" json:"loan_amount,omitempty"`
	TenureMonths      int               `bson:"tenure_months,omitempty" json:"tenure_months,omitempty"`
	ConversationStage ConversationStage `bson:"conversation_stage,omitempty" json:"conversation_stage,omitempty"`
	PhoneVerified     bool              `bson:"phone_verified,omitempty" json:"phone_verified,omitempty"`
}

// Session represents one visitor's conversation with the assistant.
type Session struct {
	SessionID string          `bson:"session_id" json:"session_id"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
	Metadata  SessionMetadata `bson:"metadata" json:"metadata"`
	IsActive  bool            `bson:"is_active" json:"is_active"`
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, session *Session) error
	List(ctx context.Context, limit, offset int) ([]Session, error)
	Delete(ctx context.Context, sessionID string) error
}
