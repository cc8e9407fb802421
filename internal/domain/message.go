package domain

import (
	"context"
	"time"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ConversationMessage is one turn of a session's transcript.
type ConversationMessage struct {
	SessionID string      `bson:"session_id" json:"session_id"`
	Role      MessageRole `bson:"role" json:"role"`
	Content   string      `bson:"content" json:"content"`
	AgentType string      `bson:"agent_type,omitempty" json:"agent_type,omitempty"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}

// ConversationRepository defines the interface for transcript storage
type ConversationRepository interface {
	Create(ctx context.Context, msg *ConversationMessage) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]ConversationMessage, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}
