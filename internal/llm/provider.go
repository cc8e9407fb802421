package llm

import "context"

// Message is one turn of a chat exchange.
type Message struct {
	Role    string
	Content string
}

// Chat roles accepted by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Image is one document page submitted for visual analysis.
type Image struct {
	MIMEType string
	Data     []byte
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Chat sends the conversation and returns the assistant reply
	Chat(ctx context.Context, messages []Message) (string, error)

	// AnalyzeImages answers a prompt about one or more images
	AnalyzeImages(ctx context.Context, prompt string, images []Image) (string, error)
}
