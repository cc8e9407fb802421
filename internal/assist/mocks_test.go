package assist

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vittamhq/loan-widget/internal/domain"
	"github.com/vittamhq/loan-widget/internal/llm"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) List(ctx context.Context, limit, offset int) ([]domain.Session, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockConversationRepository struct {
	mock.Mock

	mu    sync.Mutex
	saved []domain.ConversationMessage
}

func (m *MockConversationRepository) Create(ctx context.Context, msg *domain.ConversationMessage) error {
	m.mu.Lock()
	m.saved = append(m.saved, *msg)
	m.mu.Unlock()
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockConversationRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.ConversationMessage, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversationMessage), args.Error(1)
}

func (m *MockConversationRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConversationRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// Saved returns every message persisted through Create, in order.
func (m *MockConversationRepository) Saved() []domain.ConversationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ConversationMessage(nil), m.saved...)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Upsert(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetByDocID(ctx context.Context, sessionID, docID string) (*domain.Document, error) {
	args := m.Called(ctx, sessionID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Document, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) SetVerification(ctx context.Context, documentID string, status domain.VerificationStatus, feedback string, verifiedAt *time.Time) error {
	args := m.Called(ctx, documentID, status, feedback, verifiedAt)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByPAN(ctx context.Context, pan string) (*domain.Customer, error) {
	args := m.Called(ctx, pan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetKYCByPAN(ctx context.Context, pan string) (*domain.KYCRecord, error) {
	args := m.Called(ctx, pan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KYCRecord), args.Error(1)
}

type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) FindMatching(ctx context.Context, creditScore int, amount float64) (*domain.OfferTemplate, error) {
	args := m.Called(ctx, creditScore, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OfferTemplate), args.Error(1)
}

type MockSanctionRepository struct {
	mock.Mock
}

func (m *MockSanctionRepository) Create(ctx context.Context, sanction *domain.Sanction) error {
	args := m.Called(ctx, sanction)
	return args.Error(0)
}

func (m *MockSanctionRepository) LatestBySession(ctx context.Context, sessionID string) (*domain.Sanction, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sanction), args.Error(1)
}

func (m *MockSanctionRepository) List(ctx context.Context, limit, offset int) ([]domain.Sanction, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sanction), args.Error(1)
}

// scriptedProvider plays back canned model responses and records every
// message slice it was called with.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []string
	calls     [][]llm.Message
}

func (p *scriptedProvider) Name() string       { return "scripted" }
func (p *scriptedProvider) IsConfigured() bool { return true }

func (p *scriptedProvider) Chat(ctx context.Context, msgs []llm.Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, append([]llm.Message(nil), msgs...))
	if len(p.responses) == 0 {
		return "I'm not sure.", nil
	}
	next := p.responses[0]
	p.responses = p.responses[1:]
	return next, nil
}

func (p *scriptedProvider) AnalyzeImages(ctx context.Context, prompt string, images []llm.Image) (string, error) {
	return "", nil
}
