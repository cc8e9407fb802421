package loan

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vittamhq/loan-widget/internal/domain"
)

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

func newTestService() (*Service, *MockCustomerRepository, *MockOfferRepository, *MockSanctionRepository) {
	customers := new(MockCustomerRepository)
	offers := new(MockOfferRepository)
	sanctions := new(MockSanctionRepository)
	return NewService(customers, offers, sanctions, zerolog.Nop()), customers, offers, sanctions
}

func TestQuote_RateCardWhenNoOffer(t *testing.T) {
	svc, _, offers, _ := newTestService()
	offers.On("FindMatching", mock.Anything, 760, 500000.0).Return(nil, domain.ErrNotFound)

	b, err := svc.Quote(context.Background(), 760, 500000, 36)
	require.NoError(t, err)

	assert.Equal(t, RateFor(760, 500000), b.AnnualRate)
	assert.InDelta(t, 16367, b.EMI, 2)
}

func TestQuote_OfferTemplateOverridesRate(t *testing.T) {
	svc, _, offers, _ := newTestService()
	offers.On("FindMatching", mock.Anything, 760, 500000.0).Return(&domain.OfferTemplate{
		Name:     "festive-special",
		BaseRate: 9.5,
		Active:   true,
	}, nil)

	b, err := svc.Quote(context.Background(), 760, 500000, 36)
	require.NoError(t, err)

	assert.Equal(t, 9.5, b.AnnualRate)
	assert.Less(t, b.EMI, EMI(500000, RateFor(760, 500000), 36))
}

func TestCheckEligibility_UsesBureauScore(t *testing.T) {
	svc, customers, _, _ := newTestService()
	salary := 150000.0
	customers.On("GetByID", mock.Anything, "c1").Return(&domain.Customer{
		CustomerID:       "c1",
		PAN:              "ABCDE1234F",
		Salary:           &salary,
		PreApprovedLimit: 500000,
	}, nil)
	customers.On("GetKYCByPAN", mock.Anything, "ABCDE1234F").Return(&domain.KYCRecord{
		PAN:         "ABCDE1234F",
		CreditScore: 780,
	}, nil)

	d, err := svc.CheckEligibility(context.Background(), "c1", 400000, 36)
	require.NoError(t, err)
	assert.Equal(t, EligibilityInstant, d.Status)
}

func TestCheckEligibility_NoKYCRecordRejects(t *testing.T) {
	// Without a bureau score the customer sits below the credit floor.
	svc, customers, _, _ := newTestService()
	customers.On("GetByID", mock.Anything, "c1").Return(&domain.Customer{
		CustomerID:       "c1",
		PAN:              "ABCDE1234F",
		PreApprovedLimit: 500000,
	}, nil)
	customers.On("GetKYCByPAN", mock.Anything, "ABCDE1234F").Return(nil, domain.ErrNotFound)

	d, err := svc.CheckEligibility(context.Background(), "c1", 400000, 36)
	require.NoError(t, err)
	assert.Equal(t, EligibilityRejected, d.Status)
}

func TestCreateSanction(t *testing.T) {
	svc, _, _, sanctions := newTestService()

	var stored *domain.Sanction
	sanctions.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Sanction)
	}).Return(nil)

	customer := &domain.Customer{CustomerID: "c1", Name: "Priya Sharma"}
	bank := domain.BankDetails{AccountNumber: "123456785678", IFSCCode: "HDFC0001234", BankName: "HDFC Bank"}

	sanction, err := svc.CreateSanction(context.Background(), "s1", customer, 500000, 36, 10.5, bank)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.True(t, strings.HasPrefix(sanction.SanctionID, "SNC-"))
	assert.Len(t, sanction.SanctionID, 12)
	assert.Equal(t, sanction.SanctionID, strings.ToUpper(sanction.SanctionID))

	assert.InDelta(t, 17500, sanction.ProcessingFee, 0.01)
	assert.Equal(t, 3.5, sanction.ProcessingFeePct)
	assert.Equal(t, 30, sanction.ValidityDays)
	assert.Equal(t, "approved", sanction.Status)
	assert.Equal(t, "XXXXXXXX5678", sanction.BankDetails.AccountNumber)
	assert.WithinDuration(t, time.Now().UTC(), sanction.CreatedAt, time.Minute)
}

func TestLatestForSession_NoneIsNotAnError(t *testing.T) {
	svc, _, _, sanctions := newTestService()
	sanctions.On("LatestBySession", mock.Anything, "s1").Return(nil, domain.ErrNotFound)

	sanction, err := svc.LatestForSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, sanction)
}
