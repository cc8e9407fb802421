package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vittamhq/loan-widget/internal/domain"
)

// Sanction terms applied when no offer template overrides them.
const (
	defaultProcessingFeePct = 3.5
	sanctionValidityDays    = 30
)

// Service runs rate quotes, eligibility checks, and sanction creation on top
// of the customer and offer repositories.
type Service struct {
	customers domain.CustomerRepository
	offers    domain.OfferRepository
	sanctions domain.SanctionRepository
	logger    zerolog.Logger
}

// NewService creates a new loan service
func NewService(customers domain.CustomerRepository, offers domain.OfferRepository, sanctions domain.SanctionRepository, logger zerolog.Logger) *Service {
	return &Service{
		customers: customers,
		offers:    offers,
		sanctions: sanctions,
		logger:    logger.With().Str("component", "loan").Logger(),
	}
}

// Quote returns the rate and repayment breakdown for a request. An active
// offer template matching the score and amount overrides the internal rate
// card.
func (s *Service) Quote(ctx context.Context, creditScore int, amount float64, tenureMonths int) (Breakdown, error) {
	rate := RateFor(creditScore, amount)

	tpl, err := s.offers.FindMatching(ctx, creditScore, amount)
	switch {
	case err == nil:
		rate = tpl.BaseRate
		s.logger.Debug().Str("offer", tpl.Name).Float64("rate", rate).Msg("offer template matched")
	case errors.Is(err, domain.ErrNotFound):
		// Rate card applies
	default:
		return Breakdown{}, fmt.Errorf("failed to look up offer template: %w", err)
	}

	return Compute(amount, rate, tenureMonths), nil
}

// CheckEligibility evaluates a loan request for a known customer using the
// bureau score on file.
func (s *Service) CheckEligibility(ctx context.Context, customerID string, amount float64, tenureMonths int) (Decision, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load customer: %w", err)
	}

	creditScore := 0
	if customer.PAN != "" {
		kyc, err := s.customers.GetKYCByPAN(ctx, customer.PAN)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return Decision{}, fmt.Errorf("failed to load kyc record: %w", err)
		}
		if err == nil {
			creditScore = kyc.CreditScore
		}
	}

	rate := RateFor(creditScore, amount)
	decision := Evaluate(Profile{
		CreditScore:      creditScore,
		PreApprovedLimit: customer.PreApprovedLimit,
		Salary:           customer.Salary,
	}, amount, tenureMonths, rate)

	s.logger.Info().
		Str("customer_id", customerID).
		Float64("amount", amount).
		Str("status", string(decision.Status)).
		Msg("eligibility evaluated")

	return decision, nil
}

// CreateSanction records an approved offer for the session and returns it.
func (s *Service) CreateSanction(ctx context.Context, sessionID string, customer *domain.Customer, amount float64, tenureMonths int, annualRate float64, bank domain.BankDetails) (*domain.Sanction, error) {
	breakdown := Compute(amount, annualRate, tenureMonths)

	feePct := defaultProcessingFeePct
	now := time.Now().UTC()

	sanction := &domain.Sanction{
		SanctionID:       newSanctionID(),
		CustomerID:       customer.CustomerID,
		SessionID:        sessionID,
		CustomerName:     customer.Name,
		LoanAmount:       amount,
		TenureMonths:     tenureMonths,
		InterestRate:     annualRate,
		EMI:              breakdown.EMI,
		TotalAmount:      breakdown.TotalAmount,
		TotalInterest:    breakdown.TotalInterest,
		ProcessingFee:    round2(amount * feePct / 100),
		ProcessingFeePct: feePct,
		BankDetails: domain.BankDetails{
			AccountNumber:     MaskAccount(bank.AccountNumber),
			IFSCCode:          bank.IFSCCode,
			AccountHolderName: bank.AccountHolderName,
			BankName:          bank.BankName,
		},
		ValidityDays: sanctionValidityDays,
		Status:       "approved",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.sanctions.Create(ctx, sanction); err != nil {
		return nil, fmt.Errorf("failed to store sanction: %w", err)
	}

	s.logger.Info().
		Str("sanction_id", sanction.SanctionID).
		Str("session_id", sessionID).
		Float64("amount", amount).
		Msg("sanction created")

	return sanction, nil
}

// LatestForSession returns the most recent sanction for a session, or nil
// when none exists.
func (s *Service) LatestForSession(ctx context.Context, sessionID string) (*domain.Sanction, error) {
	sanction, err := s.sanctions.LatestBySession(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sanction, nil
}

// MaskAccount hides all but the last four digits of an account number.
func MaskAccount(account string) string {
	if len(account) <= 4 {
		return account
	}
	return strings.Repeat("X", len(account)-4) + account[len(account)-4:]
}

func newSanctionID() string {
	return "SNC-" + strings.ToUpper(uuid.New().String()[:8])
}
