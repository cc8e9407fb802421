package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vittamhq/loan-widget/internal/doctype"
	"github.com/vittamhq/loan-widget/internal/domain"
	"github.com/vittamhq/loan-widget/internal/llm"
	"github.com/vittamhq/loan-widget/internal/loan"
	"github.com/vittamhq/loan-widget/internal/repository/redis"
	"github.com/vittamhq/loan-widget/internal/storage"
)

// Reply is what a chat turn returns to the widget.
type Reply struct {
	Response   string                `json:"response"`
	Documents  []doctype.Requirement `json:"documents,omitempty"`
	SanctionID string                `json:"sanction_id,omitempty"`
	Stage      string                `json:"stage"`
}

// structuredReply is the JSON protocol the model follows.
type structuredReply struct {
	Reply  string         `json:"reply"`
	Action string         `json:"action,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// One action dispatch plus one relay turn per message. The model never
// chains actions within a turn.
const maxActionHops = 2

// Service orchestrates the loan conversation: it persists the transcript,
// runs the model, executes the actions it requests, and decorates the reply
// with document requirements and sanction references.
type Service struct {
	sessions      domain.SessionRepository
	conversations domain.ConversationRepository
	documents     domain.DocumentRepository
	customers     domain.CustomerRepository
	loans         *loan.Service
	otp           *redis.OTPStore
	provider      llm.Provider
	store         *storage.Store
	logger        zerolog.Logger
}

// NewService creates a new assist service
func NewService(
	sessions domain.SessionRepository,
	conversations domain.ConversationRepository,
	documents domain.DocumentRepository,
	customers domain.CustomerRepository,
	loans *loan.Service,
	otp *redis.OTPStore,
	provider llm.Provider,
	store *storage.Store,
	logger zerolog.Logger,
) *Service {
	return &Service{
		sessions:      sessions,
		conversations: conversations,
		documents:     documents,
		customers:     customers,
		loans:         loans,
		otp:           otp,
		provider:      provider,
		store:         store,
		logger:        logger.With().Str("component", "assist").Logger(),
	}
}

// CreateSession opens a new conversation and returns it with the welcome
// message already recorded.
func (s *Service) CreateSession(ctx context.Context) (*domain.Session, string, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		SessionID: uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
		Metadata:  domain.SessionMetadata{ConversationStage: domain.StageInitial},
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}

	welcome := &domain.ConversationMessage{
		SessionID: session.SessionID,
		Role:      domain.RoleAssistant,
		Content:   WelcomeMessage,
		AgentType: s.provider.Name(),
		CreatedAt: now,
	}
	if err := s.conversations.Create(ctx, welcome); err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("session_id", session.SessionID).Msg("session created")
	return session, WelcomeMessage, nil
}

// History returns the transcript in chronological order.
func (s *Service) History(ctx context.Context, sessionID string) ([]domain.ConversationMessage, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.conversations.ListBySession(ctx, sessionID, 0)
}

// DeleteSession removes the session, its transcript, its document metadata,
// and its stored files.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return err
	}
	if err := s.conversations.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.documents.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.store.RemoveSession(sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to remove stored files")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", sessionID).Msg("session deleted")
	return nil
}

// HandleMessage runs one chat turn. The user message is persisted before the
// model is called, so a model failure never loses what the customer typed.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (*Reply, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.ConversationMessage{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.conversations.Create(ctx, userMsg); err != nil {
		return nil, err
	}

	history, err := s.conversations.ListBySession(ctx, sessionID, 0)
	if err != nil {
		return nil, err
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	parsed, err := s.converse(ctx, session, msgs)
	if err != nil {
		return nil, err
	}

	assistantMsg := &domain.ConversationMessage{
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   parsed.Reply,
		AgentType: s.provider.Name(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.conversations.Create(ctx, assistantMsg); err != nil {
		return nil, err
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	reply := &Reply{
		Response: parsed.Reply,
		Stage:    string(session.Metadata.ConversationStage),
	}

	reqs, err := s.pendingRequirements(ctx, sessionID, parsed.Reply)
	if err != nil {
		return nil, err
	}
	reply.Documents = reqs

	if session.Metadata.ConversationStage == domain.StageSanction {
		sanction, err := s.loans.LatestForSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if sanction != nil {
			reply.SanctionID = sanction.SanctionID
		}
	}

	return reply, nil
}

// converse calls the model, and when it requests an action, executes it and
// gives the outcome back for one relay turn.
func (s *Service) converse(ctx context.Context, session *domain.Session, msgs []llm.Message) (*structuredReply, error) {
	var parsed *structuredReply
	for hop := 0; hop < maxActionHops; hop++ {
		raw, err := s.provider.Chat(ctx, msgs)
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}

		parsed = parseStructured(raw)
		if parsed.Action == "" {
			return parsed, nil
		}

		note := s.dispatch(ctx, session, parsed)
		s.logger.Debug().
			Str("session_id", session.SessionID).
			Str("action", parsed.Action).
			Msg("action dispatched")

		msgs = append(msgs,
			llm.Message{Role: llm.RoleAssistant, Content: raw},
			llm.Message{Role: llm.RoleUser, Content: "[system note] " + note + " Relay this to the customer; do not request another action this turn."},
		)
	}
	// Hop limit reached: surface the last reply as-is.
	parsed.Action = ""
	return parsed, nil
}

func (s *Service) dispatch(ctx context.Context, session *domain.Session, sr *structuredReply) string {
	switch sr.Action {
	case "quote_emi":
		return s.actionQuote(ctx, sr.Params)
	case "check_eligibility":
		return s.actionEligibility(ctx, session, sr.Params)
	case "send_otp":
		return s.actionSendOTP(ctx, sr.Params)
	case "verify_otp":
		return s.actionVerifyOTP(ctx, session, sr.Params)
	case "create_sanction":
		return s.actionSanction(ctx, session, sr.Params)
	case "set_stage":
		return s.actionSetStage(session, sr.Params)
	default:
		return fmt.Sprintf("Unknown action %q; continue the conversation without it.", sr.Action)
	}
}

func (s *Service) actionQuote(ctx context.Context, params map[string]any) string {
	amount := floatParam(params, "amount")
	tenure := intParam(params, "tenure_months")
	score := intParam(params, "credit_score")
	if score == 0 {
		score = 750
	}
	if amount <= 0 || tenure <= 0 {
		return "Quote failed: amount and tenure_months are required."
	}

	b, err := s.loans.Quote(ctx, score, amount, tenure)
	if err != nil {
		s.logger.Error().Err(err).Msg("quote failed")
		return "Quote failed due to an internal error; apologise and offer to retry."
	}
	return fmt.Sprintf("Quote: ₹%.2f for %d months at %.2f%% p.a. gives an EMI of ₹%.2f, total repayment ₹%.2f (interest ₹%.2f).",
		b.Principal, b.TenureMonths, b.AnnualRate, b.EMI, b.TotalAmount, b.TotalInterest)
}

func (s *Service) actionEligibility(ctx context.Context, session *domain.Session, params map[string]any) string {
	if session.Metadata.CustomerID == "" {
		return "Eligibility check failed: the customer is not identified yet. Ask for their registered phone number and verify it with an OTP first."
	}
	amount := floatParam(params, "amount")
	tenure := intParam(params, "tenure_months")
	if amount <= 0 || tenure <= 0 {
		return "Eligibility check failed: amount and tenure_months are required."
	}

	decision, err := s.loans.CheckEligibility(ctx, session.Metadata.CustomerID, amount, tenure)
	if err != nil {
		s.logger.Error().Err(err).Msg("eligibility check failed")
		return "Eligibility check failed due to an internal error; apologise and offer to retry."
	}

	session.Metadata.LoanAmount = amount
	session.Metadata.TenureMonths = tenure
	session.Metadata.ConversationStage = domain.StageUnderwriting

	note := fmt.Sprintf("Eligibility result: %s. %s.", decision.Status, decision.Reason)
	if decision.RequiresSalarySlip {
		note += " A verified salary slip is required before approval."
	}
	if decision.EstimatedEMI > 0 {
		note += fmt.Sprintf(" Estimated EMI ₹%.2f.", decision.EstimatedEMI)
	}
	return note
}

func (s *Service) actionSendOTP(ctx context.Context, params map[string]any) string {
	phone := strParam(params, "phone")
	if phone == "" {
		return "OTP send failed: phone is required."
	}
	code, err := s.otp.Issue(ctx, phone)
	if err != nil {
		s.logger.Error().Err(err).Msg("otp issue failed")
		return "OTP send failed due to an internal error; apologise and offer to retry."
	}
	// SMS gateway integration pending; the code is logged for development.
	s.logger.Info().Str("phone", phone).Str("code", code).Msg("otp issued")
	return "OTP sent to the customer's phone. Ask them to enter the 6-digit code."
}

func (s *Service) actionVerifyOTP(ctx context.Context, session *domain.Session, params map[string]any) string {
	phone := strParam(params, "phone")
	code := strParam(params, "code")
	if phone == "" || code == "" {
		return "OTP verification failed: phone and code are required."
	}

	err := s.otp.Verify(ctx, phone, code)
	switch {
	case err == nil:
		session.Metadata.PhoneVerified = true
		customer, cerr := s.customers.GetByPhone(ctx, phone)
		if cerr == nil {
			session.Metadata.CustomerID = customer.CustomerID
			return fmt.Sprintf("OTP verified. Customer identified as %s (customer_id %s).", customer.Name, customer.CustomerID)
		}
		if errors.Is(cerr, domain.ErrNotFound) {
			return "OTP verified, but no customer record matches this phone number. Continue as a new customer."
		}
		s.logger.Error().Err(cerr).Msg("customer lookup failed")
		return "OTP verified, but the customer lookup failed. Apologise and offer to retry."
	case errors.Is(err, redis.ErrOTPMismatch):
		return "OTP verification failed: the code does not match. The customer may try again."
	case errors.Is(err, redis.ErrOTPMaxAttempts):
		return "OTP verification failed: attempt limit reached. A fresh OTP must be sent."
	case errors.Is(err, redis.ErrOTPExpired):
		return "OTP verification failed: the code expired. A fresh OTP must be sent."
	default:
		s.logger.Error().Err(err).Msg("otp verify failed")
		return "OTP verification failed due to an internal error; apologise and offer to retry."
	}
}

func (s *Service) actionSanction(ctx context.Context, session *domain.Session, params map[string]any) string {
	if session.Metadata.CustomerID == "" {
		return "Sanction failed: the customer is not identified yet."
	}
	customer, err := s.customers.GetByID(ctx, session.Metadata.CustomerID)
	if err != nil {
		s.logger.Error().Err(err).Msg("customer load failed")
		return "Sanction failed due to an internal error; apologise and offer to retry."
	}

	amount := floatParam(params, "amount")
	tenure := intParam(params, "tenure_months")
	rate := floatParam(params, "rate")
	if amount <= 0 || tenure <= 0 || rate <= 0 {
		return "Sanction failed: amount, tenure_months, and rate are required."
	}

	bank := domain.BankDetails{
		AccountNumber:     strParam(params, "account_number"),
		IFSCCode:          strParam(params, "ifsc_code"),
		AccountHolderName: strParam(params, "account_holder_name"),
		BankName:          strParam(params, "bank_name"),
	}

	sanction, err := s.loans.CreateSanction(ctx, session.SessionID, customer, amount, tenure, rate, bank)
	if err != nil {
		s.logger.Error().Err(err).Msg("sanction creation failed")
		return "Sanction failed due to an internal error; apologise and offer to retry."
	}

	session.Metadata.ConversationStage = domain.StageSanction
	return fmt.Sprintf("Sanction %s issued: ₹%.2f for %d months at %.2f%% p.a., EMI ₹%.2f, processing fee ₹%.2f, valid for %d days. Disbursement to account %s.",
		sanction.SanctionID, sanction.LoanAmount, sanction.TenureMonths, sanction.InterestRate,
		sanction.EMI, sanction.ProcessingFee, sanction.ValidityDays, sanction.BankDetails.AccountNumber)
}

func (s *Service) actionSetStage(session *domain.Session, params map[string]any) string {
	stage := domain.ConversationStage(strParam(params, "stage"))
	switch stage {
	case domain.StageInitial, domain.StageNeedsAnalysis, domain.StageVerification, domain.StageUnderwriting, domain.StageSanction:
		session.Metadata.ConversationStage = stage
		return fmt.Sprintf("Stage recorded as %s. Continue the conversation.", stage)
	default:
		return fmt.Sprintf("Unknown stage %q ignored.", stage)
	}
}

// pendingRequirements detects document requests in the reply and drops the
// types this session has already verified.
func (s *Service) pendingRequirements(ctx context.Context, sessionID, reply string) ([]doctype.Requirement, error) {
	reqs := doctype.DetectRequests(reply)
	if len(reqs) == 0 {
		return nil, nil
	}

	docs, err := s.documents.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	verified := make(map[string]bool)
	for _, d := range docs {
		if d.VerificationStatus == domain.VerificationVerified {
			verified[d.DocID] = true
		}
	}

	pending := reqs[:0]
	for _, r := range reqs {
		if !verified[r.DocID] {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	return pending, nil
}

// parseStructured decodes the model's JSON protocol, falling back to the raw
// text when the model ignored the format.
func parseStructured(raw string) *structuredReply {
	body := llm.ExtractJSON(raw)
	if body != "" {
		var sr structuredReply
		if err := json.Unmarshal([]byte(body), &sr); err == nil && sr.Reply != "" {
			return &sr
		}
	}
	return &structuredReply{Reply: raw}
}

func floatParam(params map[string]any, key string) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

func intParam(params map[string]any, key string) int {
	return int(floatParam(params, key))
}

func strParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}
