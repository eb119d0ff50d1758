package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	loandomain "github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/shopspring/decimal"
)

var (
	ErrNotReady       = errors.New("application_not_ready")
	ErrAlreadyDecided = errors.New("application_already_decided")
)

// ValidationError carries the per-field failures of a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("application validation failed: %d field(s)", len(e.Fields))
}

// BorrowerProfile is the slice of the user record scoring needs.
type BorrowerProfile struct {
	BVNPresent       bool
	KYCVerified      bool
	EmploymentStatus string
	MonthlyIncome    decimal.Decimal
}

type UserDirectory interface {
	GetBorrowerProfile(ctx context.Context, userID string) (*BorrowerProfile, error)
}

// LoanHistory summarizes a borrower's prior loans for scoring.
type LoanHistory interface {
	Summary(ctx context.Context, userID string) (completed, defaulted, total int64, monthlyObligations decimal.Decimal, err error)
}

type Opener interface {
	Open(ctx context.Context, in loandomain.OpenInput) (*loandomain.Entity, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, topic string, payload []byte) error
}

const outboxTopicNotify = "send_notification"

type Limits struct {
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	BaseRate  decimal.Decimal
}

type Service struct {
	repo       Repository
	users      UserDirectory
	history    LoanHistory
	opener     Opener
	outboxRepo OutboxRepository
	limits     Limits
	now        func() time.Time
}

func NewService(repo Repository, users UserDirectory, history LoanHistory, opener Opener, outboxRepo OutboxRepository, limits Limits) *Service {
	if limits.BaseRate.IsZero() {
		limits.BaseRate = decimal.RequireFromString("0.05")
	}
	return &Service{
		repo:       repo,
		users:      users,
		history:    history,
		opener:     opener,
		outboxRepo: outboxRepo,
		limits:     limits,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates the full wizard payload and creates a pending application.
// Exactly one record is created per successful submission.
func (s *Service) Submit(ctx context.Context, userID string, data FormData) (*Entity, error) {
	if errs := ValidateAll(data); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	if s.limits.MinAmount.Sign() > 0 && data.Amount.LessThan(s.limits.MinAmount) {
		return nil, &ValidationError{Fields: []FieldError{{Field: "amount", Message: "below minimum loan amount"}}}
	}
	if s.limits.MaxAmount.Sign() > 0 && data.Amount.GreaterThan(s.limits.MaxAmount) {
		return nil, &ValidationError{Fields: []FieldError{{Field: "amount", Message: "above maximum loan amount"}}}
	}

	created, err := s.repo.Create(ctx, CreateInput{
		Reference:        loandomain.NewReference("AP"),
		UserID:           userID,
		Amount:           data.Amount,
		Purpose:          data.Purpose,
		TermMonths:       data.TermMonths,
		EmploymentStatus: data.EmploymentStatus,
		MonthlyIncome:    data.MonthlyIncome,
		Guarantor:        data.Guarantor,
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userID, "loan_application", map[string]string{
		"loan.id":          created.Reference,
		"principal_amount": created.Amount.StringFixed(2),
	})
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Entity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

// Score computes the applicant's credit score from their profile and loan
// history.
func (s *Service) Score(ctx context.Context, app *Entity) (int, error) {
	profile, err := s.users.GetBorrowerProfile(ctx, app.UserID)
	if err != nil {
		return 0, err
	}
	completed, defaulted, total, obligations, err := s.history.Summary(ctx, app.UserID)
	if err != nil {
		return 0, err
	}

	income := app.MonthlyIncome
	if income.IsZero() {
		income = profile.MonthlyIncome
	}
	return CreditScore(ScoreInput{
		MonthlyIncome:      income,
		RequestedAmount:    app.Amount,
		MonthlyObligations: obligations,
		CompletedLoans:     completed,
		DefaultedLoans:     defaulted,
		HasLoanHistory:     total > 0,
		EmploymentStatus:   app.EmploymentStatus,
		BVNPresent:         profile.BVNPresent,
		KYCVerified:        profile.KYCVerified,
	}), nil
}

// Approve scores the application and grants the score-banded fraction of the
// requested amount at the suggested rate.
func (s *Service) Approve(ctx context.Context, id, reviewedBy string) (*Entity, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(app.Status, StatusApproved) {
		return nil, ErrAlreadyDecided
	}

	score, err := s.Score(ctx, app)
	if err != nil {
		return nil, err
	}
	decision, fraction := Decide(score)
	if decision == StatusRejected {
		if err := s.repo.UpdateDecision(ctx, id, DecisionInput{
			Status:          StatusRejected,
			CreditScore:     score,
			RejectionReason: "credit score below lending threshold",
			ReviewedBy:      reviewedBy,
		}); err != nil {
			return nil, err
		}
		s.notify(ctx, app.UserID, "loan_rejected", map[string]string{"loan.id": app.Reference})
		return s.repo.GetByID(ctx, id)
	}

	approvedAmount := app.Amount.Mul(fraction).Round(2)
	rate := SuggestInterestRate(score, s.limits.BaseRate)
	if err := s.repo.UpdateDecision(ctx, id, DecisionInput{
		Status:         StatusApproved,
		CreditScore:    score,
		ApprovedAmount: approvedAmount,
		InterestRate:   rate,
		ReviewedBy:     reviewedBy,
	}); err != nil {
		return nil, err
	}

	s.notify(ctx, app.UserID, "loan_approved", map[string]string{
		"loan.id":          app.Reference,
		"principal_amount": approvedAmount.StringFixed(2),
	})
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Reject(ctx context.Context, id, reviewedBy, reason string) (*Entity, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(app.Status, StatusRejected) {
		return nil, ErrAlreadyDecided
	}
	if err := s.repo.UpdateDecision(ctx, id, DecisionInput{
		Status:          StatusRejected,
		RejectionReason: reason,
		ReviewedBy:      reviewedBy,
	}); err != nil {
		return nil, err
	}
	s.notify(ctx, app.UserID, "loan_rejected", map[string]string{"loan.id": app.Reference})
	return s.repo.GetByID(ctx, id)
}

// Disburse opens a loan from an approved application and moves the
// application to disbursed.
func (s *Service) Disburse(ctx context.Context, id string) (*loandomain.Entity, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(app.Status, StatusDisbursed) {
		return nil, ErrNotReady
	}

	amount := app.ApprovedAmount
	if amount.Sign() <= 0 {
		amount = app.Amount
	}
	created, err := s.opener.Open(ctx, loandomain.OpenInput{
		ApplicationID:   app.ID,
		UserID:          app.UserID,
		PrincipalAmount: amount,
		InterestRate:    app.InterestRate,
		TermMonths:      app.TermMonths,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusDisbursed); err != nil {
		return nil, err
	}
	return created, nil
}

// SuggestInterestRate adjusts the base annual rate by the risk band of the
// credit score.
func SuggestInterestRate(score int, baseRate decimal.Decimal) decimal.Decimal {
	var adjustment string
	switch {
	case score >= 750:
		adjustment = "0"
	case score >= 700:
		adjustment = "0.01"
	case score >= 650:
		adjustment = "0.025"
	case score >= 600:
		adjustment = "0.05"
	default:
		adjustment = "0.10"
	}
	return baseRate.Add(decimal.RequireFromString(adjustment))
}

func (s *Service) notify(ctx context.Context, userID, kind string, vars map[string]string) {
	payload, _ := json.Marshal(map[string]any{
		"user_id":   userID,
		"type":      kind,
		"variables": vars,
	})
	_ = s.outboxRepo.Enqueue(ctx, outboxTopicNotify, payload)
}
