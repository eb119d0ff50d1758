package loan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	outboxTopicNotify = "send_notification"

	// Late fee accrues at 5% of the outstanding amount per 30 days overdue.
	lateFeeRate = "0.05"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, topic string, payload []byte) error
}

type Service struct {
	loanRepo      Repository
	repaymentRepo RepaymentRepository
	paymentRepo   PaymentRepository
	outboxRepo    OutboxRepository
	now           func() time.Time
}

func NewService(loanRepo Repository, repaymentRepo RepaymentRepository, paymentRepo PaymentRepository, outboxRepo OutboxRepository) *Service {
	return &Service{
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		paymentRepo:   paymentRepo,
		outboxRepo:    outboxRepo,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// OpenInput carries the approved application terms a loan is opened from.
type OpenInput struct {
	ApplicationID   string
	UserID          string
	PrincipalAmount decimal.Decimal
	InterestRate    decimal.Decimal
	TermMonths      int
}

// Open disburses an approved application: prices the loan, persists it with a
// full repayment schedule and queues the disbursement notification.
func (s *Service) Open(ctx context.Context, in OpenInput) (*Entity, error) {
	quote, err := PriceLoan(in.PrincipalAmount, in.InterestRate, in.TermMonths)
	if err != nil {
		return nil, err
	}

	disbursedAt := s.now()
	firstDue := AddMonthsClamped(disbursedAt, 1)
	maturity := AddMonthsClamped(disbursedAt, in.TermMonths)

	created, err := s.loanRepo.Create(ctx, CreateInput{
		Reference:        NewReference("LN"),
		ApplicationID:    in.ApplicationID,
		UserID:           in.UserID,
		PrincipalAmount:  in.PrincipalAmount,
		InterestRate:     in.InterestRate,
		TermMonths:       in.TermMonths,
		MonthlyPayment:   quote.MonthlyPayment,
		TotalPayable:     quote.TotalPayable,
		DisbursedAt:      disbursedAt,
		FirstPaymentDate: firstDue,
		MaturityDate:     maturity,
	})
	if err != nil {
		return nil, err
	}

	schedule, err := BuildSchedule(in.PrincipalAmount, in.InterestRate, in.TermMonths, firstDue)
	if err != nil {
		return nil, err
	}
	installments := make([]Repayment, 0, len(schedule))
	for _, entry := range schedule {
		installments = append(installments, Repayment{
			LoanID:            created.ID,
			UserID:            in.UserID,
			InstallmentNumber: entry.InstallmentNumber,
			Amount:            entry.Payment,
			PrincipalAmount:   entry.Principal,
			InterestAmount:    entry.Interest,
			AmountPaid:        decimal.Zero,
			LateFee:           decimal.Zero,
			DueDate:           entry.DueDate,
			Status:            RepaymentPending,
		})
	}
	if err := s.repaymentRepo.CreateBatch(ctx, installments); err != nil {
		return nil, err
	}

	s.notify(ctx, in.UserID, "loan_disbursed", map[string]string{
		"loan.id":          created.Reference,
		"principal_amount": in.PrincipalAmount.StringFixed(2),
		"amount_due":       quote.MonthlyPayment.StringFixed(2),
		"due_date":         firstDue.Format("2006-01-02"),
	})

	return created, nil
}

func (s *Service) GetLoan(ctx context.Context, loanID string) (*Entity, error) {
	return s.loanRepo.GetByID(ctx, loanID)
}

func (s *Service) ListLoans(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.loanRepo.List(ctx, f)
}

func (s *Service) Schedule(ctx context.Context, loanID string) ([]Repayment, error) {
	return s.repaymentRepo.ListByLoan(ctx, loanID)
}

func (s *Service) ListRepayments(ctx context.Context, f RepaymentFilter) ([]Repayment, error) {
	return s.repaymentRepo.List(ctx, f)
}

func (s *Service) ListPayments(ctx context.Context, userID string, limit, offset int32) ([]Payment, error) {
	return s.paymentRepo.ListByUser(ctx, userID, limit, offset)
}

type PaymentInput struct {
	LoanID           string
	UserID           string
	Amount           decimal.Decimal
	Method           string
	GatewayReference string
}

// RecordPayment stores the payment and applies it to unpaid installments
// oldest-due-first. The loan balance drops by the principal component of each
// installment the payment fully settles; a partial payment leaves the balance
// untouched until the installment is cleared.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (*Payment, error) {
	if strings.TrimSpace(in.LoanID) == "" || in.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("invalid_payment_input")
	}

	lo, err := s.loanRepo.GetByID(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}
	if lo.UserID != in.UserID {
		return nil, fmt.Errorf("loan_not_owned")
	}
	if lo.Status == StatusCompleted || lo.Status == StatusDefaulted {
		return nil, fmt.Errorf("loan_not_payable")
	}

	payment, err := s.paymentRepo.Create(ctx, CreatePaymentInput{
		Reference:        NewReference("PY"),
		LoanID:           in.LoanID,
		UserID:           in.UserID,
		Amount:           in.Amount,
		Currency:         "NGN",
		Method:           in.Method,
		GatewayReference: in.GatewayReference,
		Status:           PaymentSuccessful,
	})
	if err != nil {
		return nil, err
	}

	installments, err := s.repaymentRepo.ListByLoan(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	remaining := in.Amount
	balance := lo.OutstandingBalance
	paymentsRemaining := lo.PaymentsRemaining
	for _, inst := range installments {
		if remaining.Sign() <= 0 {
			break
		}
		if inst.Status == RepaymentPaid {
			continue
		}

		outstanding := inst.Outstanding()
		applied := decimal.Min(remaining, outstanding)
		remaining = remaining.Sub(applied)
		newPaid := inst.AmountPaid.Add(applied)

		status := RepaymentPartial
		var paidAt *time.Time
		if newPaid.GreaterThanOrEqual(inst.Amount.Add(inst.LateFee)) {
			status = RepaymentPaid
			t := now
			paidAt = &t
			balance = balance.Sub(inst.PrincipalAmount)
			paymentsRemaining--
		}
		if err := s.repaymentRepo.ApplyPayment(ctx, inst.ID, newPaid, status, paidAt); err != nil {
			return nil, err
		}
	}

	if balance.Sign() < 0 {
		balance = decimal.Zero
	}
	if !balance.Equal(lo.OutstandingBalance) {
		if err := s.loanRepo.UpdateBalance(ctx, in.LoanID, balance, paymentsRemaining); err != nil {
			return nil, err
		}
	}

	if balance.IsZero() && CanTransition(lo.Status, StatusCompleted) {
		if err := s.loanRepo.UpdateStatus(ctx, in.LoanID, StatusCompleted); err != nil {
			return nil, err
		}
	} else if lo.Status == StatusOverdue {
		if cured, err := s.overdueCured(ctx, in.LoanID); err != nil {
			return nil, err
		} else if cured {
			if err := s.loanRepo.UpdateStatus(ctx, in.LoanID, StatusActive); err != nil {
				return nil, err
			}
		}
	}

	s.notify(ctx, in.UserID, "payment_received", map[string]string{
		"loan.id":          lo.Reference,
		"principal_amount": lo.PrincipalAmount.StringFixed(2),
		"amount_due":       in.Amount.StringFixed(2),
	})

	return payment, nil
}

func (s *Service) overdueCured(ctx context.Context, loanID string) (bool, error) {
	installments, err := s.repaymentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return false, err
	}
	now := s.now()
	for _, inst := range installments {
		if inst.Status != RepaymentPaid && inst.IsOverdue(now) {
			return false, nil
		}
	}
	return true, nil
}

func (s *Service) MarkDefault(ctx context.Context, loanID, reason string) error {
	lo, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return err
	}
	if !CanTransition(lo.Status, StatusDefaulted) {
		return fmt.Errorf("invalid_status_transition")
	}
	if err := s.loanRepo.UpdateStatus(ctx, loanID, StatusDefaulted); err != nil {
		return err
	}
	s.notify(ctx, lo.UserID, "payment_overdue", map[string]string{
		"loan.id": lo.Reference,
		"reason":  strings.TrimSpace(reason),
	})
	return nil
}

// SweepOverdue marks past-due unpaid installments overdue, charges late fees
// and pushes the owning loans into overdue status.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repaymentRepo.ListUnpaidDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	flagged := map[string]bool{}
	count := 0
	for _, inst := range due {
		days := inst.DaysOverdue(now)
		if days <= 0 {
			continue
		}
		fee := LateFee(inst.Outstanding(), days)
		if err := s.repaymentRepo.MarkOverdue(ctx, inst.ID, fee); err != nil {
			return count, err
		}
		count++

		if flagged[inst.LoanID] {
			continue
		}
		flagged[inst.LoanID] = true

		lo, err := s.loanRepo.GetByID(ctx, inst.LoanID)
		if err != nil {
			return count, err
		}
		if lo.Status == StatusActive {
			if err := s.loanRepo.UpdateStatus(ctx, inst.LoanID, StatusOverdue); err != nil {
				return count, err
			}
		}
		s.notify(ctx, inst.UserID, "payment_overdue", map[string]string{
			"loan.id":         lo.Reference,
			"amount_due":      inst.Outstanding().StringFixed(2),
			"due_date":        inst.DueDate.Format("2006-01-02"),
			"late_fee":        fee.StringFixed(2),
			"interest_amount": inst.InterestAmount.StringFixed(2),
		})
	}
	return count, nil
}

// SendDueReminders queues payment_due notifications for installments falling
// due within the window.
func (s *Service) SendDueReminders(ctx context.Context, daysAhead int) (int, error) {
	now := s.now()
	upcoming, err := s.repaymentRepo.ListDueBetween(ctx, now, now.AddDate(0, 0, daysAhead))
	if err != nil {
		return 0, err
	}

	count := 0
	for _, inst := range upcoming {
		if inst.Status == RepaymentPaid {
			continue
		}
		lo, err := s.loanRepo.GetByID(ctx, inst.LoanID)
		if err != nil {
			return count, err
		}
		daysUntil := int(inst.DueDate.Sub(now).Hours() / 24)
		s.notify(ctx, inst.UserID, "payment_due", map[string]string{
			"loan.id":          lo.Reference,
			"amount_due":       inst.Outstanding().StringFixed(2),
			"due_date":         inst.DueDate.Format("2006-01-02"),
			"days_until_due":   fmt.Sprintf("%d", daysUntil),
			"principal_amount": inst.PrincipalAmount.StringFixed(2),
			"interest_amount":  inst.InterestAmount.StringFixed(2),
		})
		count++
	}
	return count, nil
}

func (s *Service) PortfolioAnalytics(ctx context.Context) (*PortfolioAnalytics, error) {
	return s.loanRepo.GetPortfolioAnalytics(ctx)
}

// LateFee computes the late fee on an outstanding amount: 5% per 30 days
// overdue, prorated daily.
func LateFee(outstanding decimal.Decimal, daysOverdue int) decimal.Decimal {
	if daysOverdue <= 0 || outstanding.Sign() <= 0 {
		return decimal.Zero
	}
	rate := decimal.RequireFromString(lateFeeRate)
	days := decimal.NewFromInt(int64(daysOverdue))
	return outstanding.Mul(rate).Mul(days).DivRound(decimal.NewFromInt(30), 2)
}

// NewReference builds short human-readable references like LN1A2B3C4D.
func NewReference(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:8])
}

func (s *Service) notify(ctx context.Context, userID, kind string, vars map[string]string) {
	payload, _ := json.Marshal(map[string]any{
		"user_id":   userID,
		"type":      kind,
		"variables": vars,
	})
	// Notification enqueue failures must not fail the financial operation.
	_ = s.outboxRepo.Enqueue(ctx, outboxTopicNotify, payload)
}
