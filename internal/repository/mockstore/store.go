package mockstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lessismore22/Quickfund/internal/domain/application"
	"github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/lessismore22/Quickfund/internal/domain/notification"
)

// ErrReadOnly is returned by every write operation. The store is a
// development stand-in, not a system of record.
var ErrReadOnly = errors.New("mock_store_read_only")

// DemoUserID is the borrower the canned fixtures belong to.
const DemoUserID = "00000000-0000-0000-0000-000000000001"

// Store serves canned loan data filtered by user, with a short artificial
// delay on every call to emulate network latency. It satisfies the loan and
// notification repository interfaces on the read side.
type Store struct {
	latency time.Duration

	mu            sync.RWMutex
	loans         []loan.Entity
	repayments    []loan.Repayment
	payments      []loan.Payment
	applications  []application.Entity
	notifications []notification.Entity
}

func New() *Store {
	s := &Store{latency: 150 * time.Millisecond}
	s.seed()
	return s
}

// Ping lets the store stand in for the database in readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// wait emulates a network round trip and honors context cancellation.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Store) seed() {
	now := time.Now().UTC()
	disbursed := loan.AddMonthsClamped(now, -4)
	firstDue := loan.AddMonthsClamped(disbursed, 1)

	principal := decimal.RequireFromString("250000")
	rate := decimal.RequireFromString("0.05")
	term := 12

	quote, _ := loan.PriceLoan(principal, rate, term)
	schedule, _ := loan.BuildSchedule(principal, rate, term, firstDue)

	active := loan.Entity{
		ID:                 "10000000-0000-0000-0000-000000000001",
		Reference:          "LN1A2B3C4D",
		ApplicationID:      "20000000-0000-0000-0000-000000000001",
		UserID:             DemoUserID,
		PrincipalAmount:    principal,
		InterestRate:       rate,
		TermMonths:         term,
		MonthlyPayment:     quote.MonthlyPayment,
		TotalPayable:       quote.TotalPayable,
		OutstandingBalance: principal,
		PaymentsRemaining:  term,
		Status:             loan.StatusActive,
		DisbursedAt:        disbursed,
		FirstPaymentDate:   firstDue,
		MaturityDate:       loan.AddMonthsClamped(disbursed, term),
		CreatedAt:          disbursed,
		UpdatedAt:          disbursed,
	}

	// The first three installments are settled in the fixtures.
	paid := 3
	for i, entry := range schedule {
		item := loan.Repayment{
			ID:                active.ID + "-r" + entry.DueDate.Format("200601"),
			LoanID:            active.ID,
			UserID:            DemoUserID,
			InstallmentNumber: entry.InstallmentNumber,
			Amount:            entry.Payment,
			PrincipalAmount:   entry.Principal,
			InterestAmount:    entry.Interest,
			DueDate:           entry.DueDate,
			Status:            loan.RepaymentPending,
			CreatedAt:         disbursed,
			UpdatedAt:         disbursed,
		}
		if i < paid {
			paidAt := entry.DueDate
			item.Status = loan.RepaymentPaid
			item.AmountPaid = entry.Payment
			item.PaidAt = &paidAt

			active.OutstandingBalance = active.OutstandingBalance.Sub(entry.Principal)
			active.PaymentsRemaining--

			s.payments = append(s.payments, loan.Payment{
				ID:          active.ID + "-p" + entry.DueDate.Format("200601"),
				Reference:   "PY" + entry.DueDate.Format("060102") + "01",
				LoanID:      active.ID,
				UserID:      DemoUserID,
				Amount:      entry.Payment,
				Currency:    "NGN",
				Method:      "card",
				Status:      loan.PaymentSuccessful,
				InitiatedAt: paidAt,
				ConfirmedAt: &paidAt,
			})
		}
		s.repayments = append(s.repayments, item)
	}

	completedDisbursed := loan.AddMonthsClamped(now, -14)
	completedPrincipal := decimal.RequireFromString("50000")
	completedQuote, _ := loan.PriceLoan(completedPrincipal, rate, 6)
	s.loans = append(s.loans, active, loan.Entity{
		ID:                 "10000000-0000-0000-0000-000000000002",
		Reference:          "LN5E6F7A8B",
		ApplicationID:      "20000000-0000-0000-0000-000000000002",
		UserID:             DemoUserID,
		PrincipalAmount:    completedPrincipal,
		InterestRate:       rate,
		TermMonths:         6,
		MonthlyPayment:     completedQuote.MonthlyPayment,
		TotalPayable:       completedQuote.TotalPayable,
		OutstandingBalance: decimal.Zero,
		PaymentsRemaining:  0,
		Status:             loan.StatusCompleted,
		DisbursedAt:        completedDisbursed,
		FirstPaymentDate:   loan.AddMonthsClamped(completedDisbursed, 1),
		MaturityDate:       loan.AddMonthsClamped(completedDisbursed, 6),
		CreatedAt:          completedDisbursed,
		UpdatedAt:          loan.AddMonthsClamped(completedDisbursed, 6),
	})

	s.applications = append(s.applications, application.Entity{
		ID:               "20000000-0000-0000-0000-000000000003",
		Reference:        "AP9C0D1E2F",
		UserID:           DemoUserID,
		Amount:           decimal.RequireFromString("100000"),
		Purpose:          "working capital",
		TermMonths:       9,
		EmploymentStatus: "self_employed",
		MonthlyIncome:    decimal.RequireFromString("180000"),
		Guarantor: application.Guarantor{
			Name:         "Adaeze Okafor",
			Phone:        "+2348012345678",
			Email:        "adaeze@example.com",
			Relationship: "sibling",
		},
		Status:    application.StatusPending,
		CreatedAt: now.AddDate(0, 0, -2),
		UpdatedAt: now.AddDate(0, 0, -2),
	})

	s.notifications = append(s.notifications, notification.Entity{
		ID:        "30000000-0000-0000-0000-000000000001",
		UserID:    DemoUserID,
		Kind:      "loan_disbursed",
		Title:     "Your loan has been disbursed",
		Message:   "Your loan LN1A2B3C4D has been disbursed.",
		Status:    notification.StatusSent,
		CreatedAt: disbursed,
	})
}

func (s *Store) Create(ctx context.Context, in loan.CreateInput) (*loan.Entity, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return nil, ErrReadOnly
}

func (s *Store) GetByID(ctx context.Context, id string) (*loan.Entity, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.loans {
		if s.loans[i].ID == id {
			out := s.loans[i]
			return &out, nil
		}
	}
	return nil, errors.New("no rows in result set")
}

func (s *Store) List(ctx context.Context, f loan.ListFilter) ([]loan.Entity, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]loan.Entity, 0)
	for _, item := range s.loans {
		if f.UserID != "" && item.UserID != f.UserID {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), nil
}

func (s *Store) UpdateBalance(ctx context.Context, loanID string, newBalance decimal.Decimal, paymentsRemaining int) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	return ErrReadOnly
}

func (s *Store) UpdateStatus(ctx context.Context, loanID, status string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	return ErrReadOnly
}

func (s *Store) GetPortfolioAnalytics(ctx context.Context) (*loan.PortfolioAnalytics, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := &loan.PortfolioAnalytics{
		TotalPrincipal:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalRepaid:      decimal.Zero,
	}
	for _, item := range s.loans {
		out.TotalLoans++
		switch item.Status {
		case loan.StatusActive:
			out.ActiveLoans++
		case loan.StatusOverdue:
			out.OverdueLoans++
		case loan.StatusCompleted:
			out.CompletedLoans++
		case loan.StatusDefaulted:
			out.DefaultedLoans++
		}
		out.TotalPrincipal = out.TotalPrincipal.Add(item.PrincipalAmount)
		out.TotalOutstanding = out.TotalOutstanding.Add(item.OutstandingBalance)
		out.TotalRepaid = out.TotalRepaid.Add(item.PrincipalAmount.Sub(item.OutstandingBalance))
	}
	if out.TotalPrincipal.Sign() > 0 {
		ratio, _ := out.TotalRepaid.Div(out.TotalPrincipal).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		out.RepaymentRatePercent = ratio
	}
	return out, nil
}

func (s *Store) CreateBatch(ctx context.Context, items []loan.Repayment) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	return ErrReadOnly
}

func (s *Store) ListByLoan(ctx context.Context, loanID string) ([]loan.Repayment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]loan.Repayment, 0)
	for _, item := range s.repayments {
		if item.LoanID == loanID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out, nil
}

func (s *Store) ListRepayments(ctx context.Context, f loan.RepaymentFilter) ([]loan.Repayment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]loan.Repayment, 0)
	for _, item := range s.repayments {
		if f.UserID != "" && item.UserID != f.UserID {
			continue
		}
		if f.LoanID != "" && item.LoanID != f.LoanID {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return paginate(out, f.Limit, f.Offset), nil
}

func (s *Store) ApplyPayment(ctx context.Context, repaymentID string, amountPaid decimal.Decimal, status string, paidAt *time.Time) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	return ErrReadOnly
}

func (s *Store) MarkOverdue(ctx context.Context, repaymentID string, lateFee decimal.Decimal) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	return ErrReadOnly
}

func (s *Store) ListDueBetween(ctx context.Context, from, to time.Time) ([]loan.Repayment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]loan.Repayment, 0)
	for _, item := range s.repayments {
		if item.Status != loan.RepaymentPending && item.Status != loan.RepaymentPartial {
			continue
		}
		if item.DueDate.Before(from) || item.DueDate.After(to) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Store) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]loan.Repayment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]loan.Repayment, 0)
	for _, item := range s.repayments {
		if item.Status == loan.RepaymentPaid {
			continue
		}
		if !item.DueDate.Before(cutoff) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Store) CreatePayment(ctx context.Context, in loan.CreatePaymentInput) (*loan.Payment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return nil, ErrReadOnly
}

func (s *Store) ListPaymentsByUser(ctx context.Context, userID string, limit, offset int32) ([]loan.Payment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]loan.Payment, 0)
	for _, item := range s.payments {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InitiatedAt.After(out[j].InitiatedAt) })
	return paginate(out, limit, offset), nil
}

func (s *Store) ListNotificationsByUser(ctx context.Context, userID string, limit, offset int32) ([]notification.Entity, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]notification.Entity, 0)
	for _, item := range s.notifications {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	return ErrReadOnly
}

// Enqueue satisfies the outbox interface by dropping the event. Mock mode
// has no worker to drain a queue.
func (s *Store) Enqueue(ctx context.Context, topic string, payload []byte) error {
	return ctx.Err()
}

func (s *Store) GetBorrowerProfile(ctx context.Context, userID string) (*application.BorrowerProfile, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if userID != DemoUserID {
		return nil, errors.New("no rows in result set")
	}
	return &application.BorrowerProfile{
		BVNPresent:       true,
		KYCVerified:      true,
		EmploymentStatus: "self_employed",
		MonthlyIncome:    decimal.RequireFromString("180000"),
	}, nil
}

func (s *Store) GetRecipient(ctx context.Context, userID string) (*notification.Recipient, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if userID != DemoUserID {
		return nil, errors.New("no rows in result set")
	}
	return &notification.Recipient{Email: "demo@quickfund.ng", FirstName: "Demo"}, nil
}

// Summary feeds credit scoring from the canned loan fixtures.
func (s *Store) Summary(ctx context.Context, userID string) (completed, defaulted, total int64, monthlyObligations decimal.Decimal, err error) {
	if waitErr := s.wait(ctx); waitErr != nil {
		return 0, 0, 0, decimal.Zero, waitErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	monthlyObligations = decimal.Zero
	for _, item := range s.loans {
		if item.UserID != userID {
			continue
		}
		total++
		switch item.Status {
		case loan.StatusCompleted:
			completed++
		case loan.StatusDefaulted:
			defaulted++
		case loan.StatusActive, loan.StatusOverdue:
			monthlyObligations = monthlyObligations.Add(item.MonthlyPayment)
		}
	}
	return completed, defaulted, total, monthlyObligations, nil
}

// Interface views. The loan and repayment repositories both declare List, so
// the store is split into one adapter per repository interface.

type LoanRepo struct{ s *Store }

func (s *Store) Loans() *LoanRepo { return &LoanRepo{s: s} }

func (r *LoanRepo) Create(ctx context.Context, in loan.CreateInput) (*loan.Entity, error) {
	return r.s.Create(ctx, in)
}

func (r *LoanRepo) GetByID(ctx context.Context, id string) (*loan.Entity, error) {
	return r.s.GetByID(ctx, id)
}

func (r *LoanRepo) List(ctx context.Context, f loan.ListFilter) ([]loan.Entity, error) {
	return r.s.List(ctx, f)
}

func (r *LoanRepo) UpdateBalance(ctx context.Context, loanID string, newBalance decimal.Decimal, paymentsRemaining int) error {
	return r.s.UpdateBalance(ctx, loanID, newBalance, paymentsRemaining)
}

func (r *LoanRepo) UpdateStatus(ctx context.Context, loanID, status string) error {
	return r.s.UpdateStatus(ctx, loanID, status)
}

func (r *LoanRepo) GetPortfolioAnalytics(ctx context.Context) (*loan.PortfolioAnalytics, error) {
	return r.s.GetPortfolioAnalytics(ctx)
}

type RepaymentRepo struct{ s *Store }

func (s *Store) Repayments() *RepaymentRepo { return &RepaymentRepo{s: s} }

func (r *RepaymentRepo) CreateBatch(ctx context.Context, items []loan.Repayment) error {
	return r.s.CreateBatch(ctx, items)
}

func (r *RepaymentRepo) ListByLoan(ctx context.Context, loanID string) ([]loan.Repayment, error) {
	return r.s.ListByLoan(ctx, loanID)
}

func (r *RepaymentRepo) List(ctx context.Context, f loan.RepaymentFilter) ([]loan.Repayment, error) {
	return r.s.ListRepayments(ctx, f)
}

func (r *RepaymentRepo) ApplyPayment(ctx context.Context, repaymentID string, amountPaid decimal.Decimal, status string, paidAt *time.Time) error {
	return r.s.ApplyPayment(ctx, repaymentID, amountPaid, status, paidAt)
}

func (r *RepaymentRepo) MarkOverdue(ctx context.Context, repaymentID string, lateFee decimal.Decimal) error {
	return r.s.MarkOverdue(ctx, repaymentID, lateFee)
}

func (r *RepaymentRepo) ListDueBetween(ctx context.Context, from, to time.Time) ([]loan.Repayment, error) {
	return r.s.ListDueBetween(ctx, from, to)
}

func (r *RepaymentRepo) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]loan.Repayment, error) {
	return r.s.ListUnpaidDueBefore(ctx, cutoff)
}

type PaymentRepo struct{ s *Store }

func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{s: s} }

func (r *PaymentRepo) Create(ctx context.Context, in loan.CreatePaymentInput) (*loan.Payment, error) {
	return r.s.CreatePayment(ctx, in)
}

func (r *PaymentRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]loan.Payment, error) {
	return r.s.ListPaymentsByUser(ctx, userID, limit, offset)
}

type ApplicationRepo struct{ s *Store }

func (s *Store) Applications() *ApplicationRepo { return &ApplicationRepo{s: s} }

func (r *ApplicationRepo) Create(ctx context.Context, in application.CreateInput) (*application.Entity, error) {
	if err := r.s.wait(ctx); err != nil {
		return nil, err
	}
	return nil, ErrReadOnly
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*application.Entity, error) {
	if err := r.s.wait(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.applications {
		if r.s.applications[i].ID == id {
			out := r.s.applications[i]
			return &out, nil
		}
	}
	return nil, errors.New("no rows in result set")
}

func (r *ApplicationRepo) List(ctx context.Context, f application.ListFilter) ([]application.Entity, error) {
	if err := r.s.wait(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]application.Entity, 0)
	for _, item := range r.s.applications {
		if f.UserID != "" && item.UserID != f.UserID {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *ApplicationRepo) UpdateDecision(ctx context.Context, id string, in application.DecisionInput) error {
	if err := r.s.wait(ctx); err != nil {
		return err
	}
	return ErrReadOnly
}

func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if err := r.s.wait(ctx); err != nil {
		return err
	}
	return ErrReadOnly
}

func (r *ApplicationRepo) CountByUserAndStatus(ctx context.Context, userID, status string) (int64, error) {
	if err := r.s.wait(ctx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, item := range r.s.applications {
		if item.UserID == userID && item.Status == status {
			n++
		}
	}
	return n, nil
}

type NotificationRepo struct{ s *Store }

func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }

func (r *NotificationRepo) Create(ctx context.Context, in notification.CreateInput) (*notification.Entity, error) {
	if err := r.s.wait(ctx); err != nil {
		return nil, err
	}
	return nil, ErrReadOnly
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]notification.Entity, error) {
	return r.s.ListNotificationsByUser(ctx, userID, limit, offset)
}

func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID string) error {
	return r.s.MarkNotificationRead(ctx, notificationID, userID)
}

func paginate[T any](items []T, limit, offset int32) []T {
	if offset < 0 {
		offset = 0
	}
	if int(offset) >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items
}
