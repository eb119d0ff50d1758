package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusOverdue   = "overdue"
	StatusDefaulted = "defaulted"
)

const (
	RepaymentPending = "pending"
	RepaymentPartial = "partial"
	RepaymentPaid    = "paid"
	RepaymentOverdue = "overdue"
)

const (
	PaymentPending    = "pending"
	PaymentSuccessful = "successful"
	PaymentFailed     = "failed"
)

// loanTransitions is the one-directional status graph. The overdue -> active
// edge is the single cure path.
var loanTransitions = map[string][]string{
	StatusActive:    {StatusCompleted, StatusOverdue, StatusDefaulted},
	StatusOverdue:   {StatusActive, StatusCompleted, StatusDefaulted},
	StatusCompleted: {},
	StatusDefaulted: {},
}

func CanTransition(current, next string) bool {
	for _, s := range loanTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

type Entity struct {
	ID                 string          `json:"id"`
	Reference          string          `json:"reference"`
	ApplicationID      string          `json:"application_id"`
	UserID             string          `json:"user_id"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	TermMonths         int             `json:"term_months"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	TotalPayable       decimal.Decimal `json:"total_payable"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	PaymentsRemaining  int             `json:"payments_remaining"`
	Status             string          `json:"status"`
	DisbursedAt        time.Time       `json:"disbursed_at"`
	FirstPaymentDate   time.Time       `json:"first_payment_date"`
	MaturityDate       time.Time       `json:"maturity_date"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type CreateInput struct {
	Reference        string
	ApplicationID    string
	UserID           string
	PrincipalAmount  decimal.Decimal
	InterestRate     decimal.Decimal
	TermMonths       int
	MonthlyPayment   decimal.Decimal
	TotalPayable     decimal.Decimal
	DisbursedAt      time.Time
	FirstPaymentDate time.Time
	MaturityDate     time.Time
}

type ListFilter struct {
	UserID string
	Status string
	Limit  int32
	Offset int32
}

type Repayment struct {
	ID                string          `json:"id"`
	LoanID            string          `json:"loan_id"`
	UserID            string          `json:"user_id"`
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	InterestAmount    decimal.Decimal `json:"interest_amount"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	LateFee           decimal.Decimal `json:"late_fee"`
	DueDate           time.Time       `json:"due_date"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Outstanding is the amount still owed on an installment including any late
// fee charged so far.
func (r Repayment) Outstanding() decimal.Decimal {
	return r.Amount.Add(r.LateFee).Sub(r.AmountPaid)
}

func (r Repayment) IsOverdue(now time.Time) bool {
	if r.Status == RepaymentPaid {
		return false
	}
	return now.Truncate(24 * time.Hour).After(r.DueDate.Truncate(24 * time.Hour))
}

func (r Repayment) DaysOverdue(now time.Time) int {
	if !r.IsOverdue(now) {
		return 0
	}
	return int(now.Truncate(24 * time.Hour).Sub(r.DueDate.Truncate(24*time.Hour)).Hours() / 24)
}

type Payment struct {
	ID               string          `json:"id"`
	Reference        string          `json:"reference"`
	LoanID           string          `json:"loan_id"`
	UserID           string          `json:"user_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Method           string          `json:"method"`
	GatewayReference string          `json:"gateway_reference"`
	Status           string          `json:"status"`
	FailureReason    string          `json:"failure_reason,omitempty"`
	InitiatedAt      time.Time       `json:"initiated_at"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
}

type CreatePaymentInput struct {
	Reference        string
	LoanID           string
	UserID           string
	Amount           decimal.Decimal
	Currency         string
	Method           string
	GatewayReference string
	Status           string
}

type RepaymentFilter struct {
	UserID string
	LoanID string
	Status string
	Limit  int32
	Offset int32
}

type PortfolioAnalytics struct {
	TotalLoans           int64           `json:"total_loans"`
	ActiveLoans          int64           `json:"active_loans"`
	OverdueLoans         int64           `json:"overdue_loans"`
	CompletedLoans       int64           `json:"completed_loans"`
	DefaultedLoans       int64           `json:"defaulted_loans"`
	TotalPrincipal       decimal.Decimal `json:"total_principal"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	TotalRepaid          decimal.Decimal `json:"total_repaid"`
	RepaymentRatePercent float64         `json:"repayment_rate_percent"`
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	UpdateBalance(ctx context.Context, loanID string, newBalance decimal.Decimal, paymentsRemaining int) error
	UpdateStatus(ctx context.Context, loanID, status string) error
	GetPortfolioAnalytics(ctx context.Context) (*PortfolioAnalytics, error)
}

type RepaymentRepository interface {
	CreateBatch(ctx context.Context, items []Repayment) error
	ListByLoan(ctx context.Context, loanID string) ([]Repayment, error)
	List(ctx context.Context, f RepaymentFilter) ([]Repayment, error)
	ApplyPayment(ctx context.Context, repaymentID string, amountPaid decimal.Decimal, status string, paidAt *time.Time) error
	MarkOverdue(ctx context.Context, repaymentID string, lateFee decimal.Decimal) error
	ListDueBetween(ctx context.Context, from, to time.Time) ([]Repayment, error)
	ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]Repayment, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, in CreatePaymentInput) (*Payment, error)
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]Payment, error)
}
