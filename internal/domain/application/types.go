package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusDisbursed = "disbursed"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusDefaulted = "defaulted"
)

// Terminal applications never change status again.
var transitions = map[string][]string{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusDisbursed},
	StatusDisbursed: {StatusActive},
	StatusActive:    {StatusCompleted, StatusDefaulted},
	StatusRejected:  {},
	StatusCompleted: {},
	StatusDefaulted: {},
}

func CanTransition(current, next string) bool {
	for _, s := range transitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

type Guarantor struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}

type Entity struct {
	ID               string          `json:"id"`
	Reference        string          `json:"reference"`
	UserID           string          `json:"user_id"`
	Amount           decimal.Decimal `json:"amount"`
	Purpose          string          `json:"purpose"`
	TermMonths       int             `json:"term_months"`
	EmploymentStatus string          `json:"employment_status"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	Guarantor        Guarantor       `json:"guarantor"`
	Status           string          `json:"status"`
	CreditScore      int             `json:"credit_score,omitempty"`
	ApprovedAmount   decimal.Decimal `json:"approved_amount"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	ReviewedBy       string          `json:"reviewed_by,omitempty"`
	DecidedAt        *time.Time      `json:"decided_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type CreateInput struct {
	Reference        string
	UserID           string
	Amount           decimal.Decimal
	Purpose          string
	TermMonths       int
	EmploymentStatus string
	MonthlyIncome    decimal.Decimal
	Guarantor        Guarantor
}

type DecisionInput struct {
	Status          string
	CreditScore     int
	ApprovedAmount  decimal.Decimal
	InterestRate    decimal.Decimal
	RejectionReason string
	ReviewedBy      string
}

type ListFilter struct {
	UserID string
	Status string
	Limit  int32
	Offset int32
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	UpdateDecision(ctx context.Context, id string, in DecisionInput) error
	UpdateStatus(ctx context.Context, id, status string) error
	CountByUserAndStatus(ctx context.Context, userID, status string) (int64, error)
}
