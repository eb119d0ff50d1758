package application

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Step is a position in the four-step application wizard.
type Step int

const (
	StepLoanDetails Step = iota + 1
	StepPersonalInfo
	StepGuarantorInfo
	StepReview
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepLoanDetails:
		return "loan_details"
	case StepPersonalInfo:
		return "personal_info"
	case StepGuarantorInfo:
		return "guarantor_info"
	case StepReview:
		return "review"
	case StepSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormData accumulates the applicant's answers across the wizard steps.
type FormData struct {
	Amount           decimal.Decimal `json:"amount"`
	Purpose          string          `json:"purpose"`
	TermMonths       int             `json:"term_months"`
	EmploymentStatus string          `json:"employment_status"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	Guarantor        Guarantor       `json:"guarantor"`
	TermsAccepted    bool            `json:"terms_accepted"`
}

// Creator is the single external collaborator the wizard calls on submission.
type Creator interface {
	Submit(ctx context.Context, userID string, data FormData) (*Entity, error)
}

// Wizard is the ordered multi-step application form. Forward movement is
// gated by per-step validation; backward movement never validates. Submitted
// is terminal.
type Wizard struct {
	step Step
	data FormData
}

func NewWizard() *Wizard {
	return &Wizard{step: StepLoanDetails}
}

func (w *Wizard) CurrentStep() Step {
	return w.step
}

func (w *Wizard) Data() FormData {
	return w.data
}

func (w *Wizard) SetData(data FormData) {
	w.data = data
}

// Next validates the current step and advances on success. A failed
// validation leaves the step unchanged and returns the field errors.
func (w *Wizard) Next() []FieldError {
	if w.step >= StepReview {
		return nil
	}
	if errs := ValidateStep(w.step, w.data); len(errs) > 0 {
		return errs
	}
	w.step++
	return nil
}

// Prev moves back one step without validating. It reports whether the
// position changed.
func (w *Wizard) Prev() bool {
	if w.step <= StepLoanDetails || w.step == StepSubmitted {
		return false
	}
	w.step--
	return true
}

// Submit creates the application through the collaborator. Only legal from
// Review; on failure the wizard stays in Review and the error is returned to
// be surfaced inline. No retry is attempted.
func (w *Wizard) Submit(ctx context.Context, creator Creator, userID string) (*Entity, error) {
	if w.step != StepReview {
		return nil, ErrNotReady
	}
	created, err := creator.Submit(ctx, userID, w.data)
	if err != nil {
		return nil, err
	}
	w.step = StepSubmitted
	return created, nil
}

// ValidateStep checks field completeness for one step.
func ValidateStep(step Step, data FormData) []FieldError {
	var errs []FieldError
	switch step {
	case StepLoanDetails:
		if data.Amount.Sign() <= 0 {
			errs = append(errs, FieldError{Field: "amount", Message: "must be greater than zero"})
		}
		if strings.TrimSpace(data.Purpose) == "" {
			errs = append(errs, FieldError{Field: "purpose", Message: "required"})
		}
		if data.TermMonths < 1 {
			errs = append(errs, FieldError{Field: "term_months", Message: "must be at least 1"})
		}
	case StepPersonalInfo:
		if strings.TrimSpace(data.EmploymentStatus) == "" {
			errs = append(errs, FieldError{Field: "employment_status", Message: "required"})
		}
		if data.MonthlyIncome.Sign() <= 0 {
			errs = append(errs, FieldError{Field: "monthly_income", Message: "must be greater than zero"})
		}
	case StepGuarantorInfo:
		if strings.TrimSpace(data.Guarantor.Name) == "" {
			errs = append(errs, FieldError{Field: "guarantor.name", Message: "required"})
		}
		if strings.TrimSpace(data.Guarantor.Phone) == "" {
			errs = append(errs, FieldError{Field: "guarantor.phone", Message: "required"})
		}
		if strings.TrimSpace(data.Guarantor.Email) == "" {
			errs = append(errs, FieldError{Field: "guarantor.email", Message: "required"})
		}
		if strings.TrimSpace(data.Guarantor.Relationship) == "" {
			errs = append(errs, FieldError{Field: "guarantor.relationship", Message: "required"})
		}
	case StepReview:
		if !data.TermsAccepted {
			errs = append(errs, FieldError{Field: "terms_accepted", Message: "terms must be accepted"})
		}
	}
	return errs
}

// ValidateAll runs every gate up to and including Review, for submissions
// that arrive as a single payload.
func ValidateAll(data FormData) []FieldError {
	var errs []FieldError
	for step := StepLoanDetails; step <= StepReview; step++ {
		errs = append(errs, ValidateStep(step, data)...)
	}
	return errs
}
