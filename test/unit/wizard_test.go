package unit

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lessismore22/Quickfund/internal/domain/application"
)

type fakeCreator struct {
	created []application.FormData
	err     error
}

func (c *fakeCreator) Submit(_ context.Context, _ string, data application.FormData) (*application.Entity, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.created = append(c.created, data)
	return &application.Entity{ID: "app-1", Status: application.StatusPending}, nil
}

func completeForm() application.FormData {
	return application.FormData{
		Amount:           decimal.RequireFromString("50000"),
		Purpose:          "inventory restock",
		TermMonths:       6,
		EmploymentStatus: "self_employed",
		MonthlyIncome:    decimal.RequireFromString("120000"),
		Guarantor: application.Guarantor{
			Name:         "Ngozi Eze",
			Phone:        "+2348022222222",
			Email:        "ngozi@example.com",
			Relationship: "friend",
		},
		TermsAccepted: true,
	}
}

func TestWizardNextBlockedOnEmptyPurpose(t *testing.T) {
	w := application.NewWizard()
	data := completeForm()
	data.Purpose = ""
	w.SetData(data)

	errs := w.Next()
	if len(errs) == 0 {
		t.Fatalf("expected validation errors")
	}
	if w.CurrentStep() != application.StepLoanDetails {
		t.Fatalf("step advanced to %s despite validation failure", w.CurrentStep())
	}
	if errs[0].Field != "purpose" {
		t.Fatalf("unexpected field error: %+v", errs[0])
	}
}

func TestWizardPrevAlwaysSucceeds(t *testing.T) {
	w := application.NewWizard()
	// Invalid data on purpose: Prev must not validate.
	w.SetData(application.FormData{})

	if w.Prev() {
		t.Fatalf("prev from the first step should report no movement")
	}

	valid := completeForm()
	w.SetData(valid)
	for w.CurrentStep() != application.StepReview {
		if errs := w.Next(); len(errs) > 0 {
			t.Fatalf("unexpected validation errors: %+v", errs)
		}
	}

	w.SetData(application.FormData{})
	for step := application.StepReview; step > application.StepLoanDetails; step-- {
		if !w.Prev() {
			t.Fatalf("prev from %s failed", step)
		}
	}
	if w.CurrentStep() != application.StepLoanDetails {
		t.Fatalf("expected to be back at step 1, got %s", w.CurrentStep())
	}
}

func TestWizardSubmitOnlyFromReview(t *testing.T) {
	w := application.NewWizard()
	w.SetData(completeForm())

	if _, err := w.Submit(context.Background(), &fakeCreator{}, "user-1"); !errors.Is(err, application.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestWizardFullWalkCreatesOneApplication(t *testing.T) {
	w := application.NewWizard()
	w.SetData(completeForm())

	for w.CurrentStep() != application.StepReview {
		if errs := w.Next(); len(errs) > 0 {
			t.Fatalf("unexpected validation errors at %s: %+v", w.CurrentStep(), errs)
		}
	}

	creator := &fakeCreator{}
	created, err := w.Submit(context.Background(), creator, "user-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.Status != application.StatusPending {
		t.Fatalf("expected pending application, got %s", created.Status)
	}
	if len(creator.created) != 1 {
		t.Fatalf("expected exactly one created record, got %d", len(creator.created))
	}
	if w.CurrentStep() != application.StepSubmitted {
		t.Fatalf("expected Submitted, got %s", w.CurrentStep())
	}
}

func TestWizardSubmitFailureStaysInReview(t *testing.T) {
	w := application.NewWizard()
	w.SetData(completeForm())
	for w.CurrentStep() != application.StepReview {
		if errs := w.Next(); len(errs) > 0 {
			t.Fatalf("unexpected validation errors: %+v", errs)
		}
	}

	creator := &fakeCreator{err: errors.New("backend unavailable")}
	if _, err := w.Submit(context.Background(), creator, "user-1"); err == nil {
		t.Fatalf("expected submit error")
	}
	if w.CurrentStep() != application.StepReview {
		t.Fatalf("expected to remain in Review, got %s", w.CurrentStep())
	}

	// A later retry with a working collaborator still goes through.
	working := &fakeCreator{}
	if _, err := w.Submit(context.Background(), working, "user-1"); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if w.CurrentStep() != application.StepSubmitted {
		t.Fatalf("expected Submitted after retry, got %s", w.CurrentStep())
	}
}

func TestWizardNoForwardMovementPastReview(t *testing.T) {
	w := application.NewWizard()
	w.SetData(completeForm())
	for w.CurrentStep() != application.StepReview {
		if errs := w.Next(); len(errs) > 0 {
			t.Fatalf("unexpected validation errors: %+v", errs)
		}
	}
	if errs := w.Next(); errs != nil {
		t.Fatalf("next at Review returned errors: %+v", errs)
	}
	if w.CurrentStep() != application.StepReview {
		t.Fatalf("next advanced past Review to %s", w.CurrentStep())
	}
}
