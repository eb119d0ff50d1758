package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lessismore22/Quickfund/internal/db"
	"github.com/lessismore22/Quickfund/internal/domain/application"
	loandomain "github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/lessismore22/Quickfund/internal/repository/postgres"
	"github.com/lessismore22/Quickfund/test/integration/testutil"
)

func TestPostgresRepositoriesLoanLifecycle(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	authRepo := db.NewAuthRepository(pool)
	appRepo := postgres.NewApplicationRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	repaymentRepo := postgres.NewRepaymentRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)

	user, err := authRepo.CreateUser(ctx, db.CreateUserInput{
		Email:            "integration@example.com",
		PasswordHash:     "x",
		FirstName:        "Inte",
		LastName:         "Gration",
		BVN:              "12345678901",
		EmploymentStatus: "employed",
		MonthlyIncome:    decimal.RequireFromString("180000"),
		Role:             "borrower",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	app, err := appRepo.Create(ctx, application.CreateInput{
		Reference:        "APTEST0001",
		UserID:           user.ID,
		Amount:           decimal.RequireFromString("100000"),
		Purpose:          "working capital",
		TermMonths:       6,
		EmploymentStatus: "employed",
		MonthlyIncome:    decimal.RequireFromString("180000"),
		Guarantor: application.Guarantor{
			Name:         "Adaeze Okafor",
			Phone:        "+2348012345678",
			Email:        "adaeze@example.com",
			Relationship: "sibling",
		},
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if app.Status != application.StatusPending {
		t.Fatalf("new application status = %s", app.Status)
	}

	if err := appRepo.UpdateDecision(ctx, app.ID, application.DecisionInput{
		Status:         application.StatusApproved,
		CreditScore:    710,
		ApprovedAmount: decimal.RequireFromString("100000"),
		InterestRate:   decimal.RequireFromString("0.06"),
		ReviewedBy:     user.ID,
	}); err != nil {
		t.Fatalf("update decision: %v", err)
	}
	decided, err := appRepo.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if decided.Status != application.StatusApproved || decided.CreditScore != 710 {
		t.Fatalf("decision not persisted: %+v", decided)
	}
	if decided.DecidedAt == nil {
		t.Fatalf("decided_at not set")
	}

	now := time.Now().UTC()
	quote, err := loandomain.PriceLoan(decimal.RequireFromString("100000"), decimal.RequireFromString("0.06"), 6)
	if err != nil {
		t.Fatalf("price loan: %v", err)
	}
	lo, err := loanRepo.Create(ctx, loandomain.CreateInput{
		Reference:        "LNTEST0001",
		ApplicationID:    app.ID,
		UserID:           user.ID,
		PrincipalAmount:  decimal.RequireFromString("100000"),
		InterestRate:     decimal.RequireFromString("0.06"),
		TermMonths:       6,
		MonthlyPayment:   quote.MonthlyPayment,
		TotalPayable:     quote.TotalPayable,
		DisbursedAt:      now,
		FirstPaymentDate: now.AddDate(0, 1, 0),
		MaturityDate:     now.AddDate(0, 6, 0),
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	if lo.Status != loandomain.StatusActive {
		t.Fatalf("new loan status = %s", lo.Status)
	}
	if !lo.OutstandingBalance.Equal(lo.PrincipalAmount) {
		t.Fatalf("opening balance = %s", lo.OutstandingBalance)
	}

	schedule, err := loandomain.BuildSchedule(lo.PrincipalAmount, lo.InterestRate, lo.TermMonths, lo.FirstPaymentDate)
	if err != nil {
		t.Fatalf("build schedule: %v", err)
	}
	installments := make([]loandomain.Repayment, 0, len(schedule))
	for _, entry := range schedule {
		installments = append(installments, loandomain.Repayment{
			LoanID:            lo.ID,
			UserID:            user.ID,
			InstallmentNumber: entry.InstallmentNumber,
			Amount:            entry.Payment,
			PrincipalAmount:   entry.Principal,
			InterestAmount:    entry.Interest,
			AmountPaid:        decimal.Zero,
			LateFee:           decimal.Zero,
			DueDate:           entry.DueDate,
			Status:            loandomain.RepaymentPending,
		})
	}
	if err := repaymentRepo.CreateBatch(ctx, installments); err != nil {
		t.Fatalf("create schedule: %v", err)
	}

	stored, err := repaymentRepo.ListByLoan(ctx, lo.ID)
	if err != nil {
		t.Fatalf("list schedule: %v", err)
	}
	if len(stored) != 6 {
		t.Fatalf("stored installments = %d", len(stored))
	}

	paidAt := time.Now().UTC()
	if err := repaymentRepo.ApplyPayment(ctx, stored[0].ID, stored[0].Amount, loandomain.RepaymentPaid, &paidAt); err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	refreshed, err := repaymentRepo.ListByLoan(ctx, lo.ID)
	if err != nil {
		t.Fatalf("list schedule: %v", err)
	}
	if refreshed[0].Status != loandomain.RepaymentPaid || refreshed[0].PaidAt == nil {
		t.Fatalf("payment not applied: %+v", refreshed[0])
	}

	payment, err := paymentRepo.Create(ctx, loandomain.CreatePaymentInput{
		Reference: "PYTEST0001",
		LoanID:    lo.ID,
		UserID:    user.ID,
		Amount:    stored[0].Amount,
		Currency:  "NGN",
		Method:    "card",
		Status:    loandomain.PaymentSuccessful,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if payment.ConfirmedAt == nil {
		t.Fatalf("successful payment has no confirmed_at")
	}

	if err := loanRepo.UpdateBalance(ctx, lo.ID, lo.OutstandingBalance.Sub(stored[0].PrincipalAmount), lo.PaymentsRemaining-1); err != nil {
		t.Fatalf("update balance: %v", err)
	}
	byID, err := loanRepo.GetByID(ctx, lo.ID)
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if byID.PaymentsRemaining != 5 {
		t.Fatalf("payments remaining = %d", byID.PaymentsRemaining)
	}

	analytics, err := loanRepo.GetPortfolioAnalytics(ctx)
	if err != nil {
		t.Fatalf("portfolio analytics: %v", err)
	}
	if analytics.TotalLoans != 1 || analytics.ActiveLoans != 1 {
		t.Fatalf("analytics = %+v", analytics)
	}
}

func TestPostgresOutboxClaimAndComplete(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	outboxRepo := postgres.NewOutboxRepository(pool)

	payload := []byte(`{"user_id":"u-1","type":"loan_approved","variables":{}}`)
	if err := outboxRepo.Enqueue(ctx, "send_notification", payload); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	claimed, err := outboxRepo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(claimed) != 1 {
		t.Fatalf("claimed = %d, want 1", len(claimed))
	}
	if claimed[0].Topic != "send_notification" || claimed[0].Attempts != 1 {
		t.Fatalf("claimed job = %+v", claimed[0])
	}

	// A claimed job is invisible to the next poll.
	again, err := outboxRepo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("claim again: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("reclaimed in-flight job")
	}

	if err := outboxRepo.MarkDone(ctx, claimed[0].ID); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	// Retry scheduling makes the job claimable again once available.
	if err := outboxRepo.Enqueue(ctx, "send_notification", payload); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	claimed, err = outboxRepo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := outboxRepo.MarkRetry(ctx, claimed[0].ID, time.Now().UTC().Add(-time.Second), "smtp down"); err != nil {
		t.Fatalf("mark retry: %v", err)
	}
	claimed, err = outboxRepo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("claim retried: %v", err)
	}
	if len(claimed) != 1 || claimed[0].Attempts != 2 {
		t.Fatalf("retried claim = %+v", claimed)
	}
	if claimed[0].LastError != "smtp down" {
		t.Fatalf("last error = %q", claimed[0].LastError)
	}

	if err := outboxRepo.MarkFailed(ctx, claimed[0].ID, "gave up"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	claimed, err = outboxRepo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("claim after fail: %v", err)
	}
	if len(claimed) != 0 {
		t.Fatalf("failed job reclaimed")
	}
}
