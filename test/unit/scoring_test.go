package unit

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lessismore22/Quickfund/internal/domain/application"
)

func TestCreditScoreStrongApplicant(t *testing.T) {
	score := application.CreditScore(application.ScoreInput{
		MonthlyIncome:      decimal.RequireFromString("600000"),
		RequestedAmount:    decimal.RequireFromString("100000"),
		MonthlyObligations: decimal.Zero,
		CompletedLoans:     3,
		HasLoanHistory:     true,
		EmploymentStatus:   "employed",
		BVNPresent:         true,
		KYCVerified:        true,
	})
	// income 550*0.3 + history 550*0.25 + debt 550*0.2 + employment 500*0.15
	// + verification 550*0.1, on top of the 300 base.
	if score != 842 {
		t.Fatalf("strong applicant score = %d, want 842", score)
	}

	status, fraction := application.Decide(score)
	if status != application.StatusApproved || !fraction.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("strong applicant decision = %s %s, want full approval", status, fraction)
	}
}

func TestCreditScoreDefaultedHistoryDragsScore(t *testing.T) {
	in := application.ScoreInput{
		MonthlyIncome:      decimal.RequireFromString("100000"),
		RequestedAmount:    decimal.RequireFromString("150000"),
		MonthlyObligations: decimal.RequireFromString("90000"),
		DefaultedLoans:     1,
		HasLoanHistory:     true,
		EmploymentStatus:   "unemployed",
	}
	score := application.CreditScore(in)

	status, _ := application.Decide(score)
	if status != application.StatusRejected {
		t.Fatalf("defaulted applicant got %s with score %d, want rejection", status, score)
	}
}

func TestCreditScoreClampedToRange(t *testing.T) {
	floor := application.CreditScore(application.ScoreInput{})
	if floor < 300 || floor > 850 {
		t.Fatalf("empty-profile score %d outside 300-850", floor)
	}
}

func TestDecideBands(t *testing.T) {
	cases := []struct {
		score    int
		status   string
		fraction string
	}{
		{700, application.StatusApproved, "1"},
		{650, application.StatusApproved, "1"},
		{600, application.StatusApproved, "0.7"},
		{550, application.StatusApproved, "0.7"},
		{500, application.StatusApproved, "0.5"},
		{450, application.StatusApproved, "0.5"},
		{449, application.StatusRejected, "0"},
		{300, application.StatusRejected, "0"},
	}
	for _, tc := range cases {
		status, fraction := application.Decide(tc.score)
		if status != tc.status || !fraction.Equal(decimal.RequireFromString(tc.fraction)) {
			t.Fatalf("Decide(%d) = %s %s, want %s %s", tc.score, status, fraction, tc.status, tc.fraction)
		}
	}
}

func TestSuggestInterestRateBands(t *testing.T) {
	base := decimal.RequireFromString("0.05")
	cases := []struct {
		score int
		want  string
	}{
		{800, "0.05"},
		{750, "0.05"},
		{700, "0.06"},
		{650, "0.075"},
		{600, "0.1"},
		{500, "0.15"},
	}
	for _, tc := range cases {
		got := application.SuggestInterestRate(tc.score, base)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("SuggestInterestRate(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
