package application

import "github.com/shopspring/decimal"

// ScoreInput is the borrower profile a credit score is derived from.
type ScoreInput struct {
	MonthlyIncome      decimal.Decimal
	RequestedAmount    decimal.Decimal
	MonthlyObligations decimal.Decimal
	CompletedLoans     int64
	DefaultedLoans     int64
	HasLoanHistory     bool
	EmploymentStatus   string
	BVNPresent         bool
	KYCVerified        bool
}

const baseScore = 300

// CreditScore produces a deterministic 300-850 score. Component weights:
// income 30%, loan history 25%, debt-to-income 20%, employment 15%, identity
// verification 10%.
func CreditScore(in ScoreInput) int {
	score := float64(baseScore)
	score += incomeScore(in) * 0.3
	score += historyScore(in) * 0.25
	score += debtRatioScore(in) * 0.2
	score += employmentScore(in) * 0.15
	score += verificationScore(in) * 0.1

	if score > 850 {
		return 850
	}
	if score < baseScore {
		return baseScore
	}
	return int(score)
}

// Each component is scored on 0-550 so the weighted sum spans the full
// 300-850 range.

func incomeScore(in ScoreInput) float64 {
	if in.MonthlyIncome.Sign() <= 0 {
		return 100
	}
	switch {
	case in.MonthlyIncome.GreaterThanOrEqual(in.RequestedAmount.Mul(decimal.NewFromInt(3))):
		return 550
	case in.MonthlyIncome.GreaterThanOrEqual(in.RequestedAmount.Mul(decimal.NewFromInt(2))):
		return 450
	case in.MonthlyIncome.GreaterThanOrEqual(in.RequestedAmount):
		return 300
	default:
		return 150
	}
}

func historyScore(in ScoreInput) float64 {
	if !in.HasLoanHistory {
		return 300 // neutral for new customers
	}
	if in.DefaultedLoans > 0 {
		return 0
	}
	switch {
	case in.CompletedLoans >= 3:
		return 550
	case in.CompletedLoans >= 1:
		return 450
	default:
		return 300
	}
}

func debtRatioScore(in ScoreInput) float64 {
	if in.MonthlyIncome.Sign() <= 0 {
		return 100
	}
	ratio, _ := in.MonthlyObligations.Div(in.MonthlyIncome).Float64()
	switch {
	case ratio <= 0.3:
		return 550
	case ratio <= 0.5:
		return 400
	case ratio <= 0.7:
		return 250
	default:
		return 100
	}
}

func employmentScore(in ScoreInput) float64 {
	switch in.EmploymentStatus {
	case "employed", "self_employed":
		return 500
	case "student":
		return 300
	default:
		return 150
	}
}

func verificationScore(in ScoreInput) float64 {
	score := 250.0
	if in.BVNPresent {
		score += 150
	}
	if in.KYCVerified {
		score += 150
	}
	return score
}

// Decide maps a credit score to an approval decision and the fraction of the
// requested amount to grant.
func Decide(score int) (status string, approvalFraction decimal.Decimal) {
	switch {
	case score >= 650:
		return StatusApproved, decimal.NewFromInt(1)
	case score >= 550:
		return StatusApproved, decimal.RequireFromString("0.7")
	case score >= 450:
		return StatusApproved, decimal.RequireFromString("0.5")
	default:
		return StatusRejected, decimal.Zero
	}
}
