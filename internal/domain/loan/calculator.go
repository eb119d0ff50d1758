package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned for non-positive principals, terms below one
// month, or negative rates.
var ErrInvalidInput = errors.New("invalid_calculator_input")

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// Quote is the result of pricing a fixed-payment loan.
type Quote struct {
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalPayable   decimal.Decimal `json:"total_payable"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
}

// MonthlyPayment prices a fixed-payment loan with the standard annuity formula
// payment = P*r*(1+r)^n / ((1+r)^n - 1), where r is the monthly rate. A zero
// rate degenerates to P/n. The annual rate is a fraction (0.05 means 5%).
func MonthlyPayment(principal, annualRate decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if principal.Sign() <= 0 || termMonths < 1 || annualRate.Sign() < 0 {
		return decimal.Zero, ErrInvalidInput
	}

	n := decimal.NewFromInt(int64(termMonths))
	if annualRate.IsZero() {
		return principal.DivRound(n, 2), nil
	}

	monthlyRate := annualRate.Div(twelve)
	factor := one.Add(monthlyRate).Pow(n)
	denom := factor.Sub(one)
	// Unreachable for r > 0 and n >= 1, guarded anyway.
	if denom.IsZero() {
		return decimal.Zero, ErrInvalidInput
	}

	payment := principal.Mul(monthlyRate).Mul(factor).Div(denom)
	return payment.Round(2), nil
}

// PriceLoan computes the monthly payment plus the total payable and total
// interest over the full term.
func PriceLoan(principal, annualRate decimal.Decimal, termMonths int) (*Quote, error) {
	payment, err := MonthlyPayment(principal, annualRate, termMonths)
	if err != nil {
		return nil, err
	}
	total := payment.Mul(decimal.NewFromInt(int64(termMonths)))
	return &Quote{
		MonthlyPayment: payment,
		TotalPayable:   total,
		TotalInterest:  total.Sub(principal),
	}, nil
}

// ScheduleEntry is one installment in an amortization schedule.
type ScheduleEntry struct {
	InstallmentNumber int             `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	Payment           decimal.Decimal `json:"payment"`
	Principal         decimal.Decimal `json:"principal"`
	Interest          decimal.Decimal `json:"interest"`
	Balance           decimal.Decimal `json:"balance"`
}

// BuildSchedule generates the full amortization schedule. The payment column
// is constant; the final installment's principal component absorbs the
// accumulated rounding so the principal components sum exactly to the
// principal and the closing balance is zero.
func BuildSchedule(principal, annualRate decimal.Decimal, termMonths int, firstDueDate time.Time) ([]ScheduleEntry, error) {
	payment, err := MonthlyPayment(principal, annualRate, termMonths)
	if err != nil {
		return nil, err
	}

	monthlyRate := decimal.Zero
	if !annualRate.IsZero() {
		monthlyRate = annualRate.Div(twelve)
	}

	entries := make([]ScheduleEntry, 0, termMonths)
	balance := principal
	for month := 1; month <= termMonths; month++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)
		balance = balance.Sub(principalPart)

		if month == termMonths && !balance.IsZero() {
			principalPart = principalPart.Add(balance)
			balance = decimal.Zero
		}
		if balance.Sign() < 0 {
			balance = decimal.Zero
		}

		entries = append(entries, ScheduleEntry{
			InstallmentNumber: month,
			DueDate:           AddMonthsClamped(firstDueDate, month-1),
			Payment:           payment,
			Principal:         principalPart.Round(2),
			Interest:          interest,
			Balance:           balance.Round(2),
		})
	}

	return entries, nil
}

// AddMonthsClamped advances a date by whole months, clamping the day of month
// so Jan 31 + 1 month lands on Feb 28/29 instead of rolling into March.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	m = ((m - 1) % 12) + 1
	if m < 1 {
		m += 12
		year--
	}

	lastDay := daysIn(time.Month(m), year)
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, time.Month(m), day, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
