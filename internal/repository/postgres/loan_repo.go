package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/shopspring/decimal"
)

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, reference, application_id, user_id, principal_amount, interest_rate,
       term_months, monthly_payment, total_payable, outstanding_balance,
       payments_remaining, status, disbursed_at, first_payment_date, maturity_date,
       created_at, updated_at`

func scanLoan(row interface{ Scan(...any) error }) (*loan.Entity, error) {
	out := &loan.Entity{}
	err := row.Scan(
		&out.ID, &out.Reference, &out.ApplicationID, &out.UserID, &out.PrincipalAmount, &out.InterestRate,
		&out.TermMonths, &out.MonthlyPayment, &out.TotalPayable, &out.OutstandingBalance,
		&out.PaymentsRemaining, &out.Status, &out.DisbursedAt, &out.FirstPaymentDate, &out.MaturityDate,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) Create(ctx context.Context, in loan.CreateInput) (*loan.Entity, error) {
	q := `
INSERT INTO loans (
  reference, application_id, user_id, principal_amount, interest_rate, term_months,
  monthly_payment, total_payable, outstanding_balance, payments_remaining,
  disbursed_at, first_payment_date, maturity_date
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$4,$6,$9,$10,$11)
RETURNING ` + loanColumns
	return scanLoan(r.pool.QueryRow(ctx, q,
		in.Reference, in.ApplicationID, in.UserID, in.PrincipalAmount, in.InterestRate, in.TermMonths,
		in.MonthlyPayment, in.TotalPayable, in.DisbursedAt, in.FirstPaymentDate, in.MaturityDate,
	))
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*loan.Entity, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return scanLoan(r.pool.QueryRow(ctx, q, id))
}

func (r *LoanRepository) List(ctx context.Context, f loan.ListFilter) ([]loan.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + loanColumns + ` FROM loans WHERE 1=1`)

	args := []any{}
	argPos := 1
	if strings.TrimSpace(f.UserID) != "" {
		builder.WriteString(" AND user_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.UserID)
		argPos++
	}
	if strings.TrimSpace(f.Status) != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	builder.WriteString(" ORDER BY created_at DESC")
	builder.WriteString(" LIMIT $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Limit)
	argPos++
	builder.WriteString(" OFFSET $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Offset)

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.Entity, 0)
	for rows.Next() {
		item, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) UpdateBalance(ctx context.Context, loanID string, newBalance decimal.Decimal, paymentsRemaining int) error {
	q := `UPDATE loans SET outstanding_balance = $2, payments_remaining = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, loanID, newBalance, paymentsRemaining)
	return err
}

func (r *LoanRepository) UpdateStatus(ctx context.Context, loanID, status string) error {
	q := `UPDATE loans SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, loanID, status)
	return err
}

func (r *LoanRepository) GetPortfolioAnalytics(ctx context.Context) (*loan.PortfolioAnalytics, error) {
	q := `
SELECT
  COUNT(*)::bigint AS total_loans,
  COUNT(*) FILTER (WHERE status = 'active')::bigint AS active_loans,
  COUNT(*) FILTER (WHERE status = 'overdue')::bigint AS overdue_loans,
  COUNT(*) FILTER (WHERE status = 'completed')::bigint AS completed_loans,
  COUNT(*) FILTER (WHERE status = 'defaulted')::bigint AS defaulted_loans,
  COALESCE(SUM(principal_amount), 0) AS total_principal,
  COALESCE(SUM(outstanding_balance), 0) AS total_outstanding
FROM loans
`
	out := &loan.PortfolioAnalytics{}
	err := r.pool.QueryRow(ctx, q).Scan(
		&out.TotalLoans,
		&out.ActiveLoans,
		&out.OverdueLoans,
		&out.CompletedLoans,
		&out.DefaultedLoans,
		&out.TotalPrincipal,
		&out.TotalOutstanding,
	)
	if err != nil {
		return nil, err
	}
	out.TotalRepaid = out.TotalPrincipal.Sub(out.TotalOutstanding)
	if out.TotalPrincipal.Sign() > 0 {
		ratio, _ := out.TotalRepaid.Div(out.TotalPrincipal).Float64()
		out.RepaymentRatePercent = ratio * 100
	}
	return out, nil
}

// Summary feeds credit scoring with the borrower's prior loan record and the
// monthly payments on their open loans.
func (r *LoanRepository) Summary(ctx context.Context, userID string) (completed, defaulted, total int64, monthlyObligations decimal.Decimal, err error) {
	q := `
SELECT
  COUNT(*) FILTER (WHERE status = 'completed')::bigint,
  COUNT(*) FILTER (WHERE status = 'defaulted')::bigint,
  COUNT(*)::bigint,
  COALESCE(SUM(monthly_payment) FILTER (WHERE status IN ('active', 'overdue')), 0)
FROM loans
WHERE user_id = $1
`
	err = r.pool.QueryRow(ctx, q, userID).Scan(&completed, &defaulted, &total, &monthlyObligations)
	return completed, defaulted, total, monthlyObligations, err
}
