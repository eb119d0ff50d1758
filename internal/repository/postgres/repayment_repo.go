package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/shopspring/decimal"
)

type RepaymentRepository struct {
	pool *pgxpool.Pool
}

func NewRepaymentRepository(pool *pgxpool.Pool) *RepaymentRepository {
	return &RepaymentRepository{pool: pool}
}

const repaymentColumns = `id, loan_id, user_id, installment_number, amount, principal_amount,
       interest_amount, amount_paid, late_fee, due_date, paid_at, status, created_at, updated_at`

func scanRepayment(row interface{ Scan(...any) error }) (*loan.Repayment, error) {
	out := &loan.Repayment{}
	err := row.Scan(
		&out.ID, &out.LoanID, &out.UserID, &out.InstallmentNumber, &out.Amount, &out.PrincipalAmount,
		&out.InterestAmount, &out.AmountPaid, &out.LateFee, &out.DueDate, &out.PaidAt, &out.Status,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RepaymentRepository) CreateBatch(ctx context.Context, items []loan.Repayment) error {
	q := `
INSERT INTO repayments (loan_id, user_id, installment_number, amount, principal_amount, interest_amount, due_date)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	for _, item := range items {
		if _, err := r.pool.Exec(ctx, q,
			item.LoanID, item.UserID, item.InstallmentNumber, item.Amount,
			item.PrincipalAmount, item.InterestAmount, item.DueDate,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *RepaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]loan.Repayment, error) {
	q := `SELECT ` + repaymentColumns + ` FROM repayments WHERE loan_id = $1 ORDER BY installment_number`
	rows, err := r.pool.Query(ctx, q, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRepayments(rows)
}

func (r *RepaymentRepository) List(ctx context.Context, f loan.RepaymentFilter) ([]loan.Repayment, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + repaymentColumns + ` FROM repayments WHERE 1=1`)

	args := []any{}
	argPos := 1
	if strings.TrimSpace(f.UserID) != "" {
		builder.WriteString(" AND user_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.UserID)
		argPos++
	}
	if strings.TrimSpace(f.LoanID) != "" {
		builder.WriteString(" AND loan_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.LoanID)
		argPos++
	}
	if strings.TrimSpace(f.Status) != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	builder.WriteString(" ORDER BY due_date")
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
	return collectRepayments(rows)
}

func (r *RepaymentRepository) ApplyPayment(ctx context.Context, repaymentID string, amountPaid decimal.Decimal, status string, paidAt *time.Time) error {
	q := `UPDATE repayments SET amount_paid = $2, status = $3, paid_at = $4, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, repaymentID, amountPaid, status, paidAt)
	return err
}

func (r *RepaymentRepository) MarkOverdue(ctx context.Context, repaymentID string, lateFee decimal.Decimal) error {
	q := `UPDATE repayments SET status = 'overdue', late_fee = $2, updated_at = NOW() WHERE id = $1 AND status != 'paid'`
	_, err := r.pool.Exec(ctx, q, repaymentID, lateFee)
	return err
}

func (r *RepaymentRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]loan.Repayment, error) {
	q := `SELECT ` + repaymentColumns + `
FROM repayments
WHERE status IN ('pending', 'partial') AND due_date >= $1 AND due_date <= $2
ORDER BY due_date`
	rows, err := r.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRepayments(rows)
}

func (r *RepaymentRepository) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]loan.Repayment, error) {
	q := `SELECT ` + repaymentColumns + `
FROM repayments
WHERE status IN ('pending', 'partial', 'overdue') AND due_date < $1
ORDER BY due_date`
	rows, err := r.pool.Query(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRepayments(rows)
}

func collectRepayments(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]loan.Repayment, error) {
	out := make([]loan.Repayment, 0)
	for rows.Next() {
		item, err := scanRepayment(rows)
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
