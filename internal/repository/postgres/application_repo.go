package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lessismore22/Quickfund/internal/domain/application"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `id, reference, user_id, amount, purpose, term_months, employment_status,
       monthly_income, guarantor_name, guarantor_phone, guarantor_email, guarantor_relationship,
       status, credit_score, approved_amount, interest_rate, rejection_reason, reviewed_by,
       decided_at, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (*application.Entity, error) {
	out := &application.Entity{}
	err := row.Scan(
		&out.ID, &out.Reference, &out.UserID, &out.Amount, &out.Purpose, &out.TermMonths, &out.EmploymentStatus,
		&out.MonthlyIncome, &out.Guarantor.Name, &out.Guarantor.Phone, &out.Guarantor.Email, &out.Guarantor.Relationship,
		&out.Status, &out.CreditScore, &out.ApprovedAmount, &out.InterestRate, &out.RejectionReason, &out.ReviewedBy,
		&out.DecidedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, in application.CreateInput) (*application.Entity, error) {
	q := `
INSERT INTO loan_applications (
  reference, user_id, amount, purpose, term_months, employment_status, monthly_income,
  guarantor_name, guarantor_phone, guarantor_email, guarantor_relationship
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING ` + applicationColumns
	return scanApplication(r.pool.QueryRow(ctx, q,
		in.Reference, in.UserID, in.Amount, in.Purpose, in.TermMonths, in.EmploymentStatus, in.MonthlyIncome,
		in.Guarantor.Name, in.Guarantor.Phone, in.Guarantor.Email, in.Guarantor.Relationship,
	))
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*application.Entity, error) {
	q := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`
	return scanApplication(r.pool.QueryRow(ctx, q, id))
}

func (r *ApplicationRepository) List(ctx context.Context, f application.ListFilter) ([]application.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + applicationColumns + ` FROM loan_applications WHERE 1=1`)

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

	out := make([]application.Entity, 0)
	for rows.Next() {
		item, err := scanApplication(rows)
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

func (r *ApplicationRepository) UpdateDecision(ctx context.Context, id string, in application.DecisionInput) error {
	q := `
UPDATE loan_applications
SET status = $2,
    credit_score = $3,
    approved_amount = $4,
    interest_rate = $5,
    rejection_reason = $6,
    reviewed_by = $7,
    decided_at = NOW(),
    updated_at = NOW()
WHERE id = $1
`
	_, err := r.pool.Exec(ctx, q, id, in.Status, in.CreditScore, in.ApprovedAmount, in.InterestRate, in.RejectionReason, in.ReviewedBy)
	return err
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	q := `UPDATE loan_applications SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, status)
	return err
}

func (r *ApplicationRepository) CountByUserAndStatus(ctx context.Context, userID, status string) (int64, error) {
	q := `SELECT COUNT(*)::bigint FROM loan_applications WHERE user_id = $1 AND status = $2`
	var count int64
	err := r.pool.QueryRow(ctx, q, userID, status).Scan(&count)
	return count, err
}
