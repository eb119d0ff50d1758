package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lessismore22/Quickfund/internal/domain/loan"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, reference, loan_id, user_id, amount, currency, method,
       gateway_reference, status, failure_reason, initiated_at, confirmed_at`

func (r *PaymentRepository) Create(ctx context.Context, in loan.CreatePaymentInput) (*loan.Payment, error) {
	q := `
INSERT INTO payments (reference, loan_id, user_id, amount, currency, method, gateway_reference, status, confirmed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8, CASE WHEN $8 = 'successful' THEN NOW() ELSE NULL END)
RETURNING ` + paymentColumns
	out := &loan.Payment{}
	err := r.pool.QueryRow(ctx, q,
		in.Reference, in.LoanID, in.UserID, in.Amount, in.Currency, in.Method, in.GatewayReference, in.Status,
	).Scan(
		&out.ID, &out.Reference, &out.LoanID, &out.UserID, &out.Amount, &out.Currency, &out.Method,
		&out.GatewayReference, &out.Status, &out.FailureReason, &out.InitiatedAt, &out.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]loan.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY initiated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.Payment, 0)
	for rows.Next() {
		var item loan.Payment
		if err := rows.Scan(
			&item.ID, &item.Reference, &item.LoanID, &item.UserID, &item.Amount, &item.Currency, &item.Method,
			&item.GatewayReference, &item.Status, &item.FailureReason, &item.InitiatedAt, &item.ConfirmedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
