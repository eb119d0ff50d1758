package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lessismore22/Quickfund/internal/domain/application"
	"github.com/lessismore22/Quickfund/internal/domain/notification"
)

// UserDirectory serves the read-only user lookups the domain services need
// without exposing the full auth repository.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) GetBorrowerProfile(ctx context.Context, userID string) (*application.BorrowerProfile, error) {
	q := `
SELECT bvn <> '' AND bvn_verified, kyc_verified, employment_status, monthly_income
FROM users WHERE id = $1`
	out := &application.BorrowerProfile{}
	err := d.pool.QueryRow(ctx, q, userID).Scan(
		&out.BVNPresent, &out.KYCVerified, &out.EmploymentStatus, &out.MonthlyIncome,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *UserDirectory) GetRecipient(ctx context.Context, userID string) (*notification.Recipient, error) {
	q := `SELECT email, first_name FROM users WHERE id = $1`
	out := &notification.Recipient{}
	if err := d.pool.QueryRow(ctx, q, userID).Scan(&out.Email, &out.FirstName); err != nil {
		return nil, err
	}
	return out, nil
}
