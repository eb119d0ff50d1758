package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lessismore22/Quickfund/internal/domain/notification"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, in notification.CreateInput) (*notification.Entity, error) {
	vars, err := json.Marshal(in.Variables)
	if err != nil {
		return nil, err
	}
	q := `
INSERT INTO notifications (user_id, type, title, message, variables, status)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, user_id, type, title, message, variables, status, read_at, created_at`
	out := &notification.Entity{}
	var rawVars []byte
	err = r.pool.QueryRow(ctx, q, in.UserID, in.Kind, in.Title, in.Message, vars, in.Status).Scan(
		&out.ID, &out.UserID, &out.Kind, &out.Title, &out.Message, &rawVars, &out.Status, &out.ReadAt, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rawVars) > 0 {
		if err := json.Unmarshal(rawVars, &out.Variables); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]notification.Entity, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := `
SELECT id, user_id, type, title, message, variables, status, read_at, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notification.Entity, 0)
	for rows.Next() {
		var item notification.Entity
		var rawVars []byte
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Kind, &item.Title, &item.Message, &rawVars, &item.Status, &item.ReadAt, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(rawVars) > 0 {
			if err := json.Unmarshal(rawVars, &item.Variables); err != nil {
				return nil, err
			}
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	q := `UPDATE notifications SET read_at = NOW() WHERE id = $1 AND user_id = $2 AND read_at IS NULL`
	_, err := r.pool.Exec(ctx, q, notificationID, userID)
	return err
}
