package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lessismore22/Quickfund/internal/ws"
)

type RealtimeRepository struct {
	pool *pgxpool.Pool
}

func NewRealtimeRepository(pool *pgxpool.Pool) *RealtimeRepository {
	return &RealtimeRepository{pool: pool}
}

func (r *RealtimeRepository) ListNotificationEventsSince(ctx context.Context, lastSeq int64, limit int32) ([]ws.NotificationEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `
SELECT seq, id, user_id, type, title, created_at
FROM notifications
WHERE seq > $1
ORDER BY seq
LIMIT $2`
	rows, err := r.pool.Query(ctx, q, lastSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ws.NotificationEvent, 0)
	for rows.Next() {
		var ev ws.NotificationEvent
		if err := rows.Scan(&ev.Seq, &ev.ID, &ev.UserID, &ev.Kind, &ev.Title, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
