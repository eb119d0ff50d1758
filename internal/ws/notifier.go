package ws

import (
	"context"
	"encoding/json"
	"time"
)

const PortfolioChannel = "admin:portfolio"

func NotificationChannel(userID string) string {
	return "user:notifications:" + userID
}

// NotificationEvent is a row from the notifications feed keyed by the
// monotonically increasing seq column.
type NotificationEvent struct {
	Seq       int64
	ID        string
	UserID    string
	Kind      string
	Title     string
	CreatedAt time.Time
}

type RealtimeRepository interface {
	ListNotificationEventsSince(ctx context.Context, lastSeq int64, limit int32) ([]NotificationEvent, error)
}

// Notifier polls the notifications table and fans new rows out to connected
// clients. Polling keeps the API process free of broker plumbing; the seq
// cursor makes restarts idempotent within a session.
type Notifier struct {
	repo         RealtimeRepository
	hub          *Hub
	pollInterval time.Duration
	lastSeq      int64
}

func NewNotifier(repo RealtimeRepository, hub *Hub, pollInterval time.Duration) *Notifier {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Notifier{repo: repo, hub: hub, pollInterval: pollInterval}
}

func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (n *Notifier) tick(ctx context.Context) error {
	events, err := n.repo.ListNotificationEventsSince(ctx, n.lastSeq, 100)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.Seq > n.lastSeq {
			n.lastSeq = ev.Seq
		}
		payload, _ := json.Marshal(map[string]any{
			"event": "notification_created",
			"data": map[string]any{
				"id":         ev.ID,
				"type":       ev.Kind,
				"title":      ev.Title,
				"created_at": ev.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
		n.hub.Publish(NotificationChannel(ev.UserID), payload)

		if ev.Kind == "payment_received" || ev.Kind == "loan_disbursed" {
			adminPayload, _ := json.Marshal(map[string]any{
				"event": "portfolio_updated",
				"data": map[string]any{
					"source":     ev.Kind,
					"created_at": ev.CreatedAt.UTC().Format(time.RFC3339),
				},
			})
			n.hub.Publish(PortfolioChannel, adminPayload)
		}
	}
	return nil
}
