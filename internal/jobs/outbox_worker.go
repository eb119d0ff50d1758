package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const sendNotificationTopic = "send_notification"

type OutboxJob struct {
	ID          int64
	Topic       string
	Payload     []byte
	Status      string
	Attempts    int32
	LastError   string
	AvailableAt time.Time
}

type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int32) ([]OutboxJob, error)
	MarkDone(ctx context.Context, jobID int64) error
	MarkRetry(ctx context.Context, jobID int64, nextAvailableAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, jobID int64, lastError string) error
}

// Deliverer turns a queued notification event into an in-app record and an
// email.
type Deliverer interface {
	Deliver(ctx context.Context, userID, kind string, vars map[string]string) error
}

type Worker struct {
	outboxRepo   OutboxRepository
	deliverer    Deliverer
	maxAttempts  int32
	now          func() time.Time
	retryBackoff func(attempt int32) time.Duration
}

func NewWorker(outboxRepo OutboxRepository, deliverer Deliverer) *Worker {
	return &Worker{
		outboxRepo:  outboxRepo,
		deliverer:   deliverer,
		maxAttempts: 5,
		now:         func() time.Time { return time.Now().UTC() },
		retryBackoff: func(attempt int32) time.Duration {
			if attempt < 1 {
				attempt = 1
			}
			return time.Duration(attempt*15) * time.Second
		},
	}
}

func (w *Worker) RunOnce(ctx context.Context, batchSize int32) error {
	jobs, err := w.outboxRepo.ClaimPending(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			return err
		}
	}

	return nil
}

func (w *Worker) processJob(ctx context.Context, job OutboxJob) error {
	switch job.Topic {
	case sendNotificationTopic:
		return w.processSendNotification(ctx, job)
	default:
		if job.Attempts >= w.maxAttempts {
			return w.outboxRepo.MarkFailed(ctx, job.ID, "unsupported_topic")
		}
		next := w.now().Add(w.retryBackoff(job.Attempts))
		return w.outboxRepo.MarkRetry(ctx, job.ID, next, "unsupported_topic")
	}
}

type sendNotificationPayload struct {
	UserID    string            `json:"user_id"`
	Type      string            `json:"type"`
	Variables map[string]string `json:"variables"`
}

func (w *Worker) processSendNotification(ctx context.Context, job OutboxJob) error {
	var payload sendNotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return w.handleJobError(ctx, job, fmt.Errorf("invalid_payload"))
	}
	if payload.UserID == "" {
		return w.handleJobError(ctx, job, errors.New("missing_user_id"))
	}
	if payload.Type == "" {
		return w.handleJobError(ctx, job, errors.New("missing_type"))
	}

	if err := w.deliverer.Deliver(ctx, payload.UserID, payload.Type, payload.Variables); err != nil {
		return w.handleJobError(ctx, job, err)
	}

	return w.outboxRepo.MarkDone(ctx, job.ID)
}

func (w *Worker) handleJobError(ctx context.Context, job OutboxJob, err error) error {
	msg := err.Error()
	if job.Attempts >= w.maxAttempts {
		return w.outboxRepo.MarkFailed(ctx, job.ID, msg)
	}
	next := w.now().Add(w.retryBackoff(job.Attempts))
	return w.outboxRepo.MarkRetry(ctx, job.ID, next, msg)
}
