package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Servicer is the slice of the loan service the scheduled jobs run.
type Servicer interface {
	SweepOverdue(ctx context.Context) (int, error)
	SendDueReminders(ctx context.Context, daysAhead int) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	loans   Servicer
	logger  *slog.Logger
	timeout time.Duration
}

func NewScheduler(loans Servicer, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		loans:   loans,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
}

// Register wires the nightly overdue sweep and the morning due-date reminder
// run. Specs are standard five-field cron expressions.
func (s *Scheduler) Register(overdueSpec, reminderSpec string, reminderDaysAhead int) error {
	if _, err := s.cron.AddFunc(overdueSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		flagged, err := s.loans.SweepOverdue(ctx)
		if err != nil {
			s.logger.Error("overdue sweep failed", "err", err)
			return
		}
		s.logger.Info("overdue sweep finished", "flagged", flagged)
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(reminderSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		sent, err := s.loans.SendDueReminders(ctx, reminderDaysAhead)
		if err != nil {
			s.logger.Error("due reminder run failed", "err", err)
			return
		}
		s.logger.Info("due reminder run finished", "queued", sent)
	}); err != nil {
		return err
	}

	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
