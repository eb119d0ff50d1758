package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lessismore22/Quickfund/internal/config"
	"github.com/lessismore22/Quickfund/internal/db"
	loandomain "github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/lessismore22/Quickfund/internal/domain/notification"
	"github.com/lessismore22/Quickfund/internal/jobs"
	"github.com/lessismore22/Quickfund/internal/mail"
	"github.com/lessismore22/Quickfund/internal/observability"
	postgresrepo "github.com/lessismore22/Quickfund/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	if cfg.MockMode {
		logger.Error("worker does not run in mock mode")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	outboxRepo := postgresrepo.NewOutboxRepository(pool)
	userDirectory := postgresrepo.NewUserDirectory(pool)
	notificationService := notification.NewService(
		postgresrepo.NewNotificationRepository(pool),
		userDirectory,
		mail.NewSender(cfg),
	)
	worker := jobs.NewWorker(outboxRepo, notificationService)

	loanService := loandomain.NewService(
		postgresrepo.NewLoanRepository(pool),
		postgresrepo.NewRepaymentRepository(pool),
		postgresrepo.NewPaymentRepository(pool),
		outboxRepo,
	)
	scheduler := jobs.NewScheduler(loanService, logger)
	if err := scheduler.Register(cfg.OverdueSweepSpec, cfg.ReminderSpec, int(cfg.ReminderDaysAhead)); err != nil {
		logger.Error("failed to register scheduled jobs", "err", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	interval := cfg.WorkerPollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started",
		"interval", interval.String(),
		"batch_size", cfg.WorkerBatchSize,
		"overdue_sweep", cfg.OverdueSweepSpec,
		"reminders", cfg.ReminderSpec,
	)
	for {
		select {
		case <-sigCtx.Done():
			logger.Info("worker stopped")
			return
		case <-ticker.C:
			runCtx, runCancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := worker.RunOnce(runCtx, cfg.WorkerBatchSize)
			runCancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker run failed", "err", err)
			}
		}
	}
}
