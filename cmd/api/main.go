package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lessismore22/Quickfund/internal/auth"
	"github.com/lessismore22/Quickfund/internal/config"
	"github.com/lessismore22/Quickfund/internal/db"
	"github.com/lessismore22/Quickfund/internal/domain/application"
	loandomain "github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/lessismore22/Quickfund/internal/domain/notification"
	"github.com/lessismore22/Quickfund/internal/http/handlers"
	"github.com/lessismore22/Quickfund/internal/observability"
	"github.com/lessismore22/Quickfund/internal/repository/mockstore"
	postgresrepo "github.com/lessismore22/Quickfund/internal/repository/postgres"
	"github.com/lessismore22/Quickfund/internal/server"
	"github.com/lessismore22/Quickfund/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	cookieCfg := auth.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}
	limits := loanLimits(cfg, logger)

	hub := ws.NewHub()
	metrics := observability.NewMetrics()

	deps := server.Dependencies{
		JWTManager: jwtManager,
		WSHandler:  ws.NewHandler(hub),
		Metrics:    metrics,
	}

	var cleanup func()
	var notifier *ws.Notifier

	if cfg.MockMode {
		logger.Warn("mock mode enabled, serving canned fixtures without a database")
		store := mockstore.New()
		authService := auth.NewService(mockstore.NewAuthRepo(), jwtManager, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
		loanService := loandomain.NewService(store.Loans(), store.Repayments(), store.Payments(), store)
		appService := application.NewService(store.Applications(), store, store, loanService, store, limits)
		notificationService := notification.NewService(store.Notifications(), store, nil)

		deps.Pinger = store
		deps.AuthHandler = handlers.NewAuthHandler(authService, cookieCfg, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
		deps.ApplicationHandler = handlers.NewApplicationHandler(appService)
		deps.LoanHandler = handlers.NewLoanHandler(loanService)
		deps.NotificationHandler = handlers.NewNotificationHandler(notificationService)
		deps.AdminHandler = handlers.NewAdminHandler(appService, loanService)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := db.NewPostgresPool(ctx, cfg)
		cancel()
		if err != nil {
			logger.Error("failed to connect postgres", "err", err)
			os.Exit(1)
		}
		cleanup = pool.Close

		authRepo := db.NewAuthRepository(pool)
		authService := auth.NewService(authRepo, jwtManager, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

		loanRepo := postgresrepo.NewLoanRepository(pool)
		outboxRepo := postgresrepo.NewOutboxRepository(pool)
		userDirectory := postgresrepo.NewUserDirectory(pool)
		loanService := loandomain.NewService(
			loanRepo,
			postgresrepo.NewRepaymentRepository(pool),
			postgresrepo.NewPaymentRepository(pool),
			outboxRepo,
		)
		appService := application.NewService(
			postgresrepo.NewApplicationRepository(pool),
			userDirectory,
			loanRepo,
			loanService,
			outboxRepo,
			limits,
		)
		notificationService := notification.NewService(
			postgresrepo.NewNotificationRepository(pool),
			userDirectory,
			nil,
		)
		notifier = ws.NewNotifier(postgresrepo.NewRealtimeRepository(pool), hub, cfg.WorkerPollInterval)

		deps.Pinger = pool
		deps.AuthHandler = handlers.NewAuthHandler(authService, cookieCfg, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
		deps.ApplicationHandler = handlers.NewApplicationHandler(appService)
		deps.LoanHandler = handlers.NewLoanHandler(loanService)
		deps.NotificationHandler = handlers.NewNotificationHandler(notificationService)
		deps.AdminHandler = handlers.NewAdminHandler(appService, loanService)
	}
	if cleanup != nil {
		defer cleanup()
	}

	r := server.NewRouter(cfg, logger, deps)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if notifier != nil {
		go func() {
			if err := notifier.Run(sigCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("realtime notifier stopped", "err", err)
			}
		}()
	}

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr(), "mock_mode", cfg.MockMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}

func loanLimits(cfg config.Config, logger *slog.Logger) application.Limits {
	parse := func(name, raw string) decimal.Decimal {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			logger.Warn("invalid decimal in config, ignoring", "key", name, "value", raw)
			return decimal.Zero
		}
		return v
	}
	return application.Limits{
		MinAmount: parse("MIN_LOAN_AMOUNT", cfg.MinLoanAmount),
		MaxAmount: parse("MAX_LOAN_AMOUNT", cfg.MaxLoanAmount),
		BaseRate:  parse("BASE_INTEREST_RATE", cfg.BaseInterestRate),
	}
}
