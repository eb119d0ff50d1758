package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lessismore22/Quickfund/internal/auth"
	"github.com/lessismore22/Quickfund/internal/config"
	"github.com/lessismore22/Quickfund/internal/http/handlers"
	"github.com/lessismore22/Quickfund/internal/http/middleware"
	"github.com/lessismore22/Quickfund/internal/observability"
	"github.com/lessismore22/Quickfund/internal/version"
	"github.com/lessismore22/Quickfund/internal/ws"
)

const maxRequestBodyBytes = 1 << 20

type Dependencies struct {
	Pinger              handlers.Pinger
	AuthHandler         *handlers.AuthHandler
	ApplicationHandler  *handlers.ApplicationHandler
	LoanHandler         *handlers.LoanHandler
	NotificationHandler *handlers.NotificationHandler
	AdminHandler        *handlers.AdminHandler
	WSHandler           *ws.Handler
	JWTManager          *auth.JWTManager
	Metrics             *observability.Metrics
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestBodyLimit(maxRequestBodyBytes))
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", deps.Metrics.Handler())
	}

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version, cfg.MockMode)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	if deps.AuthHandler != nil && deps.JWTManager != nil {
		authGroup := r.Group("/v1/auth")
		authGroup.POST("/register", deps.AuthHandler.Register)
		authGroup.POST("/login", deps.AuthHandler.Login)
		authGroup.POST("/refresh", deps.AuthHandler.Refresh)
		authGroup.POST("/logout", deps.AuthHandler.Logout)

		protected := authGroup.Group("")
		protected.Use(middleware.RequireAuth(deps.JWTManager))
		protected.GET("/me", deps.AuthHandler.Me)

		borrowerGroup := r.Group("/v1")
		borrowerGroup.Use(middleware.RequireAuth(deps.JWTManager))

		if deps.ApplicationHandler != nil {
			borrowerGroup.POST("/loans/apply", deps.ApplicationHandler.Apply)
			borrowerGroup.GET("/applications", deps.ApplicationHandler.ListOwn)
			borrowerGroup.GET("/applications/:applicationId", deps.ApplicationHandler.GetOwn)
		}
		if deps.LoanHandler != nil {
			borrowerGroup.GET("/loans", deps.LoanHandler.ListLoans)
			borrowerGroup.GET("/loans/active", deps.LoanHandler.ListActiveLoans)
			borrowerGroup.GET("/loans/:loanId", deps.LoanHandler.GetLoan)
			borrowerGroup.GET("/loans/:loanId/schedule", deps.LoanHandler.GetSchedule)
			borrowerGroup.GET("/repayments", deps.LoanHandler.ListRepayments)
			borrowerGroup.GET("/payments", deps.LoanHandler.ListPayments)
			borrowerGroup.POST("/payments", deps.LoanHandler.RecordPayment)
		}
		if deps.NotificationHandler != nil {
			borrowerGroup.GET("/notifications", deps.NotificationHandler.List)
			borrowerGroup.POST("/notifications/:notificationId/read", deps.NotificationHandler.MarkRead)
		}
		if deps.WSHandler != nil {
			borrowerGroup.GET("/ws", deps.WSHandler.HandleWebSocket)
		}

		if deps.AdminHandler != nil {
			adminGroup := r.Group("/admin")
			adminGroup.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleAdmin))
			adminGroup.GET("/applications", deps.AdminHandler.ListApplications)
			adminGroup.GET("/applications/:applicationId", deps.AdminHandler.GetApplication)
			adminGroup.POST("/applications/:applicationId/approve", deps.AdminHandler.ApproveApplication)
			adminGroup.POST("/applications/:applicationId/reject", deps.AdminHandler.RejectApplication)
			adminGroup.POST("/applications/:applicationId/disburse", deps.AdminHandler.DisburseApplication)
			adminGroup.POST("/loans/:loanId/default", deps.AdminHandler.MarkLoanDefault)
			adminGroup.GET("/portfolio/analytics", deps.AdminHandler.GetPortfolioAnalytics)
			adminGroup.GET("/system/health", deps.AdminHandler.SystemHealth)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
