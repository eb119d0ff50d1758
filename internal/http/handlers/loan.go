package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	loandomain "github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/lessismore22/Quickfund/internal/repository/mockstore"
)

type LoanService interface {
	GetLoan(ctx context.Context, loanID string) (*loandomain.Entity, error)
	ListLoans(ctx context.Context, f loandomain.ListFilter) ([]loandomain.Entity, error)
	Schedule(ctx context.Context, loanID string) ([]loandomain.Repayment, error)
	ListRepayments(ctx context.Context, f loandomain.RepaymentFilter) ([]loandomain.Repayment, error)
	ListPayments(ctx context.Context, userID string, limit, offset int32) ([]loandomain.Payment, error)
	RecordPayment(ctx context.Context, in loandomain.PaymentInput) (*loandomain.Payment, error)
}

type LoanHandler struct {
	loans LoanService
}

func NewLoanHandler(loans LoanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)

	items, err := h.loans.ListLoans(c.Request.Context(), loandomain.ListFilter{
		UserID: userID,
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_loans_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LoanHandler) ListActiveLoans(c *gin.Context) {
	userID := c.GetString("user_id")
	items, err := h.loans.ListLoans(c.Request.Context(), loandomain.ListFilter{
		UserID: userID,
		Status: loandomain.StatusActive,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_loans_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	userID := c.GetString("user_id")
	loanID := strings.TrimSpace(c.Param("loanId"))
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_loan_id"})
		return
	}
	item, err := h.loans.GetLoan(c.Request.Context(), loanID)
	if err != nil || item.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "loan_not_found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *LoanHandler) GetSchedule(c *gin.Context) {
	userID := c.GetString("user_id")
	loanID := strings.TrimSpace(c.Param("loanId"))
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_loan_id"})
		return
	}
	item, err := h.loans.GetLoan(c.Request.Context(), loanID)
	if err != nil || item.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "loan_not_found"})
		return
	}
	schedule, err := h.loans.Schedule(c.Request.Context(), loanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "schedule_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": schedule})
}

func (h *LoanHandler) ListRepayments(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)

	items, err := h.loans.ListRepayments(c.Request.Context(), loandomain.RepaymentFilter{
		UserID: userID,
		LoanID: strings.TrimSpace(c.Query("loan_id")),
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_repayments_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LoanHandler) ListPayments(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)

	items, err := h.loans.ListPayments(c.Request.Context(), userID, int32(limit), int32(offset))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_payments_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type recordPaymentRequest struct {
	LoanID           string `json:"loan_id" binding:"required"`
	Amount           string `json:"amount" binding:"required"`
	Method           string `json:"method"`
	GatewayReference string `json:"gateway_reference"`
}

func (h *LoanHandler) RecordPayment(c *gin.Context) {
	userID := c.GetString("user_id")

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount"})
		return
	}

	payment, err := h.loans.RecordPayment(c.Request.Context(), loandomain.PaymentInput{
		LoanID:           req.LoanID,
		UserID:           userID,
		Amount:           amount,
		Method:           strings.TrimSpace(req.Method),
		GatewayReference: strings.TrimSpace(req.GatewayReference),
	})
	if err != nil {
		if errors.Is(err, mockstore.ErrReadOnly) {
			c.JSON(http.StatusForbidden, gin.H{"error": "read_only_mode"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_failed"})
		return
	}
	c.JSON(http.StatusCreated, payment)
}
