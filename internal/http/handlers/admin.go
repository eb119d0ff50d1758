package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lessismore22/Quickfund/internal/domain/application"
	loandomain "github.com/lessismore22/Quickfund/internal/domain/loan"
	"github.com/lessismore22/Quickfund/internal/repository/mockstore"
)

type ApplicationReviewer interface {
	Get(ctx context.Context, id string) (*application.Entity, error)
	List(ctx context.Context, f application.ListFilter) ([]application.Entity, error)
	Approve(ctx context.Context, id, reviewedBy string) (*application.Entity, error)
	Reject(ctx context.Context, id, reviewedBy, reason string) (*application.Entity, error)
	Disburse(ctx context.Context, id string) (*loandomain.Entity, error)
}

type PortfolioReader interface {
	PortfolioAnalytics(ctx context.Context) (*loandomain.PortfolioAnalytics, error)
	MarkDefault(ctx context.Context, loanID, reason string) error
}

type AdminHandler struct {
	apps  ApplicationReviewer
	loans PortfolioReader
}

func NewAdminHandler(apps ApplicationReviewer, loans PortfolioReader) *AdminHandler {
	return &AdminHandler{apps: apps, loans: loans}
}

func (h *AdminHandler) SystemHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) ListApplications(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)

	items, err := h.apps.List(c.Request.Context(), application.ListFilter{
		UserID: strings.TrimSpace(c.Query("user_id")),
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_applications_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *AdminHandler) GetApplication(c *gin.Context) {
	id := strings.TrimSpace(c.Param("applicationId"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_application_id"})
		return
	}
	item, err := h.apps.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "application_not_found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *AdminHandler) ApproveApplication(c *gin.Context) {
	id := strings.TrimSpace(c.Param("applicationId"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_application_id"})
		return
	}
	reviewedBy := c.GetString("user_id")

	item, err := h.apps.Approve(c.Request.Context(), id, reviewedBy)
	if err != nil {
		if errors.Is(err, application.ErrAlreadyDecided) {
			c.JSON(http.StatusConflict, gin.H{"error": "application_already_decided"})
			return
		}
		if errors.Is(err, mockstore.ErrReadOnly) {
			c.JSON(http.StatusForbidden, gin.H{"error": "read_only_mode"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "approval_failed"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *AdminHandler) RejectApplication(c *gin.Context) {
	id := strings.TrimSpace(c.Param("applicationId"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_application_id"})
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	reviewedBy := c.GetString("user_id")

	item, err := h.apps.Reject(c.Request.Context(), id, reviewedBy, strings.TrimSpace(req.Reason))
	if err != nil {
		if errors.Is(err, application.ErrAlreadyDecided) {
			c.JSON(http.StatusConflict, gin.H{"error": "application_already_decided"})
			return
		}
		if errors.Is(err, mockstore.ErrReadOnly) {
			c.JSON(http.StatusForbidden, gin.H{"error": "read_only_mode"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "rejection_failed"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *AdminHandler) DisburseApplication(c *gin.Context) {
	id := strings.TrimSpace(c.Param("applicationId"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_application_id"})
		return
	}
	created, err := h.apps.Disburse(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrNotReady) {
			c.JSON(http.StatusConflict, gin.H{"error": "application_not_approved"})
			return
		}
		if errors.Is(err, mockstore.ErrReadOnly) {
			c.JSON(http.StatusForbidden, gin.H{"error": "read_only_mode"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "disbursement_failed"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) MarkLoanDefault(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_loan_id"})
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.loans.MarkDefault(c.Request.Context(), loanID, strings.TrimSpace(req.Reason)); err != nil {
		if errors.Is(err, mockstore.ErrReadOnly) {
			c.JSON(http.StatusForbidden, gin.H{"error": "read_only_mode"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "default_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated_status": loandomain.StatusDefaulted})
}

func (h *AdminHandler) GetPortfolioAnalytics(c *gin.Context) {
	analytics, err := h.loans.PortfolioAnalytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics_failed"})
		return
	}
	c.JSON(http.StatusOK, analytics)
}
