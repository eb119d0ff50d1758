package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/lessismore22/Quickfund/internal/domain/application"
	"github.com/lessismore22/Quickfund/internal/repository/mockstore"
)

type ApplicationService interface {
	Submit(ctx context.Context, userID string, data application.FormData) (*application.Entity, error)
	Get(ctx context.Context, id string) (*application.Entity, error)
	List(ctx context.Context, f application.ListFilter) ([]application.Entity, error)
}

type ApplicationHandler struct {
	apps ApplicationService
}

func NewApplicationHandler(apps ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{apps: apps}
}

type applyRequest struct {
	Amount           string                `json:"amount"`
	Purpose          string                `json:"purpose"`
	TermMonths       int                   `json:"term_months"`
	EmploymentStatus string                `json:"employment_status"`
	MonthlyIncome    string                `json:"monthly_income"`
	Guarantor        application.Guarantor `json:"guarantor"`
	TermsAccepted    bool                  `json:"terms_accepted"`
}

func (r applyRequest) toFormData() (application.FormData, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return application.FormData{}, err
	}
	income := decimal.Zero
	if strings.TrimSpace(r.MonthlyIncome) != "" {
		income, err = decimal.NewFromString(strings.TrimSpace(r.MonthlyIncome))
		if err != nil {
			return application.FormData{}, err
		}
	}
	return application.FormData{
		Amount:           amount,
		Purpose:          strings.TrimSpace(r.Purpose),
		TermMonths:       r.TermMonths,
		EmploymentStatus: strings.TrimSpace(r.EmploymentStatus),
		MonthlyIncome:    income,
		Guarantor:        r.Guarantor,
		TermsAccepted:    r.TermsAccepted,
	}, nil
}

// Apply walks the submitted form through the wizard steps and submits from
// Review. A step that fails validation reports its field errors along with
// the step it stopped at.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID := c.GetString("user_id")

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	data, err := req.toFormData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount"})
		return
	}

	wizard := application.NewWizard()
	wizard.SetData(data)
	for wizard.CurrentStep() != application.StepReview {
		if errs := wizard.Next(); len(errs) > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "validation_failed",
				"step":   wizard.CurrentStep().String(),
				"fields": errs,
			})
			return
		}
	}
	if errs := application.ValidateStep(application.StepReview, data); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation_failed",
			"step":   application.StepReview.String(),
			"fields": errs,
		})
		return
	}

	created, err := wizard.Submit(c.Request.Context(), h.apps, userID)
	if err != nil {
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "validation_failed",
				"step":   wizard.CurrentStep().String(),
				"fields": vErr.Fields,
			})
			return
		}
		if errors.Is(err, mockstore.ErrReadOnly) {
			c.JSON(http.StatusForbidden, gin.H{"error": "read_only_mode"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission_failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"application": created,
		"step":        wizard.CurrentStep().String(),
	})
}

func (h *ApplicationHandler) ListOwn(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)

	items, err := h.apps.List(c.Request.Context(), application.ListFilter{
		UserID: userID,
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

func (h *ApplicationHandler) GetOwn(c *gin.Context) {
	userID := c.GetString("user_id")
	id := strings.TrimSpace(c.Param("applicationId"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_application_id"})
		return
	}

	item, err := h.apps.Get(c.Request.Context(), id)
	if err != nil || item.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "application_not_found"})
		return
	}
	c.JSON(http.StatusOK, item)
}
