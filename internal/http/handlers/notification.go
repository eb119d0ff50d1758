package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lessismore22/Quickfund/internal/domain/notification"
	"github.com/lessismore22/Quickfund/internal/repository/mockstore"
)

type NotificationService interface {
	List(ctx context.Context, userID string, limit, offset int32) ([]notification.Entity, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

type NotificationHandler struct {
	notifications NotificationService
}

func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)

	items, err := h.notifications.List(c.Request.Context(), userID, int32(limit), int32(offset))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_notifications_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")
	id := strings.TrimSpace(c.Param("notificationId"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_notification_id"})
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, mockstore.ErrReadOnly) {
			c.JSON(http.StatusForbidden, gin.H{"error": "read_only_mode"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "mark_read_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
