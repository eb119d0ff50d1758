package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable. The fixture store
// satisfies it too, so mock mode stays ready without a database.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	pinger Pinger
}

func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// Health is the liveness probe. It never touches the store.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "quickfund-backend",
	})
}

// Ready fails when the store cannot be pinged within the timeout.
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.storeReachable(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"database": "error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "ok",
	})
}

func (h *HealthHandler) storeReachable(ctx context.Context) bool {
	if h.pinger == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return h.pinger.Ping(ctx) == nil
}
