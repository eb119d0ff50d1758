package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MetaHandler struct {
	env     string
	version string
	mock    bool
}

func NewMetaHandler(env, version string, mock bool) *MetaHandler {
	return &MetaHandler{env: env, version: version, mock: mock}
}

func (h *MetaHandler) GetMeta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":      "QuickFund Backend",
		"version":   h.version,
		"env":       h.env,
		"mock_mode": h.mock,
	})
}
