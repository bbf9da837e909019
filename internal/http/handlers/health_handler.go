package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler отвечает на проверки живости сервиса.
type HealthHandler struct {
	env string
}

func NewHealthHandler(env string) *HealthHandler {
	return &HealthHandler{env: env}
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "env": h.env})
}
