package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/magda-trapbeat/internal/logger"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	service BeatService
}

func NewHealthHandler(service BeatService) *HealthHandler {
	return &HealthHandler{service: service}
}

// HealthCheck returns the health status of the API after a seeded one-bar generation
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if err := h.service.SelfCheck(); err != nil {
		logger.Error("Health self-check failed", err, logger.WithContext(c))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"generator": "ok",
		"presets":   h.service.PresetCount(),
	})
}
