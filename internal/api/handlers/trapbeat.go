package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/magda-trapbeat/internal/logger"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/presets"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/services"
	"github.com/gin-gonic/gin"
)

// BeatService is the part of services.BeatService the HTTP layer needs
type BeatService interface {
	Generate(ctx context.Context, req services.BeatRequest) (*services.BeatResult, error)
	Modes() []services.ModeInfo
	Presets() []presets.Preset
	PresetCount() int
	SelfCheck() error
}

type TrapBeatHandler struct {
	service BeatService
}

func NewTrapBeatHandler(service BeatService) *TrapBeatHandler {
	return &TrapBeatHandler{service: service}
}

type ModesResponse struct {
	Modes []services.ModeInfo `json:"modes"`
}

type PresetsResponse struct {
	Presets []presets.Preset `json:"presets"`
}

// Generate handles POST /api/v1/trapbeat/generate
func (h *TrapBeatHandler) Generate(c *gin.Context) {
	var req services.BeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := logger.WithContext(c)
	fields["preset"] = req.Preset
	fields["variations"] = req.Variations
	logger.Debug("Trap beat request", fields)

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeoutSecs*time.Second)
	defer cancel()

	result, err := h.service.Generate(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrUnknownPreset):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Error("Trap beat generation failed", err, fields)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Modes handles GET /api/v1/trapbeat/modes
func (h *TrapBeatHandler) Modes(c *gin.Context) {
	c.JSON(http.StatusOK, ModesResponse{Modes: h.service.Modes()})
}

// Presets handles GET /api/v1/trapbeat/presets
func (h *TrapBeatHandler) Presets(c *gin.Context) {
	c.JSON(http.StatusOK, PresetsResponse{Presets: h.service.Presets()})
}
