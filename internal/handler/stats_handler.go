package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pandalearn/tutorhub-api/internal/service"
	"github.com/pandalearn/tutorhub-api/pkg/response"
)

// StatsHandler exposes dashboard statistics endpoints.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Platform returns the admin dashboard aggregate.
func (h *StatsHandler) Platform(c *gin.Context) {
	stats, err := h.service.Platform(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ExportPlatform downloads the platform summary as CSV or PDF.
func (h *StatsHandler) ExportPlatform(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	data, contentType, filename, err := h.service.ExportPlatform(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// Tutors returns per-tutor answering aggregates.
func (h *StatsHandler) Tutors(c *gin.Context) {
	stats, err := h.service.Tutors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
