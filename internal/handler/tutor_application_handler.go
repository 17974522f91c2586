package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pandalearn/tutorhub-api/internal/models"
	"github.com/pandalearn/tutorhub-api/internal/service"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
	"github.com/pandalearn/tutorhub-api/pkg/response"
)

// TutorApplicationHandler exposes tutor application endpoints.
type TutorApplicationHandler struct {
	service *service.TutorApplicationService
}

// NewTutorApplicationHandler creates a new handler.
func NewTutorApplicationHandler(svc *service.TutorApplicationService) *TutorApplicationHandler {
	return &TutorApplicationHandler{service: svc}
}

// Submit files a new tutor application for the caller.
func (h *TutorApplicationHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	app, err := h.service.Submit(c.Request.Context(), claims.Username, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, app, nil)
}

// Mine returns the caller's own application.
func (h *TutorApplicationHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	app, err := h.service.Mine(c.Request.Context(), claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, app, nil)
}

// List returns the review queue, optionally filtered by status.
func (h *TutorApplicationHandler) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.ValidApplicationStatus(models.ApplicationStatus(status)) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status filter"))
		return
	}

	apps, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, apps, nil)
}

// Review decides a pending application.
func (h *TutorApplicationHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id, ok := paramInt64(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application id"))
		return
	}

	var req service.ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	app, err := h.service.Review(c.Request.Context(), claims.Username, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, app, nil)
}
