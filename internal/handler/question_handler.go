package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pandalearn/tutorhub-api/internal/models"
	"github.com/pandalearn/tutorhub-api/internal/service"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
	"github.com/pandalearn/tutorhub-api/pkg/response"
)

// QuestionHandler exposes question endpoints.
type QuestionHandler struct {
	service *service.QuestionService
}

// NewQuestionHandler creates a new handler.
func NewQuestionHandler(svc *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: svc}
}

// Create posts a new question owned by the caller.
func (h *QuestionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid question payload"))
		return
	}

	question, err := h.service.Create(c.Request.Context(), claims.Username, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"question_id": question.ID,
		"question":    question,
	}, nil)
}

// Get returns a single question with its tags and attachments.
func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid question id"))
		return
	}

	question, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, question, nil)
}

// List returns questions matching the optional search, subject and
// status query parameters, newest first.
func (h *QuestionHandler) List(c *gin.Context) {
	filter := models.QuestionFilter{
		Search:  c.Query("search"),
		Subject: c.Query("subject"),
		Status:  c.Query("status"),
	}
	if filter.Status != "" && !models.ValidQuestionStatus(models.QuestionStatus(filter.Status)) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status filter"))
		return
	}

	questions, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, questions, nil)
}

// SetStatus transitions a question's lifecycle status.
func (h *QuestionHandler) SetStatus(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid question id"))
		return
	}

	var payload struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status required"))
		return
	}

	status := models.QuestionStatus(payload.Status)
	if !models.ValidQuestionStatus(status) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status"))
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), id, status); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
