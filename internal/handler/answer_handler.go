package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pandalearn/tutorhub-api/internal/service"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
	"github.com/pandalearn/tutorhub-api/pkg/response"
)

// AnswerHandler exposes answer endpoints nested under questions.
type AnswerHandler struct {
	service *service.AnswerService
}

// NewAnswerHandler creates a new handler.
func NewAnswerHandler(svc *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{service: svc}
}

// Create posts an answer to a question.
func (h *AnswerHandler) Create(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	questionID, ok := paramInt64(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid question id"))
		return
	}

	var req service.CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}

	answer, err := h.service.Create(c.Request.Context(), account, questionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"answer_id": answer.AnswerID,
		"answer":    answer,
	}, nil)
}

// Rate records the question author's rating for an answer.
func (h *AnswerHandler) Rate(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	questionID, ok := paramInt64(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid question id"))
		return
	}
	answerID, ok := paramInt64(c, "answerId")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid answer id"))
		return
	}

	var req service.RateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rating payload"))
		return
	}

	if err := h.service.Rate(c.Request.Context(), account, questionID, answerID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"rated": true}, nil)
}

// RateByAnswer handles the flat rating route. Answer identity is
// composite, so the owning question id travels in the body.
func (h *AnswerHandler) RateByAnswer(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	answerID, ok := paramInt64(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid answer id"))
		return
	}

	var req struct {
		QuestionID int64  `json:"question_id" binding:"required"`
		Rating     int    `json:"rating"`
		Feedback   string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rating payload"))
		return
	}

	err := h.service.Rate(c.Request.Context(), account, req.QuestionID, answerID, service.RateAnswerRequest{
		Rating:   req.Rating,
		Feedback: req.Feedback,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"rated": true}, nil)
}

// Feedback returns the rating audit trail for an answer.
func (h *AnswerHandler) Feedback(c *gin.Context) {
	questionID, ok := paramInt64(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid question id"))
		return
	}
	answerID, ok := paramInt64(c, "answerId")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid answer id"))
		return
	}

	entries, err := h.service.ListFeedback(c.Request.Context(), questionID, answerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// ListForQuestion returns a question's answers in display order.
func (h *AnswerHandler) ListForQuestion(c *gin.Context) {
	questionID, ok := paramInt64(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid question id"))
		return
	}

	answers, err := h.service.ListForQuestion(c.Request.Context(), questionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, answers, nil)
}
