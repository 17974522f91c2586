package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pandalearn/tutorhub-api/internal/authz"
	"github.com/pandalearn/tutorhub-api/internal/models"
	"github.com/pandalearn/tutorhub-api/internal/repository"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
)

type answerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	Rate(ctx context.Context, params repository.RateParams) error
	ListForQuestion(ctx context.Context, questionID int64) ([]models.Answer, error)
	ListFeedback(ctx context.Context, questionID, answerID int64) ([]models.FeedbackEntry, error)
}

type questionGetter interface {
	FindByID(ctx context.Context, id int64) (*models.Question, error)
}

// CreateAnswerRequest captures fields for posting an answer.
type CreateAnswerRequest struct {
	Content       string `json:"content" validate:"required"`
	IsAIGenerated bool   `json:"is_ai_generated"`
	AIModel       string `json:"ai_model" validate:"required_if=IsAIGenerated true"`
}

// RateAnswerRequest captures a rating submission by the question author.
type RateAnswerRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

// AnswerService handles answer workflows.
type AnswerService struct {
	repo      answerRepository
	questions questionGetter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnswerService creates a new answer service.
func NewAnswerService(repo answerRepository, questions questionGetter, validate *validator.Validate, logger *zap.Logger) *AnswerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerService{repo: repo, questions: questions, validator: validate, logger: logger}
}

// Create posts an answer to a question. Any authenticated account may
// answer; the question must exist and not be closed.
func (s *AnswerService) Create(ctx context.Context, author *models.Account, questionID int64, req CreateAnswerRequest) (*models.Answer, error) {
	if !authz.CanPostAnswer(author) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid answer payload")
	}

	answer := &models.Answer{
		QuestionID:     questionID,
		AuthorUsername: author.Username,
		Content:        req.Content,
		Status:         models.AnswerPending,
		IsAIGenerated:  req.IsAIGenerated,
	}
	if req.IsAIGenerated {
		answer.AIModel = &req.AIModel
	}

	if err := s.repo.Create(ctx, answer); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		case errors.Is(err, repository.ErrQuestionClosed):
			return nil, appErrors.Clone(appErrors.ErrConflict, "question no longer accepts answers")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create answer")
		}
	}

	s.logger.Info("answer created",
		zap.Int64("question_id", answer.QuestionID),
		zap.Int64("answer_id", answer.AnswerID),
		zap.Bool("ai_generated", answer.IsAIGenerated))
	return answer, nil
}

// Rate records the question author's rating for an answer. The rating is
// at-most-once: the repository re-verifies ownership and pending status
// under a row lock, so concurrent submissions cannot both succeed.
func (s *AnswerService) Rate(ctx context.Context, rater *models.Account, questionID, answerID int64, req RateAnswerRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}

	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	if !authz.CanRateAnswer(rater, question) {
		return appErrors.Clone(appErrors.ErrUnauthorized, "only the question author may rate answers")
	}

	err = s.repo.Rate(ctx, repository.RateParams{
		QuestionID: questionID,
		AnswerID:   answerID,
		Rater:      rater.Username,
		Rating:     req.Rating,
		Feedback:   req.Feedback,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "answer not found")
		case errors.Is(err, repository.ErrNotQuestionAuthor):
			return appErrors.Clone(appErrors.ErrUnauthorized, "only the question author may rate answers")
		case errors.Is(err, repository.ErrAnswerNotPending):
			return appErrors.Clone(appErrors.ErrConflict, "answer has already been rated")
		default:
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rate answer")
		}
	}
	return nil
}

// ListForQuestion returns a question's answers in display order:
// accepted first, then rating descending, then newest first.
func (s *AnswerService) ListForQuestion(ctx context.Context, questionID int64) ([]models.Answer, error) {
	answers, err := s.repo.ListForQuestion(ctx, questionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list answers")
	}
	if answers == nil {
		answers = []models.Answer{}
	}
	return answers, nil
}

// ListFeedback returns an answer's rating audit trail, newest first.
func (s *AnswerService) ListFeedback(ctx context.Context, questionID, answerID int64) ([]models.FeedbackEntry, error) {
	entries, err := s.repo.ListFeedback(ctx, questionID, answerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	if entries == nil {
		entries = []models.FeedbackEntry{}
	}
	return entries, nil
}
