package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pandalearn/tutorhub-api/internal/models"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
)

type questionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	FindByID(ctx context.Context, id int64) (*models.Question, error)
	List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error)
	SetStatus(ctx context.Context, id int64, status models.QuestionStatus) error
}

type accountChecker interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// CreateQuestionRequest captures fields for posting a question.
type CreateQuestionRequest struct {
	Title       string              `json:"title" validate:"required"`
	Content     string              `json:"content" validate:"required"`
	Subject     string              `json:"subject" validate:"required"`
	Tags        []string            `json:"tags" validate:"omitempty,dive,required"`
	Attachments []models.Attachment `json:"file_attachments" validate:"omitempty,dive"`
}

// QuestionService handles question workflows.
type QuestionService struct {
	repo      questionRepository
	accounts  accountChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuestionService creates a new question service.
func NewQuestionService(repo questionRepository, accounts accountChecker, validate *validator.Validate, logger *zap.Logger) *QuestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{repo: repo, accounts: accounts, validator: validate, logger: logger}
}

// Create posts a new question owned by the author.
func (s *QuestionService) Create(ctx context.Context, author string, req CreateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid question payload")
	}
	if !models.ValidSubject(req.Subject) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown subject")
	}

	exists, err := s.accounts.Exists(ctx, author)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check author")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "author account not found")
	}

	question := &models.Question{
		AuthorUsername: author,
		Title:          strings.TrimSpace(req.Title),
		Content:        req.Content,
		Subject:        req.Subject,
		Status:         models.QuestionOpen,
		Tags:           req.Tags,
		Attachments:    req.Attachments,
	}
	if err := s.repo.Create(ctx, question); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create question")
	}

	s.logger.Info("question created", zap.Int64("question_id", question.ID), zap.String("author", author))
	return question, nil
}

// Get returns a question by id.
func (s *QuestionService) Get(ctx context.Context, id int64) (*models.Question, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load question")
	}
	return question, nil
}

// List returns questions matching the filter, newest first. An empty
// result is not an error.
func (s *QuestionService) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	questions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list questions")
	}
	if questions == nil {
		questions = []models.Question{}
	}
	return questions, nil
}

// SetStatus transitions a question's status, rejecting illegal paths.
func (s *QuestionService) SetStatus(ctx context.Context, id int64, status models.QuestionStatus) error {
	question, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if question.Status == status {
		return nil
	}
	if !models.ValidQuestionTransition(question.Status, status) {
		return appErrors.Clone(appErrors.ErrConflict, "illegal status transition")
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set question status")
	}
	return nil
}
