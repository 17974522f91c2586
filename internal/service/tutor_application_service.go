package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pandalearn/tutorhub-api/internal/authz"
	"github.com/pandalearn/tutorhub-api/internal/models"
	"github.com/pandalearn/tutorhub-api/internal/repository"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
)

type applicationRepository interface {
	Create(ctx context.Context, app *models.TutorApplication) error
	HasPending(ctx context.Context, username string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*models.TutorApplication, error)
	List(ctx context.Context, status string) ([]models.TutorApplication, error)
	Review(ctx context.Context, id int64, decision models.ApplicationStatus, feedback string) (*models.TutorApplication, error)
}

type accountGetter interface {
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
}

// SubmitApplicationRequest captures a tutor application submission.
type SubmitApplicationRequest struct {
	Qualifications string   `json:"qualifications" validate:"required"`
	Experience     string   `json:"experience" validate:"required"`
	Subjects       []string `json:"subjects" validate:"required,min=1,dive,required"`
	Resume         string   `json:"resume"`
}

// ReviewApplicationRequest captures an admin decision.
type ReviewApplicationRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Feedback string `json:"feedback"`
}

// TutorApplicationService drives the pending -> approved/rejected state
// machine for tutor applications.
type TutorApplicationService struct {
	repo      applicationRepository
	accounts  accountGetter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTutorApplicationService creates a new tutor application service.
func NewTutorApplicationService(repo applicationRepository, accounts accountGetter, validate *validator.Validate, logger *zap.Logger) *TutorApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorApplicationService{repo: repo, accounts: accounts, validator: validate, logger: logger}
}

// Submit files a new application. A user may hold at most one pending
// application at a time.
func (s *TutorApplicationService) Submit(ctx context.Context, username string, req SubmitApplicationRequest) (*models.TutorApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	for _, subject := range req.Subjects {
		if !models.ValidSubject(subject) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown subject: "+subject)
		}
	}

	pending, err := s.repo.HasPending(ctx, username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending application")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an application is already pending")
	}

	app := &models.TutorApplication{
		Username:       username,
		Qualifications: req.Qualifications,
		Experience:     req.Experience,
		Subjects:       pq.StringArray(req.Subjects),
		Status:         models.ApplicationPending,
	}
	if req.Resume != "" {
		app.Resume = &req.Resume
	}
	if err := s.repo.Create(ctx, app); err != nil {
		// The HasPending pre-check races with concurrent submissions;
		// the partial unique index is the authority.
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an application is already pending")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.logger.Info("tutor application submitted", zap.Int64("application_id", app.ID), zap.String("username", username))
	return app, nil
}

// Review decides a pending application. The reviewer's stored account
// role is checked, not just the token claim; approval promotes the
// applicant to tutor atomically with the decision.
func (s *TutorApplicationService) Review(ctx context.Context, reviewerUsername string, applicationID int64, req ReviewApplicationRequest) (*models.TutorApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	reviewer, err := s.accounts.FindByUsername(ctx, reviewerUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "reviewer account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reviewer")
	}
	if !authz.CanReviewApplication(reviewer) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "only admins may review applications")
	}

	app, err := s.repo.Review(ctx, applicationID, models.ApplicationStatus(req.Decision), req.Feedback)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		case errors.Is(err, repository.ErrApplicationNotPending):
			return nil, appErrors.Clone(appErrors.ErrConflict, "application has already been decided")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review application")
		}
	}

	s.logger.Info("tutor application reviewed",
		zap.Int64("application_id", app.ID),
		zap.String("decision", string(app.Status)),
		zap.String("reviewer", reviewerUsername))
	return app, nil
}

// Mine returns the caller's most relevant application.
func (s *TutorApplicationService) Mine(ctx context.Context, username string) (*models.TutorApplication, error) {
	app, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no application on file")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// List returns applications for the admin review queue.
func (s *TutorApplicationService) List(ctx context.Context, status string) ([]models.TutorApplication, error) {
	apps, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	if apps == nil {
		apps = []models.TutorApplication{}
	}
	return apps, nil
}
