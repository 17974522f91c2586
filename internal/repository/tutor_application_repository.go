package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pandalearn/tutorhub-api/internal/models"
)

// Sentinel errors surfaced by tutor application operations.
var (
	// ErrApplicationNotPending signals a review attempt on a decided application.
	ErrApplicationNotPending = errors.New("application is not pending")
	// ErrDuplicatePending signals an insert that lost the race against a
	// concurrent submission; at most one pending application per user is
	// enforced by a partial unique index.
	ErrDuplicatePending = errors.New("a pending application already exists")
)

// TutorApplicationRepository provides database access for tutor applications.
type TutorApplicationRepository struct {
	db *sqlx.DB
}

// NewTutorApplicationRepository creates a new instance of TutorApplicationRepository.
func NewTutorApplicationRepository(db *sqlx.DB) *TutorApplicationRepository {
	return &TutorApplicationRepository{db: db}
}

const applicationColumns = `id, username, qualifications, experience, subjects, resume, status, admin_feedback, created_at, updated_at`

// Create inserts a tutor application with status pending.
func (r *TutorApplicationRepository) Create(ctx context.Context, app *models.TutorApplication) error {
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}

	const query = `INSERT INTO tutor_applications (username, qualifications, experience, subjects, resume, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.GetContext(ctx, &app.ID, query,
		app.Username, app.Qualifications, app.Experience, app.Subjects,
		app.Resume, app.Status, app.CreatedAt, app.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePending
		}
		return fmt.Errorf("create tutor application: %w", err)
	}
	return nil
}

// HasPending reports whether the user already has an undecided application.
func (r *TutorApplicationRepository) HasPending(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM tutor_applications WHERE username = $1 AND status = 'pending')`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("check pending application: %w", err)
	}
	return exists, nil
}

// FindByID returns an application by id.
func (r *TutorApplicationRepository) FindByID(ctx context.Context, id int64) (*models.TutorApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutor_applications WHERE id = $1 LIMIT 1`, applicationColumns)
	var app models.TutorApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// FindByUsername returns the user's most relevant application: the first
// of pending, then most recent.
func (r *TutorApplicationRepository) FindByUsername(ctx context.Context, username string) (*models.TutorApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutor_applications WHERE username = $1
ORDER BY CASE WHEN status = 'pending' THEN 0 ELSE 1 END, created_at DESC LIMIT 1`, applicationColumns)
	var app models.TutorApplication
	if err := r.db.GetContext(ctx, &app, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by username: %w", err)
	}
	return &app, nil
}

// List returns applications, optionally filtered by status, newest first.
func (r *TutorApplicationRepository) List(ctx context.Context, status string) ([]models.TutorApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutor_applications`, applicationColumns)
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var apps []models.TutorApplication
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Review decides a pending application in a single transaction. The
// application row is locked with FOR UPDATE so two admins cannot both
// decide it; approval promotes the applicant to tutor under the same
// transaction. Returns sql.ErrNoRows when the application does not exist
// and ErrApplicationNotPending when it was already decided.
func (r *TutorApplicationRepository) Review(ctx context.Context, id int64, decision models.ApplicationStatus, feedback string) (app *models.TutorApplication, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin review transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.TutorApplication
	lockQuery := fmt.Sprintf(`SELECT %s FROM tutor_applications WHERE id = $1 FOR UPDATE`, applicationColumns)
	if err = tx.GetContext(ctx, &current, lockQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock application: %w", err)
	}
	if current.Status != models.ApplicationPending {
		err = ErrApplicationNotPending
		return nil, err
	}

	now := time.Now().UTC()
	const updateQuery = `UPDATE tutor_applications SET status = $2, admin_feedback = $3, updated_at = $4 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, id, decision, feedback, now); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	if decision == models.ApplicationApproved {
		const roleQuery = `UPDATE accounts SET role = $2 WHERE username = $1`
		if _, err = tx.ExecContext(ctx, roleQuery, current.Username, models.RoleTutor); err != nil {
			return nil, fmt.Errorf("promote applicant: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review: %w", err)
	}

	current.Status = decision
	current.AdminFeedback = &feedback
	current.UpdatedAt = now
	return &current, nil
}
