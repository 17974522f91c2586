package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandalearn/tutorhub-api/internal/models"
)

func applicationRows(t *testing.T, status string) *sqlmock.Rows {
	t.Helper()
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "username", "qualifications", "experience", "subjects",
		"resume", "status", "admin_feedback", "created_at", "updated_at"}).
		AddRow(int64(3), "bob", "MSc Physics", "5 years tutoring", "{Physics}",
			nil, status, nil, now, now)
}

func TestTutorApplicationRepositoryReviewApprovePromotes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM tutor_applications WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(3)).
		WillReturnRows(applicationRows(t, "pending"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tutor_applications SET status = $2, admin_feedback = $3, updated_at = $4 WHERE id = $1`)).
		WithArgs(int64(3), models.ApplicationApproved, "welcome aboard", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE accounts SET role = $2 WHERE username = $1`)).
		WithArgs("bob", models.RoleTutor).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	app, err := repo.Review(context.Background(), 3, models.ApplicationApproved, "welcome aboard")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, app.Status)
	require.NotNil(t, app.AdminFeedback)
	assert.Equal(t, "welcome aboard", *app.AdminFeedback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTutorApplicationRepositoryReviewRejectSkipsPromotion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM tutor_applications WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(3)).
		WillReturnRows(applicationRows(t, "pending"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tutor_applications SET status = $2, admin_feedback = $3, updated_at = $4 WHERE id = $1`)).
		WithArgs(int64(3), models.ApplicationRejected, "not enough experience", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	app, err := repo.Review(context.Background(), 3, models.ApplicationRejected, "not enough experience")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTutorApplicationRepositoryReviewAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM tutor_applications WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(3)).
		WillReturnRows(applicationRows(t, "approved"))
	mock.ExpectRollback()

	_, err := repo.Review(context.Background(), 3, models.ApplicationApproved, "")
	require.ErrorIs(t, err, ErrApplicationNotPending)
}

func TestTutorApplicationRepositoryReviewMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM tutor_applications WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Review(context.Background(), 99, models.ApplicationApproved, "")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTutorApplicationRepositoryCreateDuplicatePending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tutor_applications`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_tutor_applications_pending"})

	err := repo.Create(context.Background(), &models.TutorApplication{
		Username:       "bob",
		Qualifications: "MSc Physics",
		Experience:     "5 years tutoring",
		Subjects:       pq.StringArray{"Physics"},
	})
	require.ErrorIs(t, err, ErrDuplicatePending)
}

func TestTutorApplicationRepositoryHasPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTutorApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM tutor_applications WHERE username = $1 AND status = 'pending')`)).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	pending, err := repo.HasPending(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, pending)
}
