package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandalearn/tutorhub-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestAnswerRepositoryCreateAllocatesIDAndFlipsStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnswerRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM questions WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("open"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(answer_id), 0) + 1 FROM answers WHERE question_id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(3)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO answers`)).
		WithArgs(int64(7), int64(3), "tutorbob", "use the chain rule", "pending",
			nil, nil, false, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE questions SET status = $2, updated_at = $3 WHERE id = $1`)).
		WithArgs(int64(7), models.QuestionAnswered, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	answer := &models.Answer{
		QuestionID:     7,
		AuthorUsername: "tutorbob",
		Content:        "use the chain rule",
	}
	err := repo.Create(context.Background(), answer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), answer.AnswerID)
	assert.Equal(t, models.AnswerPending, answer.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepositoryCreateClosedQuestion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnswerRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM questions WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("closed"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Answer{QuestionID: 7, AuthorUsername: "tutorbob", Content: "x"})
	require.ErrorIs(t, err, ErrQuestionClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepositoryCreateMissingQuestion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnswerRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM questions WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Answer{QuestionID: 99, AuthorUsername: "tutorbob", Content: "x"})
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAnswerRepositoryRateSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnswerRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT a.status, q.author_username`)).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "author_username"}).AddRow("pending", "alice"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE answers SET status = $3, rating = $4, feedback = $5, updated_at = $6`)).
		WithArgs(int64(7), int64(1), models.AnswerAccepted, 5, "very clear", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO feedbacks`)).
		WithArgs(int64(7), int64(1), "alice", 5, "very clear", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Rate(context.Background(), RateParams{
		QuestionID: 7, AnswerID: 1, Rater: "alice", Rating: 5, Feedback: "very clear",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerRepositoryRateNotAuthor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnswerRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT a.status, q.author_username`)).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "author_username"}).AddRow("pending", "alice"))
	mock.ExpectRollback()

	err := repo.Rate(context.Background(), RateParams{QuestionID: 7, AnswerID: 1, Rater: "mallory", Rating: 5})
	require.ErrorIs(t, err, ErrNotQuestionAuthor)
}

func TestAnswerRepositoryRateAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnswerRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT a.status, q.author_username`)).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "author_username"}).AddRow("accepted", "alice"))
	mock.ExpectRollback()

	err := repo.Rate(context.Background(), RateParams{QuestionID: 7, AnswerID: 1, Rater: "alice", Rating: 4})
	require.ErrorIs(t, err, ErrAnswerNotPending)
}

func TestAnswerRepositoryListForQuestionOrdering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnswerRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"question_id", "answer_id", "author_username", "content", "status",
		"rating", "feedback", "is_ai_generated", "ai_model", "created_at", "updated_at"}).
		AddRow(int64(7), int64(2), "tutorbob", "accepted one", "accepted", 5, "great", false, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY CASE WHEN status = 'accepted' THEN 0 ELSE 1 END, rating DESC NULLS LAST, created_at DESC`)).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	answers, err := repo.ListForQuestion(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, models.AnswerAccepted, answers[0].Status)
}

func TestAnswerRepositoryFindNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnswerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(int64(7), int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), 7, 42)
	require.True(t, errors.Is(err, sql.ErrNoRows))
}
