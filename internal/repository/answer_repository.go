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

// Sentinel errors surfaced by transactional answer operations. Services
// translate them into the API error taxonomy.
var (
	ErrQuestionClosed    = errors.New("question is closed")
	ErrAnswerNotPending  = errors.New("answer is not pending")
	ErrNotQuestionAuthor = errors.New("rater is not the question author")
)

// AnswerRepository provides database access for answers and rating
// feedback. Answer identity is composite: (question_id, answer_id).
type AnswerRepository struct {
	db *sqlx.DB
}

// NewAnswerRepository creates a new instance of AnswerRepository.
func NewAnswerRepository(db *sqlx.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

const answerColumns = `question_id, answer_id, author_username, content, status, rating, feedback, is_ai_generated, ai_model, created_at, updated_at`

// Create inserts an answer. The parent question row is locked for the
// duration of the transaction so that per-question answer ids are
// allocated without gaps or duplicates, and the question transitions
// open -> answered atomically with the insert. Returns sql.ErrNoRows when
// the question does not exist and ErrQuestionClosed when it no longer
// accepts answers.
func (r *AnswerRepository) Create(ctx context.Context, answer *models.Answer) (err error) {
	now := time.Now().UTC()
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = now
	}
	answer.UpdatedAt = now
	if answer.Status == "" {
		answer.Status = models.AnswerPending
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin answer transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var questionStatus models.QuestionStatus
	const lockQuery = `SELECT status FROM questions WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &questionStatus, lockQuery, answer.QuestionID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock question: %w", err)
	}
	if questionStatus == models.QuestionClosed {
		err = ErrQuestionClosed
		return err
	}

	const nextIDQuery = `SELECT COALESCE(MAX(answer_id), 0) + 1 FROM answers WHERE question_id = $1`
	if err = tx.GetContext(ctx, &answer.AnswerID, nextIDQuery, answer.QuestionID); err != nil {
		return fmt.Errorf("allocate answer id: %w", err)
	}

	const insertQuery = `INSERT INTO answers (question_id, answer_id, author_username, content, status, rating, feedback, is_ai_generated, ai_model, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err = tx.ExecContext(ctx, insertQuery,
		answer.QuestionID, answer.AnswerID, answer.AuthorUsername, answer.Content,
		answer.Status, answer.Rating, answer.Feedback, answer.IsAIGenerated,
		answer.AIModel, answer.CreatedAt, answer.UpdatedAt); err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}

	if questionStatus == models.QuestionOpen {
		const statusQuery = `UPDATE questions SET status = $2, updated_at = $3 WHERE id = $1`
		if _, err = tx.ExecContext(ctx, statusQuery, answer.QuestionID, models.QuestionAnswered, now); err != nil {
			return fmt.Errorf("mark question answered: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit answer: %w", err)
	}
	return nil
}

// RateParams carries a rating submission.
type RateParams struct {
	QuestionID int64
	AnswerID   int64
	Rater      string
	Rating     int
	Feedback   string
}

// Rate records a rating in a single transaction. The answer row is locked
// with FOR UPDATE so concurrent raters cannot both pass the pending check;
// ownership and state are verified under the same lock. On success the
// answer becomes accepted and a feedback row is appended. Returns
// sql.ErrNoRows when the answer does not exist, ErrNotQuestionAuthor when
// the rater does not own the question, and ErrAnswerNotPending when the
// answer was already rated or rejected.
func (r *AnswerRepository) Rate(ctx context.Context, params RateParams) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rate transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current struct {
		Status models.AnswerStatus `db:"status"`
		Author string              `db:"author_username"`
	}
	const lockQuery = `SELECT a.status, q.author_username
FROM answers a JOIN questions q ON q.id = a.question_id
WHERE a.question_id = $1 AND a.answer_id = $2 FOR UPDATE OF a`
	if err = tx.GetContext(ctx, &current, lockQuery, params.QuestionID, params.AnswerID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock answer: %w", err)
	}

	if current.Author != params.Rater {
		err = ErrNotQuestionAuthor
		return err
	}
	if current.Status != models.AnswerPending {
		err = ErrAnswerNotPending
		return err
	}

	now := time.Now().UTC()
	const updateQuery = `UPDATE answers SET status = $3, rating = $4, feedback = $5, updated_at = $6
WHERE question_id = $1 AND answer_id = $2`
	if _, err = tx.ExecContext(ctx, updateQuery,
		params.QuestionID, params.AnswerID, models.AnswerAccepted, params.Rating, params.Feedback, now); err != nil {
		return fmt.Errorf("update answer rating: %w", err)
	}

	const feedbackQuery = `INSERT INTO feedbacks (question_id, answer_id, username, rating, comment, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.ExecContext(ctx, feedbackQuery,
		params.QuestionID, params.AnswerID, params.Rater, params.Rating, params.Feedback, now); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rating: %w", err)
	}
	return nil
}

// ListForQuestion returns a question's answers with accepted answers
// first, then by rating descending (unrated last), then newest first.
// The order decides which answer renders as "best" and is a contract.
func (r *AnswerRepository) ListForQuestion(ctx context.Context, questionID int64) ([]models.Answer, error) {
	query := fmt.Sprintf(`SELECT %s FROM answers WHERE question_id = $1
ORDER BY CASE WHEN status = 'accepted' THEN 0 ELSE 1 END, rating DESC NULLS LAST, created_at DESC`, answerColumns)
	var answers []models.Answer
	if err := r.db.SelectContext(ctx, &answers, query, questionID); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}

// Find returns a single answer by composite id.
func (r *AnswerRepository) Find(ctx context.Context, questionID, answerID int64) (*models.Answer, error) {
	query := fmt.Sprintf(`SELECT %s FROM answers WHERE question_id = $1 AND answer_id = $2 LIMIT 1`, answerColumns)
	var answer models.Answer
	if err := r.db.GetContext(ctx, &answer, query, questionID, answerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find answer: %w", err)
	}
	return &answer, nil
}

// ListFeedback returns the rating audit trail for an answer.
func (r *AnswerRepository) ListFeedback(ctx context.Context, questionID, answerID int64) ([]models.FeedbackEntry, error) {
	const query = `SELECT id, question_id, answer_id, username, rating, comment, created_at
FROM feedbacks WHERE question_id = $1 AND answer_id = $2 ORDER BY created_at DESC`
	var entries []models.FeedbackEntry
	if err := r.db.SelectContext(ctx, &entries, query, questionID, answerID); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return entries, nil
}
