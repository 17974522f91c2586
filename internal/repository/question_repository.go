package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pandalearn/tutorhub-api/internal/models"
)

// QuestionRepository provides database access for questions, their tags
// and attachment metadata.
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository creates a new instance of QuestionRepository.
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `id, author_username, title, content, subject, status, created_at, updated_at`

// Create inserts a question together with its tags and attachments in a
// single transaction. The generated id is written back to the model.
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) (err error) {
	now := time.Now().UTC()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	question.UpdatedAt = now
	if question.Status == "" {
		question.Status = models.QuestionOpen
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin question transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO questions (author_username, title, content, subject, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err = tx.GetContext(ctx, &question.ID, insertQuery,
		question.AuthorUsername, question.Title, question.Content, question.Subject,
		question.Status, question.CreatedAt, question.UpdatedAt); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}

	const tagQuery = `INSERT INTO question_tags (question_id, tag) VALUES ($1, $2)`
	for _, tag := range question.Tags {
		if _, err = tx.ExecContext(ctx, tagQuery, question.ID, tag); err != nil {
			return fmt.Errorf("insert question tag: %w", err)
		}
	}

	const attachmentQuery = `INSERT INTO question_attachments (id, question_id, name, url, type, position) VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range question.Attachments {
		if question.Attachments[i].ID == "" {
			question.Attachments[i].ID = uuid.NewString()
		}
		a := question.Attachments[i]
		if _, err = tx.ExecContext(ctx, attachmentQuery, a.ID, question.ID, a.Name, a.URL, a.Type, i); err != nil {
			return fmt.Errorf("insert question attachment: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit question: %w", err)
	}
	return nil
}

// FindByID returns a question with its tags and attachments.
func (r *QuestionRepository) FindByID(ctx context.Context, id int64) (*models.Question, error) {
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE id = $1 LIMIT 1`, questionColumns)
	var question models.Question
	if err := r.db.GetContext(ctx, &question, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find question by id: %w", err)
	}

	if err := r.loadTags(ctx, []*models.Question{&question}); err != nil {
		return nil, err
	}
	if err := r.loadAttachments(ctx, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

// List returns questions matching the filter, newest first. Search text
// matches title, content or any tag, case-insensitively.
func (r *QuestionRepository) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	baseQuery := `FROM questions q WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("q.subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("q.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(q.title) LIKE $%d OR LOWER(q.content) LIKE $%d OR EXISTS (SELECT 1 FROM question_tags t WHERE t.question_id = q.id AND LOWER(t.tag) LIKE $%d))",
			idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	listQuery := fmt.Sprintf("SELECT q.%s %s ORDER BY q.created_at DESC",
		strings.ReplaceAll(questionColumns, ", ", ", q."), baseQuery)

	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, listQuery, args...); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	refs := make([]*models.Question, len(questions))
	for i := range questions {
		refs[i] = &questions[i]
	}
	if err := r.loadTags(ctx, refs); err != nil {
		return nil, err
	}
	return questions, nil
}

// SetStatus transitions a question's status.
func (r *QuestionRepository) SetStatus(ctx context.Context, id int64, status models.QuestionStatus) error {
	const query = `UPDATE questions SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set question status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *QuestionRepository) loadTags(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]int64, len(questions))
	byID := make(map[int64]*models.Question, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		byID[q.ID] = q
		if q.Tags == nil {
			q.Tags = []string{}
		}
	}

	const query = `SELECT question_id, tag FROM question_tags WHERE question_id = ANY($1) ORDER BY tag`
	rows := []struct {
		QuestionID int64  `db:"question_id"`
		Tag        string `db:"tag"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load question tags: %w", err)
	}
	for _, row := range rows {
		if q, ok := byID[row.QuestionID]; ok {
			q.Tags = append(q.Tags, row.Tag)
		}
	}
	return nil
}

func (r *QuestionRepository) loadAttachments(ctx context.Context, question *models.Question) error {
	const query = `SELECT id, name, url, type FROM question_attachments WHERE question_id = $1 ORDER BY position`
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, question.ID); err != nil {
		return fmt.Errorf("load question attachments: %w", err)
	}
	question.Attachments = attachments
	return nil
}
