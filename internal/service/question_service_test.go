package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pandalearn/tutorhub-api/internal/models"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
)

type mockQuestionRepo struct {
	questions map[int64]*models.Question
	created   []*models.Question
	statusSet map[int64]models.QuestionStatus
	listErr   error
}

func newMockQuestionRepo() *mockQuestionRepo {
	return &mockQuestionRepo{
		questions: make(map[int64]*models.Question),
		statusSet: make(map[int64]models.QuestionStatus),
	}
}

func (m *mockQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	question.ID = int64(len(m.created) + 1)
	m.created = append(m.created, question)
	m.questions[question.ID] = question
	return nil
}

func (m *mockQuestionRepo) FindByID(ctx context.Context, id int64) (*models.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return q, nil
}

func (m *mockQuestionRepo) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Question
	for _, q := range m.questions {
		out = append(out, *q)
	}
	return out, nil
}

func (m *mockQuestionRepo) SetStatus(ctx context.Context, id int64, status models.QuestionStatus) error {
	if _, ok := m.questions[id]; !ok {
		return sql.ErrNoRows
	}
	m.statusSet[id] = status
	m.questions[id].Status = status
	return nil
}

type mockAccountChecker struct {
	existing map[string]bool
}

func (m *mockAccountChecker) Exists(ctx context.Context, username string) (bool, error) {
	return m.existing[username], nil
}

func newTestQuestionService(repo *mockQuestionRepo, accounts *mockAccountChecker) *QuestionService {
	return NewQuestionService(repo, accounts, validator.New(), zap.NewNop())
}

func TestQuestionServiceCreateSuccess(t *testing.T) {
	repo := newMockQuestionRepo()
	svc := newTestQuestionService(repo, &mockAccountChecker{existing: map[string]bool{"alice": true}})

	question, err := svc.Create(context.Background(), "alice", CreateQuestionRequest{
		Title:   "  Derivative help ",
		Content: "How do I differentiate x^2?",
		Subject: "Mathematics",
		Tags:    []string{"calculus"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), question.ID)
	assert.Equal(t, "Derivative help", question.Title)
	assert.Equal(t, models.QuestionOpen, question.Status)
}

func TestQuestionServiceCreateUnknownAuthor(t *testing.T) {
	svc := newTestQuestionService(newMockQuestionRepo(), &mockAccountChecker{existing: map[string]bool{}})

	_, err := svc.Create(context.Background(), "ghost", CreateQuestionRequest{
		Title: "t", Content: "c", Subject: "Mathematics",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestQuestionServiceCreateUnknownSubject(t *testing.T) {
	svc := newTestQuestionService(newMockQuestionRepo(), &mockAccountChecker{existing: map[string]bool{"alice": true}})

	_, err := svc.Create(context.Background(), "alice", CreateQuestionRequest{
		Title: "t", Content: "c", Subject: "Astrology",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestQuestionServiceGetMissing(t *testing.T) {
	svc := newTestQuestionService(newMockQuestionRepo(), &mockAccountChecker{})

	_, err := svc.Get(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestQuestionServiceSetStatusIllegalTransition(t *testing.T) {
	repo := newMockQuestionRepo()
	repo.questions[1] = &models.Question{ID: 1, Status: models.QuestionClosed}
	svc := newTestQuestionService(repo, &mockAccountChecker{})

	err := svc.SetStatus(context.Background(), 1, models.QuestionOpen)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestQuestionServiceSetStatusNoOp(t *testing.T) {
	repo := newMockQuestionRepo()
	repo.questions[1] = &models.Question{ID: 1, Status: models.QuestionOpen}
	svc := newTestQuestionService(repo, &mockAccountChecker{})

	err := svc.SetStatus(context.Background(), 1, models.QuestionOpen)
	require.NoError(t, err)
	assert.Empty(t, repo.statusSet)
}

func TestQuestionServiceSetStatusClose(t *testing.T) {
	repo := newMockQuestionRepo()
	repo.questions[1] = &models.Question{ID: 1, Status: models.QuestionAnswered}
	svc := newTestQuestionService(repo, &mockAccountChecker{})

	err := svc.SetStatus(context.Background(), 1, models.QuestionClosed)
	require.NoError(t, err)
	assert.Equal(t, models.QuestionClosed, repo.statusSet[1])
}

func TestQuestionServiceListNeverNil(t *testing.T) {
	svc := newTestQuestionService(newMockQuestionRepo(), &mockAccountChecker{})

	questions, err := svc.List(context.Background(), models.QuestionFilter{})
	require.NoError(t, err)
	assert.NotNil(t, questions)
	assert.Empty(t, questions)
}
