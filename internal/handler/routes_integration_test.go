package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/pandalearn/tutorhub-api/internal/middleware"
	"github.com/pandalearn/tutorhub-api/internal/models"
	"github.com/pandalearn/tutorhub-api/internal/repository"
	"github.com/pandalearn/tutorhub-api/internal/service"
)

type questionRepoIntegrationMock struct {
	questions map[int64]*models.Question
}

func (m *questionRepoIntegrationMock) Create(ctx context.Context, question *models.Question) error {
	question.ID = int64(len(m.questions) + 1)
	m.questions[question.ID] = question
	return nil
}

func (m *questionRepoIntegrationMock) FindByID(ctx context.Context, id int64) (*models.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return q, nil
}

func (m *questionRepoIntegrationMock) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	var out []models.Question
	for _, q := range m.questions {
		out = append(out, *q)
	}
	return out, nil
}

func (m *questionRepoIntegrationMock) SetStatus(ctx context.Context, id int64, status models.QuestionStatus) error {
	q, ok := m.questions[id]
	if !ok {
		return sql.ErrNoRows
	}
	q.Status = status
	return nil
}

type answerRepoIntegrationMock struct {
	rateErr error
}

func (m *answerRepoIntegrationMock) Create(ctx context.Context, answer *models.Answer) error {
	answer.AnswerID = 1
	return nil
}

func (m *answerRepoIntegrationMock) Rate(ctx context.Context, params repository.RateParams) error {
	return m.rateErr
}

func (m *answerRepoIntegrationMock) ListForQuestion(ctx context.Context, questionID int64) ([]models.Answer, error) {
	return nil, nil
}

func (m *answerRepoIntegrationMock) ListFeedback(ctx context.Context, questionID, answerID int64) ([]models.FeedbackEntry, error) {
	return nil, nil
}

type accountCheckerIntegrationMock struct{}

func (accountCheckerIntegrationMock) Exists(ctx context.Context, username string) (bool, error) {
	return true, nil
}

// testClaimsMiddleware injects claims from test headers in place of the
// bearer-token middleware.
func testClaimsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
				Username: user,
				Role:     models.Role(c.GetHeader("X-Test-Role")),
			})
		}
		c.Next()
	}
}

func buildQARouter(t *testing.T, questions *questionRepoIntegrationMock, answers *answerRepoIntegrationMock) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(testClaimsMiddleware())

	validate := validator.New()
	questionService := service.NewQuestionService(questions, accountCheckerIntegrationMock{}, validate, zap.NewNop())
	answerService := service.NewAnswerService(answers, questions, validate, zap.NewNop())

	questionHandler := NewQuestionHandler(questionService)
	answerHandler := NewAnswerHandler(answerService)

	router.GET("/questions", questionHandler.List)
	router.GET("/questions/:id", questionHandler.Get)
	router.POST("/questions", questionHandler.Create)
	router.PATCH("/questions/:id/status", internalmiddleware.RequireRoles(models.RoleAdmin), questionHandler.SetStatus)
	router.POST("/questions/:id/answers", answerHandler.Create)
	router.POST("/questions/:id/answers/:answerId/rating", answerHandler.Rate)
	router.GET("/questions/:id/answers/:answerId/feedback", answerHandler.Feedback)
	router.POST("/answers/:id/rating", answerHandler.RateByAnswer)

	return router
}

func doRequest(router *gin.Engine, method, path, body, user, role string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
		req.Header.Set("X-Test-Role", role)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestQuestionRoutesIntegration(t *testing.T) {
	questions := &questionRepoIntegrationMock{questions: map[int64]*models.Question{}}
	router := buildQARouter(t, questions, &answerRepoIntegrationMock{})

	t.Run("create question", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/questions",
			`{"title":"Derivative help","content":"How?","subject":"Mathematics","tags":["calculus"]}`,
			"alice", "student")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"question_id":1`)
		require.Contains(t, resp.Body.String(), `"status":"open"`)
	})

	t.Run("create question unauthenticated", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/questions",
			`{"title":"t","content":"c","subject":"Mathematics"}`, "", "")
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("create question bad subject", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/questions",
			`{"title":"t","content":"c","subject":"Alchemy"}`, "alice", "student")
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("get missing question", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/questions/999", "", "", "")
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("set status requires admin", func(t *testing.T) {
		resp := doRequest(router, http.MethodPatch, "/questions/1/status",
			`{"status":"closed"}`, "alice", "student")
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("set status as admin", func(t *testing.T) {
		resp := doRequest(router, http.MethodPatch, "/questions/1/status",
			`{"status":"closed"}`, "root", "admin")
		require.Equal(t, http.StatusNoContent, resp.Code)
	})
}

func TestAnswerRoutesIntegration(t *testing.T) {
	questions := &questionRepoIntegrationMock{questions: map[int64]*models.Question{
		7: {ID: 7, AuthorUsername: "alice", Status: models.QuestionOpen},
	}}

	t.Run("post answer", func(t *testing.T) {
		router := buildQARouter(t, questions, &answerRepoIntegrationMock{})
		resp := doRequest(router, http.MethodPost, "/questions/7/answers",
			`{"content":"use the chain rule"}`, "tutorbob", "tutor")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"answer_id":1`)
	})

	t.Run("post answer unauthenticated", func(t *testing.T) {
		router := buildQARouter(t, questions, &answerRepoIntegrationMock{})
		resp := doRequest(router, http.MethodPost, "/questions/7/answers",
			`{"content":"x"}`, "", "")
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("rate by non-author", func(t *testing.T) {
		router := buildQARouter(t, questions, &answerRepoIntegrationMock{})
		resp := doRequest(router, http.MethodPost, "/questions/7/answers/1/rating",
			`{"rating":5}`, "mallory", "student")
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("rate already decided", func(t *testing.T) {
		router := buildQARouter(t, questions, &answerRepoIntegrationMock{rateErr: repository.ErrAnswerNotPending})
		resp := doRequest(router, http.MethodPost, "/questions/7/answers/1/rating",
			`{"rating":5}`, "alice", "student")
		require.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("rate success", func(t *testing.T) {
		router := buildQARouter(t, questions, &answerRepoIntegrationMock{})
		resp := doRequest(router, http.MethodPost, "/questions/7/answers/1/rating",
			`{"rating":5,"feedback":"clear"}`, "alice", "student")
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("rate via flat route", func(t *testing.T) {
		router := buildQARouter(t, questions, &answerRepoIntegrationMock{})
		resp := doRequest(router, http.MethodPost, "/answers/1/rating",
			`{"question_id":7,"rating":5}`, "alice", "student")
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("feedback trail empty", func(t *testing.T) {
		router := buildQARouter(t, questions, &answerRepoIntegrationMock{})
		resp := doRequest(router, http.MethodGet, "/questions/7/answers/1/feedback", "", "", "")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"data":[]`)
	})
}

type applicationRepoIntegrationMock struct {
	app *models.TutorApplication
}

func (m *applicationRepoIntegrationMock) Create(ctx context.Context, app *models.TutorApplication) error {
	app.ID = 1
	m.app = app
	return nil
}

func (m *applicationRepoIntegrationMock) HasPending(ctx context.Context, username string) (bool, error) {
	return m.app != nil && m.app.Status == models.ApplicationPending, nil
}

func (m *applicationRepoIntegrationMock) FindByUsername(ctx context.Context, username string) (*models.TutorApplication, error) {
	if m.app == nil {
		return nil, sql.ErrNoRows
	}
	return m.app, nil
}

func (m *applicationRepoIntegrationMock) List(ctx context.Context, status string) ([]models.TutorApplication, error) {
	return nil, nil
}

func (m *applicationRepoIntegrationMock) Review(ctx context.Context, id int64, decision models.ApplicationStatus, feedback string) (*models.TutorApplication, error) {
	if m.app == nil || m.app.ID != id {
		return nil, sql.ErrNoRows
	}
	if m.app.Status != models.ApplicationPending {
		return nil, repository.ErrApplicationNotPending
	}
	m.app.Status = decision
	return m.app, nil
}

type accountGetterIntegrationMock struct {
	accounts map[string]*models.Account
}

func (m *accountGetterIntegrationMock) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	account, ok := m.accounts[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return account, nil
}

func buildApplicationRouter(t *testing.T, apps *applicationRepoIntegrationMock, accounts *accountGetterIntegrationMock) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(testClaimsMiddleware())

	svc := service.NewTutorApplicationService(apps, accounts, validator.New(), zap.NewNop())
	h := NewTutorApplicationHandler(svc)

	router.POST("/tutor-applications", h.Submit)
	router.POST("/tutor-applications/:id/review", h.Review)
	router.PATCH("/tutor-applications/:id/review", h.Review)

	return router
}

func TestTutorApplicationReviewRoutesIntegration(t *testing.T) {
	accounts := &accountGetterIntegrationMock{accounts: map[string]*models.Account{
		"mallory": {Username: "mallory", Role: models.RoleStudent},
		"root":    {Username: "root", Role: models.RoleAdmin},
	}}
	apps := &applicationRepoIntegrationMock{app: &models.TutorApplication{
		ID: 1, Username: "bob", Status: models.ApplicationPending,
	}}
	router := buildApplicationRouter(t, apps, accounts)

	t.Run("review by non-admin is unauthorized", func(t *testing.T) {
		resp := doRequest(router, http.MethodPatch, "/tutor-applications/1/review",
			`{"decision":"approved"}`, "mallory", "student")
		require.Equal(t, http.StatusUnauthorized, resp.Code)
		require.Equal(t, models.ApplicationPending, apps.app.Status)
	})

	t.Run("review by admin succeeds", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/tutor-applications/1/review",
			`{"decision":"approved"}`, "root", "admin")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, models.ApplicationApproved, apps.app.Status)
	})

	t.Run("second review conflicts", func(t *testing.T) {
		resp := doRequest(router, http.MethodPatch, "/tutor-applications/1/review",
			`{"decision":"rejected"}`, "root", "admin")
		require.Equal(t, http.StatusConflict, resp.Code)
		require.Equal(t, models.ApplicationApproved, apps.app.Status)
	})
}
