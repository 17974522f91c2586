package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pandalearn/tutorhub-api/internal/authz"
	"github.com/pandalearn/tutorhub-api/internal/handler"
	"github.com/pandalearn/tutorhub-api/internal/middleware"
	"github.com/pandalearn/tutorhub-api/internal/models"
	"github.com/pandalearn/tutorhub-api/internal/service"
	"github.com/pandalearn/tutorhub-api/pkg/config"
	"github.com/pandalearn/tutorhub-api/pkg/logger"
	corsmiddleware "github.com/pandalearn/tutorhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/pandalearn/tutorhub-api/pkg/middleware/requestid"

	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers mounted by New.
type Handlers struct {
	Auth             *handler.AuthHandler
	Question         *handler.QuestionHandler
	Answer           *handler.AnswerHandler
	TutorApplication *handler.TutorApplicationHandler
	Stats            *handler.StatsHandler
	Metrics          *handler.MetricsHandler
}

// New builds the gin engine with the full route table.
func New(cfg *config.Config, logr *zap.Logger, authService *service.AuthService, metricsService *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(cfg.APIPrefix)

	// Canonical account and session routes.
	api.POST("/accounts", h.Auth.Signup)
	api.POST("/sessions", h.Auth.Login)
	api.DELETE("/sessions", middleware.JWT(authService), h.Auth.Logout)

	// Aliases kept for clients using the auth-prefixed surface.
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", middleware.JWT(authService), h.Auth.Logout)
		auth.GET("/me", middleware.JWT(authService), h.Auth.Me)
	}

	questions := api.Group("/questions")
	{
		questions.GET("", h.Question.List)
		questions.GET("/:id", h.Question.Get)
		questions.POST("", middleware.JWT(authService), h.Question.Create)
		questions.PATCH("/:id/status", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin), h.Question.SetStatus)

		questions.GET("/:id/answers", h.Answer.ListForQuestion)
		questions.POST("/:id/answers", middleware.JWT(authService), h.Answer.Create)
		questions.POST("/:id/answers/:answerId/rating", middleware.JWT(authService), h.Answer.Rate)
		questions.GET("/:id/answers/:answerId/feedback", h.Answer.Feedback)
	}

	// Flat rating route; answer identity is composite, so the question
	// id is read from the body.
	api.POST("/answers/:id/rating", middleware.JWT(authService), h.Answer.RateByAnswer)

	applications := api.Group("/tutor-applications", middleware.JWT(authService))
	{
		applications.POST("", h.TutorApplication.Submit)
		applications.GET("/mine", h.TutorApplication.Mine)
		applications.GET("", middleware.RequireRoles(models.RoleAdmin), h.TutorApplication.List)
		// No role guard here: the review service checks the reviewer's
		// stored account role and rejects non-admins as unauthorized.
		applications.POST("/:id/review", h.TutorApplication.Review)
		applications.PATCH("/:id/review", h.TutorApplication.Review)
	}

	stats := api.Group("/stats", middleware.JWT(authService))
	{
		stats.GET("/platform", middleware.Dashboard(authz.DashboardAdmin), h.Stats.Platform)
		stats.GET("/platform/export", middleware.Dashboard(authz.DashboardAdmin), h.Stats.ExportPlatform)
		stats.GET("/tutors", middleware.Dashboard(authz.DashboardTutor), h.Stats.Tutors)
	}

	return r
}
