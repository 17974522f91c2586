package main

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/pandalearn/tutorhub-api/internal/handler"
	"github.com/pandalearn/tutorhub-api/internal/repository"
	"github.com/pandalearn/tutorhub-api/internal/router"
	"github.com/pandalearn/tutorhub-api/internal/service"
	"github.com/pandalearn/tutorhub-api/pkg/cache"
	"github.com/pandalearn/tutorhub-api/pkg/config"
	"github.com/pandalearn/tutorhub-api/pkg/database"
	"github.com/pandalearn/tutorhub-api/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	accountRepo := repository.NewAccountRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	applicationRepo := repository.NewTutorApplicationRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(accountRepo, validate, logr, service.AuthConfig{
		JWTSecret:       cfg.Auth.JWTSecret,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		SessionTokenTTL: cfg.Auth.SessionTokenTTL,
		Issuer:          cfg.Auth.Issuer,
		BcryptCost:      cfg.Auth.BcryptCost,
		SingleSession:   cfg.Auth.SingleSessionPer,
	})
	questionService := service.NewQuestionService(questionRepo, accountRepo, validate, logr)
	answerService := service.NewAnswerService(answerRepo, questionRepo, validate, logr)
	applicationService := service.NewTutorApplicationService(applicationRepo, accountRepo, validate, logr)
	statsService := service.NewStatsService(statsRepo, cacheRepo, metricsService, logr, service.StatsOptions{
		CacheEnabled: cfg.Stats.CacheEnabled && redisClient != nil,
		CacheTTL:     cfg.Stats.CacheTTL,
	})

	handlers := router.Handlers{
		Auth:             handler.NewAuthHandler(authService),
		Question:         handler.NewQuestionHandler(questionService),
		Answer:           handler.NewAnswerHandler(answerService),
		TutorApplication: handler.NewTutorApplicationHandler(applicationService),
		Stats:            handler.NewStatsHandler(statsService),
		Metrics:          handler.NewMetricsHandler(metricsService, db, redisClient),
	}

	r := router.New(cfg, logr, authService, metricsService, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
