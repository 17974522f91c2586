package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pandalearn/tutorhub-api/internal/models"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
	"github.com/pandalearn/tutorhub-api/pkg/export"
)

const platformStatsCacheKey = "stats:platform"

type statsRepository interface {
	Totals(ctx context.Context) (questions, answers, users, tutors int, err error)
	QuestionsPerDay(ctx context.Context, days int) ([]models.DateCount, error)
	SubjectDistribution(ctx context.Context) ([]models.SubjectCount, error)
	AIVsHumanAnswers(ctx context.Context) ([]models.CategoryCount, error)
	AIModelStats(ctx context.Context) ([]models.AIModelStats, error)
	TutorStats(ctx context.Context) ([]models.TutorStats, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// StatsOptions controls caching of the platform dashboard payload.
type StatsOptions struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// StatsService computes dashboard aggregates and renders exports.
type StatsService struct {
	repo    statsRepository
	cache   statsCache
	metrics *MetricsService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	options StatsOptions
}

// NewStatsService creates a new stats service. The metrics service is
// optional and may be nil.
func NewStatsService(repo statsRepository, cache statsCache, metrics *MetricsService, logger *zap.Logger, options StatsOptions) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = 5 * time.Minute
	}
	return &StatsService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		options: options,
	}
}

// Platform assembles the admin dashboard aggregate. Results are served
// from Redis when caching is enabled; cache failures degrade to a
// direct computation.
func (s *StatsService) Platform(ctx context.Context) (*models.PlatformStats, error) {
	if s.options.CacheEnabled && s.cache != nil {
		var cached models.PlatformStats
		err := s.cache.Get(ctx, platformStatsCacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		}
		s.metrics.RecordCacheLookup(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("platform stats cache read failed", zap.Error(err))
		}
	}

	stats, err := s.computePlatform(ctx)
	if err != nil {
		return nil, err
	}

	if s.options.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, platformStatsCacheKey, stats, s.options.CacheTTL); err != nil {
			s.logger.Warn("platform stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *StatsService) computePlatform(ctx context.Context) (*models.PlatformStats, error) {
	questions, answers, users, tutors, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute totals")
	}

	perDay, err := s.repo.QuestionsPerDay(ctx, 30)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute daily activity")
	}

	subjects, err := s.repo.SubjectDistribution(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute subject distribution")
	}

	origin, err := s.repo.AIVsHumanAnswers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute answer origins")
	}

	aiModels, err := s.repo.AIModelStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute model stats")
	}
	for i := range aiModels {
		if aiModels[i].AnswersCount > 0 {
			aiModels[i].AcceptanceRate = float64(aiModels[i].AcceptedCount) / float64(aiModels[i].AnswersCount)
		}
	}

	return &models.PlatformStats{
		TotalQuestions:      questions,
		TotalAnswers:        answers,
		TotalUsers:          users,
		TotalTutors:         tutors,
		QuestionsPerDay:     perDay,
		SubjectDistribution: subjects,
		AIVsHumanAnswers:    origin,
		AIModelStats:        aiModels,
	}, nil
}

// Tutors returns per-tutor answering aggregates.
func (s *StatsService) Tutors(ctx context.Context) ([]models.TutorStats, error) {
	stats, err := s.repo.TutorStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute tutor stats")
	}
	if stats == nil {
		stats = []models.TutorStats{}
	}
	return stats, nil
}

// ExportPlatform renders the platform summary as a downloadable file.
// Supported formats are "csv" and "pdf".
func (s *StatsService) ExportPlatform(ctx context.Context, format string) (data []byte, contentType, filename string, err error) {
	stats, err := s.Platform(ctx)
	if err != nil {
		return nil, "", "", err
	}

	dataset := platformDataset(stats)
	stamp := time.Now().UTC().Format("2006-01-02")

	switch format {
	case "csv":
		data, err = s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", fmt.Sprintf("platform-stats-%s.csv", stamp), nil
	case "pdf":
		data, err = s.pdf.Render(dataset, "Platform Statistics")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", fmt.Sprintf("platform-stats-%s.pdf", stamp), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func platformDataset(stats *models.PlatformStats) export.Dataset {
	rows := []map[string]string{
		{"metric": "total_questions", "value": strconv.Itoa(stats.TotalQuestions)},
		{"metric": "total_answers", "value": strconv.Itoa(stats.TotalAnswers)},
		{"metric": "total_users", "value": strconv.Itoa(stats.TotalUsers)},
		{"metric": "total_tutors", "value": strconv.Itoa(stats.TotalTutors)},
	}
	for _, subject := range stats.SubjectDistribution {
		rows = append(rows, map[string]string{
			"metric": "questions_" + subject.Subject,
			"value":  strconv.Itoa(subject.Count),
		})
	}
	for _, bucket := range stats.AIVsHumanAnswers {
		rows = append(rows, map[string]string{
			"metric": "answers_" + bucket.Category,
			"value":  strconv.Itoa(bucket.Count),
		})
	}
	for _, model := range stats.AIModelStats {
		rows = append(rows, map[string]string{
			"metric": "model_" + model.Model + "_acceptance_rate",
			"value":  strconv.FormatFloat(model.AcceptanceRate, 'f', 2, 64),
		})
	}
	return export.Dataset{Headers: []string{"metric", "value"}, Rows: rows}
}
