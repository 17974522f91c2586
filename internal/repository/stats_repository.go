package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pandalearn/tutorhub-api/internal/models"
)

// StatsRepository aggregates platform activity for the admin and tutor
// dashboards.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals returns the headline counters.
func (r *StatsRepository) Totals(ctx context.Context) (questions, answers, users, tutors int, err error) {
	const query = `SELECT
(SELECT COUNT(*) FROM questions),
(SELECT COUNT(*) FROM answers),
(SELECT COUNT(*) FROM accounts),
(SELECT COUNT(*) FROM accounts WHERE role = 'tutor')`
	row := r.db.QueryRowxContext(ctx, query)
	if err = row.Scan(&questions, &answers, &users, &tutors); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("stats totals: %w", err)
	}
	return questions, answers, users, tutors, nil
}

// QuestionsPerDay returns daily question counts for the trailing window.
func (r *StatsRepository) QuestionsPerDay(ctx context.Context, days int) ([]models.DateCount, error) {
	if days <= 0 {
		days = 30
	}
	const query = `SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
FROM questions
WHERE created_at >= NOW() - ($1 || ' days')::interval
GROUP BY created_at::date ORDER BY created_at::date`
	var counts []models.DateCount
	if err := r.db.SelectContext(ctx, &counts, query, days); err != nil {
		return nil, fmt.Errorf("questions per day: %w", err)
	}
	return counts, nil
}

// SubjectDistribution returns question counts grouped by subject.
func (r *StatsRepository) SubjectDistribution(ctx context.Context) ([]models.SubjectCount, error) {
	const query = `SELECT subject, COUNT(*) AS count FROM questions GROUP BY subject ORDER BY count DESC, subject`
	var counts []models.SubjectCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("subject distribution: %w", err)
	}
	return counts, nil
}

// AIVsHumanAnswers splits the answer count by origin.
func (r *StatsRepository) AIVsHumanAnswers(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `SELECT CASE WHEN is_ai_generated THEN 'ai' ELSE 'human' END AS category, COUNT(*) AS count
FROM answers GROUP BY is_ai_generated ORDER BY category`
	var counts []models.CategoryCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("ai vs human answers: %w", err)
	}
	return counts, nil
}

// AIModelStats returns per-model answer quality aggregates.
func (r *StatsRepository) AIModelStats(ctx context.Context) ([]models.AIModelStats, error) {
	const query = `SELECT ai_model AS model,
COUNT(*) AS answers_count,
COUNT(*) FILTER (WHERE status = 'accepted') AS accepted_count,
COALESCE(AVG(rating), 0) AS average_rating
FROM answers WHERE is_ai_generated AND ai_model IS NOT NULL
GROUP BY ai_model ORDER BY answers_count DESC`
	var stats []models.AIModelStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("ai model stats: %w", err)
	}
	return stats, nil
}

// TutorStats returns per-tutor answering aggregates.
func (r *StatsRepository) TutorStats(ctx context.Context) ([]models.TutorStats, error) {
	const query = `SELECT a.author_username AS username,
COUNT(*) AS answers_count,
COUNT(*) FILTER (WHERE a.status = 'accepted') AS accepted_count,
COUNT(*) FILTER (WHERE a.status = 'rejected') AS rejected_count,
COALESCE(AVG(a.rating), 0) AS average_rating
FROM answers a JOIN accounts acc ON acc.username = a.author_username
WHERE acc.role = 'tutor'
GROUP BY a.author_username ORDER BY accepted_count DESC, average_rating DESC`
	var stats []models.TutorStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("tutor stats: %w", err)
	}
	return stats, nil
}
