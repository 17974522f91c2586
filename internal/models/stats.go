package models

// DateCount is a per-day bucket used for activity charts.
type DateCount struct {
	Date  string `db:"date" json:"date"`
	Count int    `db:"count" json:"count"`
}

// SubjectCount is the number of questions posted under a subject.
type SubjectCount struct {
	Subject string `db:"subject" json:"subject"`
	Count   int    `db:"count" json:"count"`
}

// CategoryCount is a labelled bucket, e.g. AI vs human answers.
type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int    `db:"count" json:"count"`
}

// AIModelStats summarizes answer quality per AI model.
type AIModelStats struct {
	Model          string  `db:"model" json:"model"`
	AnswersCount   int     `db:"answers_count" json:"answers_count"`
	AcceptedCount  int     `db:"accepted_count" json:"accepted_count"`
	AverageRating  float64 `db:"average_rating" json:"average_rating"`
	AcceptanceRate float64 `db:"-" json:"acceptance_rate"`
}

// TutorStats summarizes a tutor's answering activity.
type TutorStats struct {
	Username      string  `db:"username" json:"username"`
	AnswersCount  int     `db:"answers_count" json:"answers_count"`
	AcceptedCount int     `db:"accepted_count" json:"accepted_count"`
	RejectedCount int     `db:"rejected_count" json:"rejected_count"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
}

// PlatformStats is the admin dashboard aggregate.
type PlatformStats struct {
	TotalQuestions      int             `json:"total_questions"`
	TotalAnswers        int             `json:"total_answers"`
	TotalUsers          int             `json:"total_users"`
	TotalTutors         int             `json:"total_tutors"`
	QuestionsPerDay     []DateCount     `json:"questions_per_day"`
	SubjectDistribution []SubjectCount  `json:"subject_distribution"`
	AIVsHumanAnswers    []CategoryCount `json:"ai_vs_human_answers"`
	AIModelStats        []AIModelStats  `json:"ai_model_stats"`
}
