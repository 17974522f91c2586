package models

import "time"

// AnswerStatus tracks the review state of an answer.
type AnswerStatus string

const (
	AnswerPending  AnswerStatus = "pending"
	AnswerAccepted AnswerStatus = "accepted"
	AnswerRejected AnswerStatus = "rejected"
)

// Answer is a response to a question. Identity is composite: answer ids
// are allocated per question, so the same numeric id may appear under
// different questions.
type Answer struct {
	QuestionID     int64        `db:"question_id" json:"question_id"`
	AnswerID       int64        `db:"answer_id" json:"answer_id"`
	AuthorUsername string       `db:"author_username" json:"author_username"`
	Content        string       `db:"content" json:"content"`
	Status         AnswerStatus `db:"status" json:"status"`
	Rating         *int         `db:"rating" json:"rating,omitempty"`
	Feedback       *string      `db:"feedback" json:"feedback,omitempty"`
	IsAIGenerated  bool         `db:"is_ai_generated" json:"is_ai_generated"`
	AIModel        *string      `db:"ai_model" json:"ai_model,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// FeedbackEntry records a rating event against an answer.
type FeedbackEntry struct {
	ID         int64     `db:"id" json:"id"`
	QuestionID int64     `db:"question_id" json:"question_id"`
	AnswerID   int64     `db:"answer_id" json:"answer_id"`
	Username   string    `db:"username" json:"username"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
