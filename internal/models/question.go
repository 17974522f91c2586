package models

import "time"

// QuestionStatus tracks the lifecycle of a question.
type QuestionStatus string

const (
	QuestionOpen     QuestionStatus = "open"
	QuestionAnswered QuestionStatus = "answered"
	QuestionClosed   QuestionStatus = "closed"
)

// Subjects is the fixed subject enumeration questions and tutor
// applications may reference.
var Subjects = []string{
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biology",
	"Computer Science",
	"History",
	"Geography",
	"Literature",
	"Languages",
	"Economics",
	"Business",
	"Psychology",
	"Philosophy",
	"Art",
	"Music",
	"Other",
}

// ValidSubject reports whether the subject belongs to the enumeration.
func ValidSubject(subject string) bool {
	for _, s := range Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// ValidQuestionStatus reports whether the status is a known value.
func ValidQuestionStatus(status QuestionStatus) bool {
	switch status {
	case QuestionOpen, QuestionAnswered, QuestionClosed:
		return true
	}
	return false
}

// ValidQuestionTransition reports whether a status change is allowed.
// Questions only move forward: open -> answered, open -> closed,
// answered -> closed.
func ValidQuestionTransition(from, to QuestionStatus) bool {
	switch from {
	case QuestionOpen:
		return to == QuestionAnswered || to == QuestionClosed
	case QuestionAnswered:
		return to == QuestionClosed
	}
	return false
}

// Attachment is file metadata attached to a question. Upload storage is
// external; only the reference is persisted.
type Attachment struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	URL  string `db:"url" json:"url"`
	Type string `db:"type" json:"type"`
}

// Question is a post seeking an answer, owned by an account.
type Question struct {
	ID             int64          `db:"id" json:"id"`
	AuthorUsername string         `db:"author_username" json:"author_username"`
	Title          string         `db:"title" json:"title"`
	Content        string         `db:"content" json:"content"`
	Subject        string         `db:"subject" json:"subject"`
	Status         QuestionStatus `db:"status" json:"status"`
	Tags           []string       `db:"-" json:"tags"`
	Attachments    []Attachment   `db:"-" json:"file_attachments,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// QuestionFilter captures the listing filter: free-text search over title,
// content and tags, plus exact subject/status matches.
type QuestionFilter struct {
	Search  string
	Subject string
	Status  string
}
