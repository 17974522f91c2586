package models

import (
	"time"

	"github.com/lib/pq"
)

// ApplicationStatus tracks the tutor application state machine.
// pending -> approved and pending -> rejected are the only transitions,
// both terminal.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// ValidApplicationStatus reports whether the status is a known value.
func ValidApplicationStatus(status ApplicationStatus) bool {
	switch status {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// TutorApplication is a request by an account to be granted the tutor role.
type TutorApplication struct {
	ID             int64             `db:"id" json:"id"`
	Username       string            `db:"username" json:"username"`
	Qualifications string            `db:"qualifications" json:"qualifications"`
	Experience     string            `db:"experience" json:"experience"`
	Subjects       pq.StringArray    `db:"subjects" json:"subjects"`
	Resume         *string           `db:"resume" json:"resume,omitempty"`
	Status         ApplicationStatus `db:"status" json:"status"`
	AdminFeedback  *string           `db:"admin_feedback" json:"admin_feedback,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}
