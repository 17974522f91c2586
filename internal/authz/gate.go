// Package authz is the single source of truth for role and ownership
// decisions. Services and middleware consult these predicates; nothing
// else hardcodes role checks.
package authz

import "github.com/pandalearn/tutorhub-api/internal/models"

// DashboardKind selects which dashboard view is being requested.
type DashboardKind string

const (
	DashboardUser  DashboardKind = "user"
	DashboardTutor DashboardKind = "tutor"
	DashboardAdmin DashboardKind = "admin"
)

// CanPostQuestion reports whether the account may create questions.
// Any authenticated account qualifies.
func CanPostQuestion(account *models.Account) bool {
	return account != nil
}

// CanPostAnswer reports whether the account may answer questions.
// Any authenticated account may answer; the stricter tutor-only gate some
// clients apply is advisory, not enforced here.
func CanPostAnswer(account *models.Account) bool {
	return account != nil
}

// CanRateAnswer reports whether the account may rate answers to the given
// question. Only the question's author qualifies.
func CanRateAnswer(account *models.Account, question *models.Question) bool {
	if account == nil || question == nil {
		return false
	}
	return account.Username == question.AuthorUsername
}

// CanReviewApplication reports whether the account may review tutor
// applications.
func CanReviewApplication(account *models.Account) bool {
	return account != nil && account.Role == models.RoleAdmin
}

// CanViewDashboard reports whether the account may view the given dashboard.
func CanViewDashboard(account *models.Account, kind DashboardKind) bool {
	if account == nil {
		return false
	}
	switch kind {
	case DashboardUser:
		return true
	case DashboardTutor:
		return account.Role == models.RoleTutor || account.Role == models.RoleAdmin
	case DashboardAdmin:
		return account.Role == models.RoleAdmin
	}
	return false
}
