package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pandalearn/tutorhub-api/internal/authz"
	"github.com/pandalearn/tutorhub-api/internal/models"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
	"github.com/pandalearn/tutorhub-api/pkg/response"
)

// RequireRoles enforces role-based access control for routes. Requests
// without claims are unauthorized; authenticated callers outside the
// allowed roles are forbidden.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Dashboard gates a dashboard view by kind using the token claims.
func Dashboard(kind authz.DashboardKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		account := &models.Account{Username: claims.Username, Role: claims.Role}
		if !authz.CanViewDashboard(account, kind) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
