package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pandalearn/tutorhub-api/internal/middleware"
	"github.com/pandalearn/tutorhub-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func accountFromContext(c *gin.Context) *models.Account {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil
	}
	return &models.Account{Username: claims.Username, Role: claims.Role}
}

func paramInt64(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
