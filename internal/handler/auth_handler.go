package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pandalearn/tutorhub-api/internal/models"
	"github.com/pandalearn/tutorhub-api/internal/service"
	appErrors "github.com/pandalearn/tutorhub-api/pkg/errors"
	"github.com/pandalearn/tutorhub-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Signup registers a new account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signup payload"))
		return
	}

	account, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, account)
}

// Login authenticates a user and issues tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout ends the caller's session. With a session_token in the body
// only that session is revoked; with no body every active session for
// the caller is revoked.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		SessionToken string `json:"session_token"`
	}
	// Body is optional on DELETE.
	_ = c.ShouldBindJSON(&payload)

	var err error
	if payload.SessionToken != "" {
		err = h.service.Logout(c.Request.Context(), payload.SessionToken, claims.Username)
	} else {
		err = h.service.LogoutAll(c.Request.Context(), claims.Username)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"logged_out": true}, nil)
}

// Me returns the authenticated user's identity from the token claims.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"username": claims.Username,
		"role":     claims.Role,
	}, nil)
}
