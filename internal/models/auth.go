package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is a server-side, revocable login session. The opaque token is
// presented alongside the access JWT and lets the server invalidate logins.
type Session struct {
	ID        string     `db:"id" json:"id"`
	Username  string     `db:"username" json:"username"`
	Token     string     `db:"token" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// SignupRequest holds the payload for creating an account.
type SignupRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=1,max=15"`
	Password string `json:"password" validate:"required,alphanum,min=6,max=15"`
	Role     string `json:"role" validate:"required,oneof=student tutor admin"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued tokens and account info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	SessionToken string    `json:"session_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
