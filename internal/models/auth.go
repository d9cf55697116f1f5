package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new account. ManagerID is only honoured for
// employees.
type RegisterRequest struct {
	FullName   string   `json:"full_name" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=6"`
	Role       UserRole `json:"role" validate:"required,oneof=employee manager admin"`
	Department string   `json:"department" validate:"required"`
	ManagerID  *string  `json:"manager_id,omitempty"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	IssuedAt  time.Time `json:"issued_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	FullName   string   `json:"full_name"`
	Role       UserRole `json:"role"`
	Department string   `json:"department"`
}

// JWTClaims are the custom claims embedded in access tokens.
type JWTClaims struct {
	UserID string   `json:"uid"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts the claims into a request identity.
func (c *JWTClaims) Identity() Identity {
	return Identity{UserID: c.UserID, Role: c.Role}
}
