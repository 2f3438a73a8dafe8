package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Password reset state. Only the SHA-256 hash of the reset token is
	// stored; the raw token goes back to the caller once.
	ResetPasswordToken   *string    `json:"-" db:"reset_password_token"`
	ResetPasswordExpires *time.Time `json:"-" db:"reset_password_expires"`
}

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// CallerIdentity is resolved by the request layer and threaded explicitly
// into every service call. The calculation core never reads ambient auth
// state.
type CallerIdentity struct {
	Authenticated bool
	Role          UserRole
	UserID        string
}

func (c CallerIdentity) IsAdmin() bool {
	return c.Authenticated && c.Role == RoleAdmin
}

type Claims struct {
	jwt.RegisteredClaims
	Id     string `json:"claim_id"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type UserSession struct {
	ID         string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	TokenHash  string    `json:"token_hash"`
	DeviceInfo *string   `json:"device_info"`
	IPAddress  *string   `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsActive   bool      `json:"is_active"`
}
