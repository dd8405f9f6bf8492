package model

import "time"

type AdminStatus string

const (
	AdminStatusActive AdminStatus = "active"
	AdminStatusLocked AdminStatus = "locked"
)

type AdminUser struct {
	Base
	Email            string      `db:"email" json:"email"`
	Name             string      `db:"name" json:"name"`
	PasswordHash     string      `db:"password_hash" json:"-"`
	Status           AdminStatus `db:"status" json:"status"`
	LoginAttempts    int         `db:"login_attempts" json:"-"`
	LastLoginAttempt time.Time   `db:"last_login_attempt" json:"-"`
	LastLoginAt      *time.Time  `db:"last_login_at" json:"last_login_at,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
