package dto

import (
	"strings"
	"time"

	"gestaopro/internal/domain/auth"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
	// bcrypt ignores input past 72 bytes
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name"`
}

// Domain returns the registration as the auth service takes it.
func (r RegisterRequest) Domain() auth.RegisterRequest {
	return auth.RegisterRequest{
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
		Name:     strings.TrimSpace(r.Name),
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Domain returns the login credentials.
func (r LoginRequest) Domain() auth.Credentials {
	return auth.Credentials{Email: strings.TrimSpace(r.Email), Password: r.Password}
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Profile is the public view of an account. Hash and lockout state stay server side.
type Profile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func NewProfile(u *auth.User) Profile {
	return Profile{
		ID:          u.ID.String(),
		Email:       u.Email,
		Name:        u.Name,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// Session answers a successful login.
type Session struct {
	Tokens auth.TokenPair `json:"tokens"`
	User   Profile        `json:"user"`
}

func NewSession(tokens *auth.TokenPair, u *auth.User) Session {
	return Session{Tokens: *tokens, User: NewProfile(u)}
}
