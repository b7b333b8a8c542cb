package auth

import (
	"context"
	"time"

	"gestaopro/internal/core/id"
)

// UserStore persists accounts. Emails are stored normalized, see NormalizeEmail.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// EmailTaken reports whether an account already uses the email.
	EmailTaken(ctx context.Context, email string) (bool, error)

	// Update writes the profile and the failed-login bookkeeping.
	Update(ctx context.Context, user *User) error
}

// SessionStore persists refresh tokens. Only the SHA-256 hash of a token is kept.
type SessionStore interface {
	Issue(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	Revoke(ctx context.Context, tokenID id.ID, reason string) error
	RevokeAll(ctx context.Context, userID id.ID, reason string) error

	// PurgeStale deletes revoked tokens and tokens expired before now.
	PurgeStale(ctx context.Context, now time.Time) (int, error)
}
