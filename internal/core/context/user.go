// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
)

// UserContext contains authenticated user information.
// UserID is also the owner partition key of every stored record.
type UserContext struct {
	UserID    string
	Email     string
	Name      string
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// RequireOwnerID returns the owner partition key for the authenticated user.
func RequireOwnerID(ctx context.Context) (id.ID, error) {
	raw := GetUserID(ctx)
	if raw == "" {
		return id.Nil(), apperror.NewUnauthorized("authentication required")
	}
	ownerID, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewUnauthorized("invalid user id in token")
	}
	return ownerID, nil
}

// WithOwner is a shortcut used by background jobs and tests to act as a given owner.
func WithOwner(ctx context.Context, ownerID id.ID) context.Context {
	return WithUser(ctx, &UserContext{UserID: ownerID.String()})
}
