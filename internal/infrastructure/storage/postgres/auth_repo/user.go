// Package auth_repo provides PostgreSQL storage for users and refresh tokens.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain/auth"
	"gestaopro/internal/infrastructure/storage/postgres"
)

const userColumns = `id, email, password_hash, name, is_active, last_login_at,
	failed_login_attempts, locked_until, created_at, updated_at`

// UserRepo implements auth.UserStore.
type UserRepo struct {
	txm *postgres.TxManager
}

var _ auth.UserStore = (*UserRepo)(nil)

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

// Create creates a new user. A taken email maps to a duplicate error.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID, user.Email, user.PasswordHash, user.Name, user.IsActive, user.LastLoginAt,
		user.FailedLoginAttempts, user.LockedUntil, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return postgres.MapError(err, "insert user")
	}
	return nil
}

func (r *UserRepo) getBy(ctx context.Context, column string, value any, ref string) (*auth.User, error) {
	var user auth.User
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &user,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	if pgxscan.NotFound(err) {
		return nil, apperror.NewNotFound("user", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getBy(ctx, "id", userID, userID.String())
}

// GetByEmail retrieves user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getBy(ctx, "email", auth.NormalizeEmail(email), email)
}

// Update writes profile fields and login bookkeeping.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, `
		UPDATE users SET
			email = $2, password_hash = $3, name = $4, is_active = $5, last_login_at = $6,
			failed_login_attempts = $7, locked_until = $8, updated_at = $9
		WHERE id = $1
	`, user.ID, user.Email, user.PasswordHash, user.Name, user.IsActive, user.LastLoginAt,
		user.FailedLoginAttempts, user.LockedUntil, user.UpdatedAt)
	if err != nil {
		return postgres.MapError(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID.String())
	}
	return nil
}

// EmailTaken reports whether the normalized email is taken.
func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT 1 FROM users WHERE email = $1`, auth.NormalizeEmail(email)).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}
