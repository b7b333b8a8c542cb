package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain/auth"
	"gestaopro/internal/infrastructure/storage/postgres"
)

// TokenRepo implements auth.SessionStore over refresh_tokens.
type TokenRepo struct {
	txm *postgres.TxManager
}

var _ auth.SessionStore = (*TokenRepo)(nil)

// NewTokenRepo creates a new token repository.
func NewTokenRepo(txm *postgres.TxManager) *TokenRepo {
	return &TokenRepo{txm: txm}
}

func (r *TokenRepo) Issue(ctx context.Context, token *auth.RefreshToken) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, token.ID, token.UserID, token.TokenHash, token.ExpiresAt,
		token.CreatedAt, token.UserAgent, token.IPAddress)
	if err != nil {
		return postgres.MapError(err, "save refresh token")
	}
	return nil
}

func (r *TokenRepo) FindByHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	var token auth.RefreshToken
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &token, `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at, revoked_reason, user_agent, ip_address
		FROM refresh_tokens WHERE token_hash = $1
	`, tokenHash)
	if pgxscan.NotFound(err) {
		return nil, apperror.NewNotFound("refresh token", "")
	}
	if err != nil {
		return nil, fmt.Errorf("query token: %w", err)
	}
	return &token, nil
}

func (r *TokenRepo) Revoke(ctx context.Context, tokenID id.ID, reason string) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now(), revoked_reason = $2 WHERE id = $1`, tokenID, reason)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("refresh token", tokenID.String())
	}
	return nil
}

// RevokeAll leaves already revoked tokens with their original reason.
func (r *TokenRepo) RevokeAll(ctx context.Context, userID id.ID, reason string) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now(), revoked_reason = $2 WHERE user_id = $1 AND revoked_at IS NULL`,
		userID, reason)
	if err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}
	return nil
}

func (r *TokenRepo) PurgeStale(ctx context.Context, now time.Time) (int, error) {
	result, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1 OR revoked_at IS NOT NULL`, now)
	if err != nil {
		return 0, fmt.Errorf("cleanup tokens: %w", err)
	}
	return int(result.RowsAffected()), nil
}
