package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain/audit"
	"gestaopro/internal/domain/auth"
)

// UserRepo implements auth.UserStore and auth.SessionStore.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *auth.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if u.Email == user.Email {
			return apperror.NewConflict("email already registered").WithDetail("email", user.Email)
		}
	}
	r.s.st.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, userID id.ID) (*auth.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.st.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *UserRepo) Update(_ context.Context, user *auth.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.users[user.ID]; !ok {
		return notFound("user", user.ID)
	}
	r.s.st.users[user.ID] = *user
	return nil
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepo) Issue(_ context.Context, token *auth.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.tokens[token.ID] = *token
	return nil
}

func (r *UserRepo) FindByHash(_ context.Context, tokenHash string) (*auth.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.st.tokens {
		if t.TokenHash == tokenHash {
			return &t, nil
		}
	}
	return nil, apperror.NewNotFound("refresh token", "")
}

func (r *UserRepo) Revoke(_ context.Context, tokenID id.ID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.tokens[tokenID]
	if !ok {
		return notFound("refresh token", tokenID)
	}
	revoke(&t, reason)
	r.s.st.tokens[tokenID] = t
	return nil
}

func (r *UserRepo) RevokeAll(_ context.Context, userID id.ID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for tid, t := range r.s.st.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			revoke(&t, reason)
			r.s.st.tokens[tid] = t
		}
	}
	return nil
}

func (r *UserRepo) PurgeStale(_ context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for tid, t := range r.s.st.tokens {
		if t.RevokedAt != nil || now.After(t.ExpiresAt) {
			delete(r.s.st.tokens, tid)
			n++
		}
	}
	return n, nil
}

func revoke(t *auth.RefreshToken, reason string) {
	now := time.Now().UTC()
	t.RevokedAt = &now
	t.RevokedReason = &reason
}

// AuditRecorder implements audit.Recorder.
type AuditRecorder struct{ s *Store }

func (a *AuditRecorder) LogChange(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) error {
	payload, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.st.audit = append(a.s.st.audit, audit.Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     appctx.GetUserID(ctx),
		Changes:    payload,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

func (a *AuditRecorder) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	userID := appctx.GetUserID(ctx)
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	out := make([]audit.Entry, 0)
	for _, e := range slices.Backward(a.s.st.audit) {
		if e.EntityType != entityType || e.EntityID != entityID || e.UserID != userID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

var (
	_ auth.UserStore    = (*UserRepo)(nil)
	_ auth.SessionStore = (*UserRepo)(nil)
	_ audit.Recorder    = (*AuditRecorder)(nil)
)
