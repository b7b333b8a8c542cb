package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/tx"
	"gestaopro/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
	BcryptCost         int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		BcryptCost:         bcrypt.DefaultCost,
	}
}

// Service provides authentication logic.
type Service struct {
	users      UserStore
	sessions   SessionStore
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	users UserStore,
	sessions SessionStore,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// JWT returns the token validator used by the auth middleware.
func (s *Service) JWT() *JWTService {
	return s.jwtService
}

// Register registers a new user.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := NormalizeEmail(req.Email)
	if email == "" {
		return nil, apperror.NewFieldValidation("email", "email is required")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewFieldValidation("password",
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength))
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := NewUser(email, string(passwordHash), req.Name)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.users.EmailTaken(ctx, email)
		if err != nil {
			return fmt.Errorf("check email exists: %w", err)
		}
		if exists {
			return apperror.NewConflict("email already registered").WithDetail("email", email)
		}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login authenticates user and returns tokens.
func (s *Service) Login(ctx context.Context, creds Credentials, client ClientInfo) (*TokenPair, *User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.users.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record failed login", "user_id", user.ID, "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	tokens, err := s.generateTokenPair(ctx, user, client)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	user.RecordSuccessfulLogin()
	if err := s.users.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)
	return tokens, user, nil
}

// RefreshToken exchanges a refresh token for a new pair. The old token is revoked.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string, client ClientInfo) (*TokenPair, error) {
	var tokens *TokenPair
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		token, err := s.sessions.FindByHash(ctx, hashToken(refreshToken))
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewUnauthorized("invalid refresh token")
			}
			return fmt.Errorf("find refresh token: %w", err)
		}
		if !token.IsValid() {
			return apperror.NewUnauthorized("refresh token expired or revoked")
		}

		user, err := s.users.GetByID(ctx, token.UserID)
		if err != nil {
			return apperror.NewUnauthorized("user not found")
		}
		if err := user.CanLogin(); err != nil {
			return err
		}

		if err := s.sessions.Revoke(ctx, token.ID, "refreshed"); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		tokens, err = s.generateTokenPair(ctx, user, client)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// Logout revokes all refresh tokens of the current user.
func (s *Service) Logout(ctx context.Context) error {
	userID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	if err := s.sessions.RevokeAll(ctx, userID, "logout"); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	logger.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// Me returns the current user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	userID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, userID)
}

// GetUserByID retrieves user by id.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("user", userID.String())
		}
		return nil, err
	}
	return user, nil
}

// CleanupExpiredTokens removes revoked and expired refresh tokens.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return s.sessions.PurgeStale(ctx, time.Now().UTC())
}

// generateTokenPair creates access and refresh tokens.
func (s *Service) generateTokenPair(ctx context.Context, user *User, client ClientInfo) (*TokenPair, error) {
	refreshTokenRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	refreshToken := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: now.Add(s.config.RefreshTokenExpiry),
		CreatedAt: now,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}
	if err := s.sessions.Issue(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user, refreshToken.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// hashToken creates SHA256 hash of token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
