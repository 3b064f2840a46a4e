package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/notify"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const resetTokenKeyPrefix = "pwreset:"

// AuthService handles login, password changes and reset flows. Reset tokens
// live in Redis with a TTL so they expire without a sweeper.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	redis      *redis.Client
	email      notify.EmailSender
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// NewAuthService constructs the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, rdb *redis.Client, email notify.EmailSender, logger *zap.Logger, bcryptCost, resetTTLMinutes int) *AuthService {
	if resetTTLMinutes <= 0 {
		resetTTLMinutes = 30
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		redis:      rdb,
		email:      email,
		logger:     logger,
		bcryptCost: bcryptCost,
		resetTTL:   time.Duration(resetTTLMinutes) * time.Minute,
	}
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login verifies credentials and issues a JWT. Inactive accounts and unknown
// emails both report invalid credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.IsActive() {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("current password incorrect")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

// RequestPasswordReset issues a one-time token for the account and mails it.
// Unknown emails are silently accepted so the endpoint does not leak accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if !user.IsActive() {
		return nil
	}

	token, err := randomToken()
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.redis.Set(ctx, resetTokenKeyPrefix+token, user.ID, s.resetTTL).Err(); err != nil {
		return apperrors.MapError(err)
	}

	if s.email != nil {
		if err := s.email.SendEmail(ctx, user.Email, "password_reset",
			map[string]string{"name": user.Name, "token": token}); err != nil {
			s.logger.Warn("password reset email failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password. The token is
// deleted before the update so it cannot be replayed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	key := resetTokenKeyPrefix + token
	userID, err := s.redis.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperrors.NewUnauthorized("invalid or expired reset token")
		}
		return apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
