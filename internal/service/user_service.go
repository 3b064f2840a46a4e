package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const entityTypeUser = "user"

// UserService manages staff accounts. Accounts with ticket history are never
// hard-deleted, only deactivated.
type UserService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	evaluator  *authz.Evaluator
	recorder   *AuditRecorder
	logger     *zap.Logger
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, roles repository.RoleRepository, evaluator *authz.Evaluator, recorder *AuditRecorder, logger *zap.Logger, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		roles:      roles,
		evaluator:  evaluator,
		recorder:   recorder,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// UserCreateInput describes a new account.
type UserCreateInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	RoleID   string
}

// UserUpdateInput describes a profile/role update. Nil fields are unchanged.
type UserUpdateInput struct {
	Name   *string
	Phone  *string
	RoleID *string
	Status *domain.UserStatus
}

// Create registers a new account with a hashed password.
func (s *UserService) Create(ctx context.Context, actor Actor, input UserCreateInput) (*domain.User, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionCreateUser); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if strings.TrimSpace(input.Name) == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if _, err := s.roles.GetByID(ctx, input.RoleID); err != nil {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		RoleID:       input.RoleID,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeUser, user.ID, domain.AuditActionCreate,
		nil, userSnapshot(user), actor.UserID, actor.SourceAddress)
	return user, nil
}

// Update applies partial changes to an account. Role changes take effect on
// the target's next request.
func (s *UserService) Update(ctx context.Context, actor Actor, userID string, input UserUpdateInput) (*domain.User, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateUser); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	before := userSnapshot(user)
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.RoleID != nil {
		if _, err := s.roles.GetByID(ctx, *input.RoleID); err != nil {
			return nil, apperrors.MapError(err)
		}
		user.RoleID = *input.RoleID
	}
	if input.Status != nil {
		user.Status = *input.Status
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeUser, user.ID, domain.AuditActionUpdate,
		before, userSnapshot(user), actor.UserID, actor.SourceAddress)
	return user, nil
}

// Delete removes an account that never touched a ticket; otherwise the
// account is deactivated so history stays referable.
func (s *UserService) Delete(ctx context.Context, actor Actor, userID string) error {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionDeleteUser); err != nil {
		return err
	}
	if userID == actor.UserID {
		return apperrors.NewValidationError("cannot delete own account", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}

	before := userSnapshot(user)
	count, err := s.users.CountTickets(ctx, user.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		user.Status = domain.UserStatusInactive
		if err := s.users.Update(ctx, user); err != nil {
			return apperrors.MapError(err)
		}
		s.recorder.Record(ctx, entityTypeUser, user.ID, domain.AuditActionUpdate,
			before, userSnapshot(user), actor.UserID, actor.SourceAddress)
		s.logger.Info("user deactivated instead of deleted",
			zap.String("user_id", user.ID), zap.Int("ticket_count", count))
		return nil
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.recorder.Record(ctx, entityTypeUser, user.ID, domain.AuditActionDelete,
		before, nil, actor.UserID, actor.SourceAddress)
	return nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, actor Actor, userID string) (*domain.User, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewUsers); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns accounts matching the filter.
func (s *UserService) List(ctx context.Context, actor Actor, filter repository.UserFilter) ([]domain.User, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewUsers); err != nil {
		return nil, err
	}
	return s.users.List(ctx, filter)
}

// userSnapshot redacts the password hash before auditing.
func userSnapshot(user *domain.User) map[string]any {
	snap := Snapshot(user)
	delete(snap, "PasswordHash")
	return snap
}
