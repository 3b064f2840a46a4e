package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const entityTypeRole = "role"

// RoleService manages role definitions and enforces referential safety on
// deletion.
type RoleService struct {
	roles     repository.RoleRepository
	evaluator *authz.Evaluator
	registry  *authz.Registry
	recorder  *AuditRecorder
	logger    *zap.Logger
}

// NewRoleService constructs the service.
func NewRoleService(roles repository.RoleRepository, evaluator *authz.Evaluator, registry *authz.Registry, recorder *AuditRecorder, logger *zap.Logger) *RoleService {
	return &RoleService{
		roles:     roles,
		evaluator: evaluator,
		registry:  registry,
		recorder:  recorder,
		logger:    logger,
	}
}

// RoleInput describes a role create/update payload.
type RoleInput struct {
	Code         string
	Name         string
	Description  string
	Level        int
	Unrestricted bool
	Permissions  []domain.Permission
}

func (s *RoleService) validateInput(input RoleInput) error {
	if strings.TrimSpace(input.Code) == "" || strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("role code and name required", nil)
	}
	for _, p := range input.Permissions {
		if !s.registry.Defined(p) {
			return apperrors.NewValidationError("unknown permission",
				map[string]any{"permission": string(p)})
		}
	}
	return nil
}

// Create adds a role after validating every permission against the registry.
func (s *RoleService) Create(ctx context.Context, actor Actor, input RoleInput) (*domain.Role, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionManageRoles); err != nil {
		return nil, err
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	role := &domain.Role{
		Code:         strings.ToUpper(strings.TrimSpace(input.Code)),
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Level:        input.Level,
		Unrestricted: input.Unrestricted,
		Permissions:  input.Permissions,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeRole, role.ID, domain.AuditActionCreate,
		nil, Snapshot(role), actor.UserID, actor.SourceAddress)
	return role, nil
}

// Update replaces a role's definition. The code of a seeded default role is
// immutable.
func (s *RoleService) Update(ctx context.Context, actor Actor, roleID string, input RoleInput) (*domain.Role, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionManageRoles); err != nil {
		return nil, err
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if role.IsDefault && code != role.Code {
		return nil, apperrors.NewValidationError("default role code cannot change",
			map[string]any{"code": role.Code})
	}

	before := Snapshot(role)
	role.Code = code
	role.Name = strings.TrimSpace(input.Name)
	role.Description = input.Description
	role.Level = input.Level
	role.Unrestricted = input.Unrestricted
	role.Permissions = input.Permissions
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeRole, role.ID, domain.AuditActionUpdate,
		before, Snapshot(role), actor.UserID, actor.SourceAddress)
	return role, nil
}

// Delete removes a role. Roles still referenced by users, and the seeded
// defaults, cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, actor Actor, roleID string) error {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionManageRoles); err != nil {
		return err
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if role.IsDefault {
		return apperrors.NewConflict("default roles cannot be deleted", nil)
	}
	count, err := s.roles.CountUsers(ctx, role.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewConflict(
			fmt.Sprintf("role is assigned to %d user(s)", count), nil)
	}

	before := Snapshot(role)
	if err := s.roles.Delete(ctx, role.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.recorder.Record(ctx, entityTypeRole, role.ID, domain.AuditActionDelete,
		before, nil, actor.UserID, actor.SourceAddress)
	return nil
}

// Get returns a role by id.
func (s *RoleService) Get(ctx context.Context, actor Actor, roleID string) (*domain.Role, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewUsers, domain.PermissionManageRoles); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return role, nil
}

// List returns all roles ordered by level.
func (s *RoleService) List(ctx context.Context, actor Actor) ([]domain.Role, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewUsers, domain.PermissionManageRoles); err != nil {
		return nil, err
	}
	return s.roles.List(ctx)
}

// Permissions exposes the registry's catalog with display labels.
func (s *RoleService) Permissions(ctx context.Context, actor Actor) ([]domain.Permission, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewUsers, domain.PermissionManageRoles); err != nil {
		return nil, err
	}
	return s.registry.List(), nil
}

// seededRole is a role created at startup when missing.
type seededRole struct {
	code         string
	name         string
	level        int
	unrestricted bool
	permissions  []domain.Permission
}

var defaultRoles = []seededRole{
	{
		code:         domain.RoleCodeSuperAdmin,
		name:         "Super Administrator",
		level:        100,
		unrestricted: true,
	},
	{
		code:  domain.RoleCodeManager,
		name:  "Manager",
		level: 50,
		permissions: []domain.Permission{
			domain.PermissionViewTickets, domain.PermissionViewAllTickets,
			domain.PermissionCreateTicket, domain.PermissionUpdateTicket,
			domain.PermissionAssignTicket, domain.PermissionApproveTicket,
			domain.PermissionDeleteTicket,
			domain.PermissionViewUsers, domain.PermissionCreateUser,
			domain.PermissionUpdateUser,
			domain.PermissionViewCustomers, domain.PermissionViewAllCustomers,
			domain.PermissionCreateCustomer, domain.PermissionUpdateCustomer,
			domain.PermissionDeleteCustomer,
			domain.PermissionViewInventory, domain.PermissionCreateItem,
			domain.PermissionUpdateItem, domain.PermissionDeleteItem,
			domain.PermissionMoveStock, domain.PermissionExportInventory,
			domain.PermissionViewInstallations, domain.PermissionCreateInstallation,
			domain.PermissionUpdateInstallation, domain.PermissionCancelInstallation,
			domain.PermissionViewDashboard, domain.PermissionViewActivityLog,
		},
	},
	{
		code:  domain.RoleCodeEngineer,
		name:  "Engineer",
		level: 20,
		permissions: []domain.Permission{
			domain.PermissionViewTickets, domain.PermissionCreateTicket,
			domain.PermissionUpdateTicket,
			domain.PermissionViewCustomers,
			domain.PermissionViewInventory, domain.PermissionMoveStock,
			domain.PermissionViewInstallations, domain.PermissionCreateInstallation,
			domain.PermissionUpdateInstallation,
			domain.PermissionViewDashboard,
		},
	},
	{
		code:  domain.RoleCodeViewer,
		name:  "Viewer",
		level: 0,
		permissions: []domain.Permission{
			domain.PermissionViewTickets,
			domain.PermissionViewCustomers,
			domain.PermissionViewInventory,
			domain.PermissionViewDashboard,
		},
	},
}

// SeedDefaults creates the built-in roles when absent. Existing rows are left
// untouched so operator customizations survive restarts.
func (s *RoleService) SeedDefaults(ctx context.Context) error {
	for _, seed := range defaultRoles {
		_, err := s.roles.GetByCode(ctx, seed.code)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}
		role := &domain.Role{
			Code:         seed.code,
			Name:         seed.name,
			Level:        seed.level,
			Unrestricted: seed.unrestricted,
			IsDefault:    true,
			Permissions:  seed.permissions,
		}
		if err := s.roles.Create(ctx, role); err != nil {
			return apperrors.MapError(err)
		}
		s.logger.Info("seeded default role", zap.String("code", seed.code))
	}
	return nil
}
