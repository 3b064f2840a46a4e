package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// RoleSource resolves roles by ID. The evaluator loads role data on every
// check rather than caching it in the credential, so a revocation binds on the
// caller's next request.
type RoleSource interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
}

// Evaluator decides whether a principal's role permits an action.
type Evaluator struct {
	roles RoleSource
}

// NewEvaluator constructs the evaluator.
func NewEvaluator(roles RoleSource) *Evaluator {
	return &Evaluator{roles: roles}
}

// ResolveRole loads the principal's role. A missing role is ROLE_NOT_FOUND,
// distinct from a plain denial.
func (e *Evaluator) ResolveRole(ctx context.Context, roleID string) (*domain.Role, error) {
	role, err := e.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewRoleNotFound(roleID)
		}
		return nil, apperrors.MapError(err)
	}
	return role, nil
}

// ResolveGrant loads the role and derives its grant plus hierarchy level.
func (e *Evaluator) ResolveGrant(ctx context.Context, roleID string) (Grant, int, error) {
	role, err := e.ResolveRole(ctx, roleID)
	if err != nil {
		return Grant{}, 0, err
	}
	return GrantForRole(role), role.Level, nil
}

// HasAnyPermission reports whether the role covers at least one of required.
func (e *Evaluator) HasAnyPermission(ctx context.Context, roleID string, required ...domain.Permission) (bool, error) {
	grant, _, err := e.ResolveGrant(ctx, roleID)
	if err != nil {
		return false, err
	}
	return grant.AllowsAny(required...), nil
}

// Authorize fails with FORBIDDEN unless the role covers at least one of
// required. It must run strictly after authentication.
func (e *Evaluator) Authorize(ctx context.Context, roleID string, required ...domain.Permission) error {
	ok, err := e.HasAnyPermission(ctx, roleID, required...)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbidden("insufficient permission")
	}
	return nil
}

// IsRoleAtLeast compares hierarchy levels for the few operations gated by
// coarse rank instead of granular permissions.
func IsRoleAtLeast(level, required int) bool {
	return level >= required
}
