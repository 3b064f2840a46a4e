package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// RequireAnyPermission gates a route on the caller holding at least one of the
// given permissions (OR semantics). Must be registered after the auth
// middleware.
func RequireAnyPermission(evaluator *authz.Evaluator, required ...domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := evaluator.Authorize(c.Context(), principal.RoleID(), required...); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireMinLevel gates a route on the caller's role hierarchy level, for the
// few operations ranked coarsely rather than by granular permission.
func RequireMinLevel(evaluator *authz.Evaluator, minLevel int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		grant, level, err := evaluator.ResolveGrant(c.Context(), principal.RoleID())
		if err != nil {
			return err
		}
		if grant.IsUnrestricted() {
			return c.Next()
		}
		if !authz.IsRoleAtLeast(level, minLevel) {
			return apperrors.NewForbidden("insufficient role level")
		}
		return c.Next()
	}
}
