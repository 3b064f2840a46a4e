package authz

import "github.com/spec-kit/support-desk/internal/domain"

// Grant is the evaluated authority of a role: either unrestricted or a scoped
// permission set. Call sites handle both forms through Allows instead of
// comparing role names.
type Grant struct {
	unrestricted bool
	perms        map[domain.Permission]struct{}
}

// Unrestricted returns a grant that allows everything.
func Unrestricted() Grant {
	return Grant{unrestricted: true}
}

// Scoped returns a grant limited to the given permissions.
func Scoped(perms []domain.Permission) Grant {
	set := make(map[domain.Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return Grant{perms: set}
}

// GrantForRole derives the grant from a role's stored state.
func GrantForRole(role *domain.Role) Grant {
	if role.Unrestricted {
		return Unrestricted()
	}
	return Scoped(role.Permissions)
}

// IsUnrestricted reports whether the grant bypasses permission checks.
func (g Grant) IsUnrestricted() bool {
	return g.unrestricted
}

// Allows reports whether the grant covers the permission.
func (g Grant) Allows(p domain.Permission) bool {
	if g.unrestricted {
		return true
	}
	_, ok := g.perms[p]
	return ok
}

// AllowsAny reports whether the grant covers at least one of the given
// permissions (OR semantics across alternatives).
func (g Grant) AllowsAny(perms ...domain.Permission) bool {
	if g.unrestricted {
		return true
	}
	for _, p := range perms {
		if _, ok := g.perms[p]; ok {
			return true
		}
	}
	return false
}
