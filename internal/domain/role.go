package domain

import "time"

// Well-known role codes seeded at startup.
const (
	RoleCodeSuperAdmin = "SUPER_ADMIN"
	RoleCodeManager    = "MANAGER"
	RoleCodeEngineer   = "ENGINEER"
	RoleCodeViewer     = "VIEWER"
)

// Role bundles permissions for assignment to users. An unrestricted role
// bypasses its stored permission set entirely.
type Role struct {
	ID           string
	Code         string
	Name         string
	Description  string
	Level        int
	Unrestricted bool
	IsDefault    bool
	Permissions  []Permission
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPermission reports whether the stored set contains p. Callers should go
// through the authz evaluator, which also handles the unrestricted variant.
func (r *Role) HasPermission(p Permission) bool {
	for _, granted := range r.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}
