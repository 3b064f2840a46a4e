package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestScopedGrant(t *testing.T) {
	grant := Scoped([]domain.Permission{domain.PermissionViewTickets, domain.PermissionCreateTicket})

	assert.True(t, grant.Allows(domain.PermissionViewTickets))
	assert.False(t, grant.Allows(domain.PermissionDeleteTicket))
	assert.True(t, grant.AllowsAny(domain.PermissionDeleteTicket, domain.PermissionCreateTicket))
	assert.False(t, grant.AllowsAny(domain.PermissionDeleteTicket, domain.PermissionManageRoles))
	assert.False(t, grant.AllowsAny())
}

func TestUnrestrictedGrant(t *testing.T) {
	grant := Unrestricted()
	assert.True(t, grant.IsUnrestricted())
	assert.True(t, grant.Allows(domain.PermissionManageRoles))
	assert.True(t, grant.AllowsAny())
}

func TestGrantForRole(t *testing.T) {
	super := &domain.Role{Unrestricted: true}
	assert.True(t, GrantForRole(super).IsUnrestricted())

	scoped := &domain.Role{Permissions: []domain.Permission{domain.PermissionViewInventory}}
	grant := GrantForRole(scoped)
	assert.False(t, grant.IsUnrestricted())
	assert.True(t, grant.Allows(domain.PermissionViewInventory))
}

func TestRegistryCatalog(t *testing.T) {
	registry := NewRegistry()
	assert.True(t, registry.Defined(domain.PermissionViewTickets))
	assert.False(t, registry.Defined("made_up_permission"))
	assert.NotEmpty(t, registry.List())
	assert.NotEmpty(t, registry.DisplayName(domain.PermissionViewTickets))
}
