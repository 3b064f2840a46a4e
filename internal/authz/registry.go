package authz

import "github.com/spec-kit/support-desk/internal/domain"

// Registry is the immutable permission vocabulary. It is built once at process
// start and passed by reference wherever permission codes need validation.
type Registry struct {
	ordered []domain.Permission
	labels  map[domain.Permission]string
}

// NewRegistry returns the full permission enumeration in display order.
func NewRegistry() *Registry {
	entries := []struct {
		code  domain.Permission
		label string
	}{
		{domain.PermissionViewTickets, "View own tickets"},
		{domain.PermissionViewAllTickets, "View all tickets"},
		{domain.PermissionCreateTicket, "Create tickets"},
		{domain.PermissionUpdateTicket, "Update tickets"},
		{domain.PermissionAssignTicket, "Assign tickets"},
		{domain.PermissionApproveTicket, "Approve ticket resolutions"},
		{domain.PermissionDeleteTicket, "Delete tickets"},
		{domain.PermissionViewUsers, "View users"},
		{domain.PermissionCreateUser, "Create users"},
		{domain.PermissionUpdateUser, "Update users"},
		{domain.PermissionDeleteUser, "Deactivate users"},
		{domain.PermissionManageRoles, "Manage roles"},
		{domain.PermissionViewCustomers, "View own customers"},
		{domain.PermissionViewAllCustomers, "View all customers"},
		{domain.PermissionCreateCustomer, "Create customers"},
		{domain.PermissionUpdateCustomer, "Update customers"},
		{domain.PermissionDeleteCustomer, "Delete customers"},
		{domain.PermissionViewInventory, "View inventory"},
		{domain.PermissionCreateItem, "Create inventory items"},
		{domain.PermissionUpdateItem, "Update inventory items"},
		{domain.PermissionDeleteItem, "Delete inventory items"},
		{domain.PermissionMoveStock, "Record stock movements"},
		{domain.PermissionExportInventory, "Export inventory"},
		{domain.PermissionViewInstallations, "View installation requests"},
		{domain.PermissionCreateInstallation, "Create installation requests"},
		{domain.PermissionUpdateInstallation, "Update installation requests"},
		{domain.PermissionCancelInstallation, "Cancel installation requests"},
		{domain.PermissionViewDashboard, "View dashboard"},
		{domain.PermissionViewActivityLog, "View activity log"},
	}

	r := &Registry{
		ordered: make([]domain.Permission, 0, len(entries)),
		labels:  make(map[domain.Permission]string, len(entries)),
	}
	for _, e := range entries {
		r.ordered = append(r.ordered, e.code)
		r.labels[e.code] = e.label
	}
	return r
}

// List returns the ordered permission set.
func (r *Registry) List() []domain.Permission {
	out := make([]domain.Permission, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// DisplayName returns the human label for a permission code, or the raw code
// verbatim when no mapping exists. It never fails.
func (r *Registry) DisplayName(code domain.Permission) string {
	if label, ok := r.labels[code]; ok {
		return label
	}
	return string(code)
}

// Defined reports whether the code belongs to the registry.
func (r *Registry) Defined(code domain.Permission) bool {
	_, ok := r.labels[code]
	return ok
}
