package domain

// Permission is an atomic grant unit referenced by roles.
type Permission string

const (
	PermissionViewTickets    Permission = "view_tickets"
	PermissionViewAllTickets Permission = "view_all_tickets"
	PermissionCreateTicket   Permission = "create_ticket"
	PermissionUpdateTicket   Permission = "update_ticket"
	PermissionAssignTicket   Permission = "assign_ticket"
	PermissionApproveTicket  Permission = "approve_ticket"
	PermissionDeleteTicket   Permission = "delete_ticket"

	PermissionViewUsers   Permission = "view_users"
	PermissionCreateUser  Permission = "create_user"
	PermissionUpdateUser  Permission = "update_user"
	PermissionDeleteUser  Permission = "delete_user"
	PermissionManageRoles Permission = "manage_roles"

	PermissionViewCustomers    Permission = "view_customers"
	PermissionViewAllCustomers Permission = "view_all_customers"
	PermissionCreateCustomer   Permission = "create_customer"
	PermissionUpdateCustomer   Permission = "update_customer"
	PermissionDeleteCustomer   Permission = "delete_customer"

	PermissionViewInventory   Permission = "view_inventory"
	PermissionCreateItem      Permission = "create_item"
	PermissionUpdateItem      Permission = "update_item"
	PermissionDeleteItem      Permission = "delete_item"
	PermissionMoveStock       Permission = "move_stock"
	PermissionExportInventory Permission = "export_inventory"

	PermissionViewInstallations   Permission = "view_installations"
	PermissionCreateInstallation  Permission = "create_installation"
	PermissionUpdateInstallation  Permission = "update_installation"
	PermissionCancelInstallation  Permission = "cancel_installation"

	PermissionViewDashboard   Permission = "view_dashboard"
	PermissionViewActivityLog Permission = "view_activity_log"
)
