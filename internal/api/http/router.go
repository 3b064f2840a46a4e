package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
)

// roleAdminMinLevel is the hierarchy floor for role management routes.
const roleAdminMinLevel = 50

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Roles          *handlers.RolesHandler
	Tickets        *handlers.TicketsHandler
	Customers      *handlers.CustomersHandler
	Inventory      *handlers.InventoryHandler
	Installations  *handlers.InstallationsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
	Evaluator      *authz.Evaluator
}

// RegisterRoutes wires HTTP routes. Each protected group carries its
// permission gate; handlers re-check through the service layer.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/auth/password/reset/request", cfg.Auth.RequestPasswordReset)
	app.Post("/auth/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)
	api.Post("/auth/password/change", cfg.Auth.ChangePassword)

	require := func(perms ...domain.Permission) fiber.Handler {
		return auth.RequireAnyPermission(cfg.Evaluator, perms...)
	}

	tickets := api.Group("/tickets")
	tickets.Post("/", require(domain.PermissionCreateTicket), cfg.Tickets.Create)
	tickets.Get("/", require(domain.PermissionViewTickets, domain.PermissionViewAllTickets), cfg.Tickets.List)
	tickets.Get("/:id", require(domain.PermissionViewTickets, domain.PermissionViewAllTickets), cfg.Tickets.Get)
	tickets.Post("/:id/assign", require(domain.PermissionAssignTicket), cfg.Tickets.Assign)
	tickets.Post("/:id/start", require(domain.PermissionUpdateTicket), cfg.Tickets.Start)
	tickets.Post("/:id/resolve", require(domain.PermissionUpdateTicket), cfg.Tickets.Resolve)
	tickets.Post("/:id/approve", require(domain.PermissionApproveTicket), cfg.Tickets.Approve)
	tickets.Post("/:id/close", require(domain.PermissionUpdateTicket), cfg.Tickets.Close)
	tickets.Post("/:id/reopen", require(domain.PermissionUpdateTicket), cfg.Tickets.Reopen)
	tickets.Delete("/:id", require(domain.PermissionDeleteTicket), cfg.Tickets.Delete)
	tickets.Post("/:id/comments", require(domain.PermissionUpdateTicket), cfg.Tickets.AddComment)
	tickets.Post("/:id/attachments", require(domain.PermissionUpdateTicket), cfg.Tickets.AddAttachment)
	tickets.Delete("/:id/attachments/:attachmentID", require(domain.PermissionUpdateTicket), cfg.Tickets.RemoveAttachment)
	tickets.Get("/:id/assignments", require(domain.PermissionViewTickets, domain.PermissionViewAllTickets), cfg.Tickets.Assignments)

	users := api.Group("/users")
	users.Post("/", require(domain.PermissionCreateUser), cfg.Users.Create)
	users.Get("/", require(domain.PermissionViewUsers), cfg.Users.List)
	users.Get("/:id", require(domain.PermissionViewUsers), cfg.Users.Get)
	users.Patch("/:id", require(domain.PermissionUpdateUser), cfg.Users.Update)
	users.Delete("/:id", require(domain.PermissionDeleteUser), cfg.Users.Delete)

	// Role mutations are double-gated: the manage permission plus a minimum
	// hierarchy level, so a scoped role cannot grant itself broader access.
	roleAdmin := auth.RequireMinLevel(cfg.Evaluator, roleAdminMinLevel)
	roles := api.Group("/roles", require(domain.PermissionViewUsers, domain.PermissionManageRoles))
	roles.Get("/permissions", cfg.Roles.Permissions)
	roles.Get("/", cfg.Roles.List)
	roles.Get("/:id", cfg.Roles.Get)
	roles.Post("/", require(domain.PermissionManageRoles), roleAdmin, cfg.Roles.Create)
	roles.Put("/:id", require(domain.PermissionManageRoles), roleAdmin, cfg.Roles.Update)
	roles.Delete("/:id", require(domain.PermissionManageRoles), roleAdmin, cfg.Roles.Delete)

	customers := api.Group("/customers")
	customers.Post("/", require(domain.PermissionCreateCustomer), cfg.Customers.Create)
	customers.Get("/", require(domain.PermissionViewCustomers, domain.PermissionViewAllCustomers), cfg.Customers.List)
	customers.Get("/:id", require(domain.PermissionViewCustomers, domain.PermissionViewAllCustomers), cfg.Customers.Get)
	customers.Put("/:id", require(domain.PermissionUpdateCustomer), cfg.Customers.Update)
	customers.Delete("/:id", require(domain.PermissionDeleteCustomer), cfg.Customers.Delete)

	inventory := api.Group("/inventory")
	inventory.Post("/items", require(domain.PermissionCreateItem), cfg.Inventory.CreateItem)
	inventory.Get("/items", require(domain.PermissionViewInventory), cfg.Inventory.ListItems)
	inventory.Get("/items/:id", require(domain.PermissionViewInventory), cfg.Inventory.GetItem)
	inventory.Put("/items/:id", require(domain.PermissionUpdateItem), cfg.Inventory.UpdateItem)
	inventory.Delete("/items/:id", require(domain.PermissionDeleteItem), cfg.Inventory.DeleteItem)
	inventory.Post("/items/:id/movements", require(domain.PermissionMoveStock), cfg.Inventory.Move)
	inventory.Get("/items/:id/movements", require(domain.PermissionViewInventory), cfg.Inventory.ListMovements)
	inventory.Get("/export", require(domain.PermissionExportInventory), cfg.Inventory.Export)

	installations := api.Group("/installations")
	installations.Post("/", require(domain.PermissionCreateInstallation), cfg.Installations.Create)
	installations.Get("/", require(domain.PermissionViewInstallations), cfg.Installations.List)
	installations.Get("/:id", require(domain.PermissionViewInstallations), cfg.Installations.Get)
	installations.Post("/:id/schedule", require(domain.PermissionUpdateInstallation), cfg.Installations.Schedule)
	installations.Post("/:id/complete", require(domain.PermissionUpdateInstallation), cfg.Installations.Complete)
	installations.Post("/:id/cancel", require(domain.PermissionCancelInstallation), cfg.Installations.Cancel)

	api.Get("/dashboard", require(domain.PermissionViewDashboard), cfg.Dashboard.Summary)
	api.Get("/activity", require(domain.PermissionViewActivityLog), cfg.Dashboard.Activity)
}
