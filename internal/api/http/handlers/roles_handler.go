package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/api/respond"
	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// RolesHandler serves role administration endpoints.
type RolesHandler struct {
	service  *service.RoleService
	registry *authz.Registry
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roleService *service.RoleService, registry *authz.Registry) *RolesHandler {
	return &RolesHandler{service: roleService, registry: registry}
}

// Create POST /roles.
func (h *RolesHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	role, err := h.service.Create(c.Context(), actor, roleInput(req))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusCreated, "role created", roleResponse(role))
}

// Update PUT /roles/:id.
func (h *RolesHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	role, err := h.service.Update(c.Context(), actor, c.Params("id"), roleInput(req))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "role updated", roleResponse(role))
}

// Delete DELETE /roles/:id.
func (h *RolesHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "role deleted", nil)
}

// Get GET /roles/:id.
func (h *RolesHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	role, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "", roleResponse(role))
}

// List GET /roles.
func (h *RolesHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	roles, err := h.service.List(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		items = append(items, roleResponse(&roles[i]))
	}
	return respond.Success(c, fiber.StatusOK, "", items)
}

// Permissions GET /roles/permissions. The assignable catalog.
func (h *RolesHandler) Permissions(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	perms, err := h.service.Permissions(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		items = append(items, dto.PermissionResponse{
			Code:  string(p),
			Label: h.registry.DisplayName(p),
		})
	}
	return respond.Success(c, fiber.StatusOK, "", items)
}

func roleInput(req dto.RoleRequest) service.RoleInput {
	perms := make([]domain.Permission, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		perms = append(perms, domain.Permission(p))
	}
	return service.RoleInput{
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		Level:        req.Level,
		Unrestricted: req.Unrestricted,
		Permissions:  perms,
	}
}

func roleResponse(role *domain.Role) dto.RoleResponse {
	perms := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		perms = append(perms, string(p))
	}
	return dto.RoleResponse{
		ID:           role.ID,
		Code:         role.Code,
		Name:         role.Name,
		Description:  role.Description,
		Level:        role.Level,
		Unrestricted: role.Unrestricted,
		IsDefault:    role.IsDefault,
		Permissions:  perms,
	}
}
