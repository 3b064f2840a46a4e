package handlers

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/api/respond"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// InventoryHandler serves item and stock movement endpoints.
type InventoryHandler struct {
	service    *service.InventoryService
	pagination config.PaginationConfig
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventoryService *service.InventoryService, pagination config.PaginationConfig) *InventoryHandler {
	return &InventoryHandler{service: inventoryService, pagination: pagination}
}

// CreateItem POST /inventory/items.
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	item, err := h.service.CreateItem(c.Context(), actor, itemInput(req))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusCreated, "item created", itemResponse(item))
}

// UpdateItem PUT /inventory/items/:id.
func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	item, err := h.service.UpdateItem(c.Context(), actor, c.Params("id"), itemInput(req))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "item updated", itemResponse(item))
}

// DeleteItem DELETE /inventory/items/:id.
func (h *InventoryHandler) DeleteItem(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteItem(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "item deleted", nil)
}

// Move POST /inventory/items/:id/movements.
func (h *InventoryHandler) Move(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	item, err := h.service.Move(c.Context(), actor, c.Params("id"), service.MovementInput{
		Type:      domain.MovementType(strings.ToUpper(req.Type)),
		Quantity:  req.Quantity,
		Reference: req.Reference,
		Note:      req.Note,
	})
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "stock updated", itemResponse(item))
}

// GetItem GET /inventory/items/:id.
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	item, err := h.service.GetItem(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "", itemResponse(item))
}

// ListItems GET /inventory/items.
func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePage(c, h.pagination)
	items, err := h.service.ListItems(c.Context(), actor, repository.ItemFilter{
		Category:   optionalQuery(c, "category"),
		SearchTerm: optionalQuery(c, "q"),
		LowStock:   c.QueryBool("low_stock"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	resp := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, itemResponse(&items[i]))
	}
	return respond.Success(c, fiber.StatusOK, "", resp)
}

// ListMovements GET /inventory/items/:id/movements.
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePage(c, h.pagination)
	movements, err := h.service.ListMovements(c.Context(), actor, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.MovementResponse, 0, len(movements))
	for _, movement := range movements {
		items = append(items, dto.MovementResponse{
			ID:          movement.ID,
			Type:        movement.Type,
			Quantity:    movement.Quantity,
			Reference:   movement.Reference,
			Note:        movement.Note,
			PerformedBy: movement.PerformedBy,
			CreatedAt:   movement.CreatedAt,
		})
	}
	return respond.Success(c, fiber.StatusOK, "", items)
}

// Export GET /inventory/export. Streams the full item list as CSV.
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	rows, err := h.service.Export(c.Context(), actor)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(rows); err != nil {
		return apperrors.MapError(err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="inventory.csv"`)
	return c.Send(buf.Bytes())
}

func itemInput(req dto.ItemRequest) service.ItemInput {
	return service.ItemInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		MinQuantity: req.MinQuantity,
		UnitPrice:   req.UnitPrice,
	}
}

func itemResponse(item *domain.InventoryItem) dto.ItemResponse {
	return dto.ItemResponse{
		ID:          item.ID,
		SKU:         item.SKU,
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
		Quantity:    item.Quantity,
		MinQuantity: item.MinQuantity,
		UnitPrice:   item.UnitPrice,
		LowStock:    item.LowStock(),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
