package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const entityTypeItem = "inventory_item"

// InventoryService manages stocked items and their movement ledger. Quantity
// only changes through movements; the adjustment is atomic so concurrent
// withdrawals cannot drive stock negative.
type InventoryService struct {
	inventory  repository.InventoryRepository
	tickets    repository.TicketRepository
	evaluator  *authz.Evaluator
	recorder   *AuditRecorder
	dispatcher events.Dispatcher
}

// NewInventoryService constructs the service.
func NewInventoryService(inventory repository.InventoryRepository, tickets repository.TicketRepository, evaluator *authz.Evaluator, recorder *AuditRecorder, dispatcher events.Dispatcher) *InventoryService {
	return &InventoryService{
		inventory:  inventory,
		tickets:    tickets,
		evaluator:  evaluator,
		recorder:   recorder,
		dispatcher: dispatcher,
	}
}

// ItemInput describes an item create/update payload.
type ItemInput struct {
	SKU         string
	Name        string
	Description string
	Category    string
	MinQuantity int
	UnitPrice   float64
}

// MovementInput describes a stock movement request.
type MovementInput struct {
	Type      domain.MovementType
	Quantity  int
	Reference string
	Note      string
}

// CreateItem registers a new item with zero stock. SKUs are unique.
func (s *InventoryService) CreateItem(ctx context.Context, actor Actor, input ItemInput) (*domain.InventoryItem, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionCreateItem); err != nil {
		return nil, err
	}
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	if sku == "" || strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("sku and name required", nil)
	}
	if input.MinQuantity < 0 {
		return nil, apperrors.NewValidationError("minimum quantity cannot be negative", nil)
	}

	if _, err := s.inventory.GetItemBySKU(ctx, sku); err == nil {
		return nil, apperrors.NewConflict("sku already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	item := &domain.InventoryItem{
		SKU:         sku,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		MinQuantity: input.MinQuantity,
		UnitPrice:   input.UnitPrice,
	}
	if err := s.inventory.CreateItem(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeItem, item.ID, domain.AuditActionCreate,
		nil, Snapshot(item), actor.UserID, actor.SourceAddress)
	return item, nil
}

// UpdateItem edits item metadata. Quantity is not touched here.
func (s *InventoryService) UpdateItem(ctx context.Context, actor Actor, itemID string, input ItemInput) (*domain.InventoryItem, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateItem); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if input.MinQuantity < 0 {
		return nil, apperrors.NewValidationError("minimum quantity cannot be negative", nil)
	}
	item, err := s.inventory.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	before := Snapshot(item)
	item.Name = strings.TrimSpace(input.Name)
	item.Description = input.Description
	item.Category = strings.TrimSpace(input.Category)
	item.MinQuantity = input.MinQuantity
	item.UnitPrice = input.UnitPrice
	if err := s.inventory.UpdateItem(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeItem, item.ID, domain.AuditActionUpdate,
		before, Snapshot(item), actor.UserID, actor.SourceAddress)
	return item, nil
}

// DeleteItem removes an item with no ticket references and no remaining stock.
func (s *InventoryService) DeleteItem(ctx context.Context, actor Actor, itemID string) error {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionDeleteItem); err != nil {
		return err
	}
	item, err := s.inventory.GetItemByID(ctx, itemID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if item.Quantity > 0 {
		return apperrors.NewConflict("item still has stock on hand", nil)
	}
	linked, err := s.tickets.CountLinkedToItem(ctx, item.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if linked > 0 {
		return apperrors.NewConflict("item is referenced by tickets", nil)
	}

	before := Snapshot(item)
	if err := s.inventory.DeleteItem(ctx, item.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.recorder.Record(ctx, entityTypeItem, item.ID, domain.AuditActionDelete,
		before, nil, actor.UserID, actor.SourceAddress)
	return nil
}

// Move applies a stock movement and appends a ledger entry. IN adds, OUT
// subtracts, ADJUST sets by signed delta. Stock can never go negative.
func (s *InventoryService) Move(ctx context.Context, actor Actor, itemID string, input MovementInput) (*domain.InventoryItem, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionMoveStock); err != nil {
		return nil, err
	}

	var delta int
	switch input.Type {
	case domain.MovementIn:
		if input.Quantity <= 0 {
			return nil, apperrors.NewValidationError("quantity must be positive", nil)
		}
		delta = input.Quantity
	case domain.MovementOut:
		if input.Quantity <= 0 {
			return nil, apperrors.NewValidationError("quantity must be positive", nil)
		}
		delta = -input.Quantity
	case domain.MovementAdjust:
		if input.Quantity == 0 {
			return nil, apperrors.NewValidationError("adjustment delta cannot be zero", nil)
		}
		delta = input.Quantity
	default:
		return nil, apperrors.NewValidationError("unknown movement type",
			map[string]any{"type": string(input.Type)})
	}

	item, err := s.inventory.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	before := Snapshot(item)

	updated, err := s.inventory.AdjustQuantity(ctx, item.ID, delta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("insufficient stock", nil)
		}
		return nil, apperrors.MapError(err)
	}

	movement := &domain.StockMovement{
		ItemID:      item.ID,
		Type:        input.Type,
		Quantity:    input.Quantity,
		Reference:   input.Reference,
		Note:        input.Note,
		PerformedBy: actor.UserID,
	}
	if err := s.inventory.CreateMovement(ctx, movement); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeItem, updated.ID, domain.AuditActionUpdate,
		before, Snapshot(updated), actor.UserID, actor.SourceAddress)

	if updated.LowStock() && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventInventoryLowStock,
			EntityID:  updated.ID,
			ActorID:   actor.UserID,
			Timestamp: time.Now(),
			Payload: events.LowStockPayload{
				SKU:      updated.SKU,
				Name:     updated.Name,
				Quantity: updated.Quantity,
			},
		})
	}
	return updated, nil
}

// GetItem returns one item.
func (s *InventoryService) GetItem(ctx context.Context, actor Actor, itemID string) (*domain.InventoryItem, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewInventory); err != nil {
		return nil, err
	}
	item, err := s.inventory.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return item, nil
}

// ListItems returns items matching the filter.
func (s *InventoryService) ListItems(ctx context.Context, actor Actor, filter repository.ItemFilter) ([]domain.InventoryItem, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewInventory); err != nil {
		return nil, err
	}
	return s.inventory.ListItems(ctx, filter)
}

// ListMovements returns the ledger for an item, newest first.
func (s *InventoryService) ListMovements(ctx context.Context, actor Actor, itemID string, limit, offset int) ([]domain.StockMovement, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewInventory); err != nil {
		return nil, err
	}
	if _, err := s.inventory.GetItemByID(ctx, itemID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.inventory.ListMovements(ctx, itemID, limit, offset)
}

// Export returns every item as CSV rows for download.
func (s *InventoryService) Export(ctx context.Context, actor Actor) ([][]string, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionExportInventory); err != nil {
		return nil, err
	}
	items, err := s.inventory.ListItems(ctx, repository.ItemFilter{Limit: 10000})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, []string{"sku", "name", "category", "quantity", "min_quantity", "unit_price"})
	for _, item := range items {
		rows = append(rows, []string{
			item.SKU,
			item.Name,
			item.Category,
			strconv.Itoa(item.Quantity),
			strconv.Itoa(item.MinQuantity),
			strconv.FormatFloat(item.UnitPrice, 'f', 2, 64),
		})
	}
	return rows, nil
}
