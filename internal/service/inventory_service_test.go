package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
)

type inventoryEnv struct {
	inventory  *fakeInventoryRepo
	tickets    *fakeTicketRepo
	audits     *fakeAuditRepo
	dispatcher *captureDispatcher
	svc        *InventoryService
	admin      Actor
}

func newInventoryEnv(t *testing.T) *inventoryEnv {
	t.Helper()
	env := &inventoryEnv{
		inventory:  newFakeInventoryRepo(),
		tickets:    newFakeTicketRepo(),
		audits:     &fakeAuditRepo{},
		dispatcher: newCaptureDispatcher(),
	}
	roles := newFakeRoleRepo()
	adminRole := &domain.Role{Code: domain.RoleCodeSuperAdmin, Name: "Super Administrator", Level: 100, Unrestricted: true}
	require.NoError(t, roles.Create(context.Background(), adminRole))
	env.admin = Actor{UserID: "user-admin", RoleID: adminRole.ID}

	env.svc = NewInventoryService(env.inventory, env.tickets, authz.NewEvaluator(roles),
		NewAuditRecorder(env.audits, nopLogger()), env.dispatcher)
	return env
}

func (env *inventoryEnv) seedItem(t *testing.T, sku string, quantity, minQuantity int) *domain.InventoryItem {
	t.Helper()
	item := &domain.InventoryItem{SKU: sku, Name: "widget " + sku, Quantity: quantity, MinQuantity: minQuantity, UnitPrice: 9.5}
	require.NoError(t, env.inventory.CreateItem(context.Background(), item))
	return item
}

func TestCreateItemNormalizesSKU(t *testing.T) {
	env := newInventoryEnv(t)
	item, err := env.svc.CreateItem(context.Background(), env.admin, ItemInput{
		SKU: " cbl-001 ", Name: "patch cable", MinQuantity: 5, UnitPrice: 2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "CBL-001", item.SKU)
	assert.Zero(t, item.Quantity, "new items start with no stock")
}

func TestCreateItemDuplicateSKU(t *testing.T) {
	env := newInventoryEnv(t)
	env.seedItem(t, "CBL-001", 0, 0)

	_, err := env.svc.CreateItem(context.Background(), env.admin, ItemInput{SKU: "cbl-001", Name: "patch cable"})
	de := domainErr(t, err)
	assert.Equal(t, "CONFLICT", de.Code)
}

func TestCreateItemNegativeMinQuantity(t *testing.T) {
	env := newInventoryEnv(t)
	_, err := env.svc.CreateItem(context.Background(), env.admin, ItemInput{SKU: "X", Name: "x", MinQuantity: -1})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)
}

func TestMoveAppliesDeltas(t *testing.T) {
	env := newInventoryEnv(t)
	item := env.seedItem(t, "CBL-001", 10, 2)
	ctx := context.Background()

	updated, err := env.svc.Move(ctx, env.admin, item.ID, MovementInput{Type: domain.MovementIn, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Quantity)

	updated, err = env.svc.Move(ctx, env.admin, item.ID, MovementInput{Type: domain.MovementOut, Quantity: 4, Reference: "TKT-1"})
	require.NoError(t, err)
	assert.Equal(t, 11, updated.Quantity)

	updated, err = env.svc.Move(ctx, env.admin, item.ID, MovementInput{Type: domain.MovementAdjust, Quantity: -3, Note: "stock count"})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Quantity)

	moves, err := env.inventory.ListMovements(ctx, item.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, moves, 3)
	assert.Equal(t, domain.MovementIn, moves[0].Type)
	assert.Equal(t, domain.MovementOut, moves[1].Type)
	assert.Equal(t, "TKT-1", moves[1].Reference)
	assert.Equal(t, 4, moves[1].Quantity, "ledger keeps the requested quantity, not the delta")
	assert.Equal(t, domain.MovementAdjust, moves[2].Type)
}

func TestMoveRejectsBadQuantities(t *testing.T) {
	env := newInventoryEnv(t)
	item := env.seedItem(t, "CBL-001", 10, 2)
	ctx := context.Background()

	for _, input := range []MovementInput{
		{Type: domain.MovementIn, Quantity: 0},
		{Type: domain.MovementOut, Quantity: -2},
		{Type: domain.MovementAdjust, Quantity: 0},
		{Type: "SIDEWAYS", Quantity: 1},
	} {
		_, err := env.svc.Move(ctx, env.admin, item.ID, input)
		assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code, "type %s", input.Type)
	}
	assert.Empty(t, env.inventory.movements)
}

func TestMoveInsufficientStock(t *testing.T) {
	env := newInventoryEnv(t)
	item := env.seedItem(t, "CBL-001", 3, 0)

	_, err := env.svc.Move(context.Background(), env.admin, item.ID, MovementInput{Type: domain.MovementOut, Quantity: 5})
	de := domainErr(t, err)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Contains(t, de.Message, "insufficient stock")

	stored, _ := env.inventory.GetItemByID(context.Background(), item.ID)
	assert.Equal(t, 3, stored.Quantity)
	assert.Empty(t, env.inventory.movements, "failed movement leaves no ledger entry")
}

func TestMovePublishesLowStockEvent(t *testing.T) {
	env := newInventoryEnv(t)
	item := env.seedItem(t, "CBL-001", 10, 5)

	_, err := env.svc.Move(context.Background(), env.admin, item.ID, MovementInput{Type: domain.MovementOut, Quantity: 6})
	require.NoError(t, err)

	low := env.dispatcher.ofType(events.EventInventoryLowStock)
	require.Len(t, low, 1)
	payload, ok := low[0].Payload.(events.LowStockPayload)
	require.True(t, ok)
	assert.Equal(t, "CBL-001", payload.SKU)
	assert.Equal(t, 4, payload.Quantity)
}

func TestMoveAboveThresholdStaysQuiet(t *testing.T) {
	env := newInventoryEnv(t)
	item := env.seedItem(t, "CBL-001", 10, 2)

	_, err := env.svc.Move(context.Background(), env.admin, item.ID, MovementInput{Type: domain.MovementOut, Quantity: 3})
	require.NoError(t, err)
	assert.Empty(t, env.dispatcher.ofType(events.EventInventoryLowStock))
}

func TestDeleteItemWithStock(t *testing.T) {
	env := newInventoryEnv(t)
	item := env.seedItem(t, "CBL-001", 2, 0)

	err := env.svc.DeleteItem(context.Background(), env.admin, item.ID)
	de := domainErr(t, err)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Contains(t, de.Message, "stock on hand")
}

func TestDeleteItemReferencedByTickets(t *testing.T) {
	env := newInventoryEnv(t)
	item := env.seedItem(t, "CBL-001", 0, 0)
	env.tickets.linked[item.ID] = 2

	err := env.svc.DeleteItem(context.Background(), env.admin, item.ID)
	de := domainErr(t, err)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Contains(t, de.Message, "referenced by tickets")
}

func TestDeleteItem(t *testing.T) {
	env := newInventoryEnv(t)
	item := env.seedItem(t, "CBL-001", 0, 0)

	require.NoError(t, env.svc.DeleteItem(context.Background(), env.admin, item.ID))
	_, err := env.inventory.GetItemByID(context.Background(), item.ID)
	assert.Error(t, err)
}

func TestUpdateItemLeavesQuantityAlone(t *testing.T) {
	env := newInventoryEnv(t)
	item := env.seedItem(t, "CBL-001", 7, 2)

	updated, err := env.svc.UpdateItem(context.Background(), env.admin, item.ID, ItemInput{
		Name: "patch cable cat6", Category: "cables", MinQuantity: 3, UnitPrice: 3.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "patch cable cat6", updated.Name)
	assert.Equal(t, 7, updated.Quantity)
}

func TestExportRows(t *testing.T) {
	env := newInventoryEnv(t)
	env.seedItem(t, "CBL-001", 7, 2)

	rows, err := env.svc.Export(context.Background(), env.admin)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"sku", "name", "category", "quantity", "min_quantity", "unit_price"}, rows[0])
	assert.Equal(t, "CBL-001", rows[1][0])
	assert.Equal(t, "7", rows[1][3])
	assert.Equal(t, "9.50", rows[1][5])
}
