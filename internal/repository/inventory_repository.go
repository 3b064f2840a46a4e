package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ItemFilter captures inventory listing parameters.
type ItemFilter struct {
	Category   *string
	SearchTerm *string
	LowStock   bool
	Limit      int
	Offset     int
}

// InventoryRepository defines persistence for items and the movement ledger.
type InventoryRepository interface {
	CreateItem(ctx context.Context, item *domain.InventoryItem) error
	UpdateItem(ctx context.Context, item *domain.InventoryItem) error
	DeleteItem(ctx context.Context, id string) error
	GetItemByID(ctx context.Context, id string) (*domain.InventoryItem, error)
	GetItemBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]domain.InventoryItem, error)
	// AdjustQuantity applies a delta atomically and fails when the result
	// would go negative.
	AdjustQuantity(ctx context.Context, itemID string, delta int) (*domain.InventoryItem, error)
	CreateMovement(ctx context.Context, movement *domain.StockMovement) error
	ListMovements(ctx context.Context, itemID string, limit, offset int) ([]domain.StockMovement, error)
	CountLowStock(ctx context.Context) (int, error)
}

type inventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository instantiates repository.
func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepository{pool: pool}
}

const itemColumns = `id, sku, name, description, category, quantity, min_quantity, unit_price, created_at, updated_at`

func (r *inventoryRepository) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	const query = `
        INSERT INTO inventory_items (sku, name, description, category, quantity, min_quantity, unit_price)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		item.SKU,
		item.Name,
		item.Description,
		item.Category,
		item.Quantity,
		item.MinQuantity,
		item.UnitPrice,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *inventoryRepository) UpdateItem(ctx context.Context, item *domain.InventoryItem) error {
	const query = `
        UPDATE inventory_items SET name=$1, description=$2, category=$3, min_quantity=$4, unit_price=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		item.Name,
		item.Description,
		item.Category,
		item.MinQuantity,
		item.UnitPrice,
		item.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *inventoryRepository) DeleteItem(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *inventoryRepository) GetItemByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory_items WHERE id=$1`, itemColumns)
	return r.fetchItem(ctx, query, id)
}

func (r *inventoryRepository) GetItemBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM inventory_items WHERE sku=$1`, itemColumns)
	return r.fetchItem(ctx, query, sku)
}

func (r *inventoryRepository) fetchItem(ctx context.Context, query string, arg any) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&item.ID,
		&item.SKU,
		&item.Name,
		&item.Description,
		&item.Category,
		&item.Quantity,
		&item.MinQuantity,
		&item.UnitPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) ListItems(ctx context.Context, filter ItemFilter) ([]domain.InventoryItem, error) {
	base := fmt.Sprintf(`SELECT %s FROM inventory_items`, itemColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.LowStock {
		clauses = append(clauses, "quantity <= min_quantity")
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(sku) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY name LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(
			&item.ID,
			&item.SKU,
			&item.Name,
			&item.Description,
			&item.Category,
			&item.Quantity,
			&item.MinQuantity,
			&item.UnitPrice,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *inventoryRepository) AdjustQuantity(ctx context.Context, itemID string, delta int) (*domain.InventoryItem, error) {
	query := fmt.Sprintf(`
        UPDATE inventory_items SET quantity = quantity + $1, updated_at=NOW()
        WHERE id=$2 AND quantity + $1 >= 0
        RETURNING %s`, itemColumns)
	var item domain.InventoryItem
	if err := r.pool.QueryRow(ctx, query, delta, itemID).Scan(
		&item.ID,
		&item.SKU,
		&item.Name,
		&item.Description,
		&item.Category,
		&item.Quantity,
		&item.MinQuantity,
		&item.UnitPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) CreateMovement(ctx context.Context, movement *domain.StockMovement) error {
	const query = `
        INSERT INTO stock_movements (item_id, movement_type, quantity, reference, note, performed_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		movement.ItemID,
		movement.Type,
		movement.Quantity,
		movement.Reference,
		movement.Note,
		movement.PerformedBy,
	).Scan(&movement.ID, &movement.CreatedAt)
}

func (r *inventoryRepository) ListMovements(ctx context.Context, itemID string, limit, offset int) ([]domain.StockMovement, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, item_id, movement_type, quantity, reference, note, performed_by, created_at
        FROM stock_movements WHERE item_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StockMovement
	for rows.Next() {
		var movement domain.StockMovement
		if err := rows.Scan(
			&movement.ID,
			&movement.ItemID,
			&movement.Type,
			&movement.Quantity,
			&movement.Reference,
			&movement.Note,
			&movement.PerformedBy,
			&movement.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, movement)
	}
	return result, rows.Err()
}

func (r *inventoryRepository) CountLowStock(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE quantity <= min_quantity`).Scan(&count)
	return count, err
}
