package domain

import "time"

// InventoryItem is a stocked product tracked by the movement ledger.
type InventoryItem struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Category    string
	Quantity    int
	MinQuantity int
	UnitPrice   float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock reports whether quantity has fallen to or below the threshold.
func (i *InventoryItem) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// MovementType enumerates stock movement directions.
type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

// StockMovement is one entry in the append-only inventory ledger.
type StockMovement struct {
	ID          string
	ItemID      string
	Type        MovementType
	Quantity    int
	Reference   string
	Note        string
	PerformedBy string
	CreatedAt   time.Time
}
