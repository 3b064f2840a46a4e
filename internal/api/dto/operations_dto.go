package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CustomerRequest is the customer create/update payload.
type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// CustomerResponse is the serialized customer.
type CustomerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	Address     string    `json:"address,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	OpenTickets *int      `json:"open_tickets,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemRequest is the inventory item create/update payload.
type ItemRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	MinQuantity int     `json:"min_quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// ItemResponse is the serialized inventory item.
type ItemResponse struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	UnitPrice   float64   `json:"unit_price"`
	LowStock    bool      `json:"low_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MovementRequest applies a stock movement.
type MovementRequest struct {
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

// MovementResponse is one ledger entry.
type MovementResponse struct {
	ID          string              `json:"id"`
	Type        domain.MovementType `json:"type"`
	Quantity    int                 `json:"quantity"`
	Reference   string              `json:"reference,omitempty"`
	Note        string              `json:"note,omitempty"`
	PerformedBy string              `json:"performed_by"`
	CreatedAt   time.Time           `json:"created_at"`
}

// CreateInstallationRequest registers an installation request.
type CreateInstallationRequest struct {
	CustomerID  string  `json:"customer_id"`
	ItemID      *string `json:"item_id"`
	Description string  `json:"description"`
}

// ScheduleInstallationRequest books a technician and date.
type ScheduleInstallationRequest struct {
	TechnicianID string    `json:"technician_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// InstallationResponse is the serialized request.
type InstallationResponse struct {
	ID            string                    `json:"id"`
	RequestNumber string                    `json:"request_number"`
	CustomerID    string                    `json:"customer_id"`
	ItemID        *string                   `json:"item_id,omitempty"`
	Description   string                    `json:"description"`
	Status        domain.InstallationStatus `json:"status"`
	TechnicianID  *string                   `json:"technician_id,omitempty"`
	ScheduledFor  *time.Time                `json:"scheduled_for,omitempty"`
	CompletedAt   *time.Time                `json:"completed_at,omitempty"`
	PhotoURL      *string                   `json:"photo_url,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// AuditEntryResponse is one activity log row.
type AuditEntryResponse struct {
	ID            string             `json:"id"`
	EntityType    string             `json:"entity_type"`
	EntityID      string             `json:"entity_id"`
	Action        domain.AuditAction `json:"action"`
	PreviousState map[string]any     `json:"previous_state,omitempty"`
	NewState      map[string]any     `json:"new_state,omitempty"`
	PerformedBy   string             `json:"performed_by"`
	SourceAddress string             `json:"source_address,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}
