package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketAssigned         EventType = "ticket_assigned"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventTicketCommentAdded     EventType = "ticket_comment_added"
	EventTicketDeleted          EventType = "ticket_deleted"
	EventInstallationScheduled  EventType = "installation_scheduled"
	EventInstallationCompleted  EventType = "installation_completed"
	EventInventoryLowStock      EventType = "inventory_low_stock"
	EventReportGenerated        EventType = "report_generated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	Priority     domain.TicketPriority `json:"priority"`
	AssigneeID   *string               `json:"assignee_id,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
	Note       string `json:"note,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Note      string              `json:"note,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	Internal    bool   `json:"internal"`
	BodyPreview string `json:"body_preview"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Reason string `json:"reason"`
}

// InstallationPayload payload for scheduling and completion.
type InstallationPayload struct {
	RequestNumber string     `json:"request_number"`
	CustomerID    string     `json:"customer_id"`
	ScheduledFor  *time.Time `json:"scheduled_for,omitempty"`
}

// LowStockPayload payload.
type LowStockPayload struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ReportPayload payload.
type ReportPayload struct {
	Kind    string `json:"kind"`
	Summary string `json:"summary"`
}
