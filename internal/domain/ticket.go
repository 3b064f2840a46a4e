package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "OPEN"
	TicketStatusAssigned        TicketStatus = "ASSIGNED"
	TicketStatusInProgress      TicketStatus = "IN_PROGRESS"
	TicketStatusPendingApproval TicketStatus = "PENDING_APPROVAL"
	TicketStatusResolved        TicketStatus = "RESOLVED"
	TicketStatusClosed          TicketStatus = "CLOSED"
	TicketStatusReopened        TicketStatus = "REOPENED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketCategory enumerates request types.
type TicketCategory string

const (
	TicketCategoryHardware     TicketCategory = "HARDWARE"
	TicketCategorySoftware     TicketCategory = "SOFTWARE"
	TicketCategoryNetwork      TicketCategory = "NETWORK"
	TicketCategoryInstallation TicketCategory = "INSTALLATION"
	TicketCategoryOther        TicketCategory = "OTHER"
)

// Ticket is the aggregate tracked through the lifecycle engine.
type Ticket struct {
	ID             string
	TicketNumber   string
	Title          string
	Description    string
	Category       TicketCategory
	Priority       TicketPriority
	Status         TicketStatus
	CreatorID      string
	AssigneeID     *string
	CustomerID     *string
	ItemID         *string
	SerialNumber   *string
	DueDate        *time.Time
	ResolutionNote *string
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
	DeletedAt      *time.Time
	DeleteReason   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsDeleted reports whether the ticket has been soft-deleted.
func (t *Ticket) IsDeleted() bool {
	return t.DeletedAt != nil
}

// TicketComment is a threaded note on a ticket. Internal comments are visible
// to staff only.
type TicketComment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Body      string
	Internal  bool
	CreatedAt time.Time
}

// TicketAttachment stores object-storage metadata for an uploaded file.
type TicketAttachment struct {
	ID         string
	TicketID   string
	UploaderID string
	StorageKey string
	PublicURL  string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}

// AssignmentRecord is an append-only assignment history entry, kept separate
// from the audit log and queryable on its own.
type AssignmentRecord struct {
	ID         string
	TicketID   string
	AssignerID string
	AssigneeID string
	Note       string
	CreatedAt  time.Time
}
