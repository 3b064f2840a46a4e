package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest is the ticket creation payload.
type CreateTicketRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Priority     string     `json:"priority"`
	CustomerID   *string    `json:"customer_id"`
	ItemID       *string    `json:"item_id"`
	SerialNumber *string    `json:"serial_number"`
	DueDate      *time.Time `json:"due_date"`
}

// AssignTicketRequest names the target assignee.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
	Note       string `json:"note"`
}

// ResolveTicketRequest carries the mandatory resolution note.
type ResolveTicketRequest struct {
	ResolutionNote string `json:"resolution_note"`
}

// DeleteTicketRequest carries the mandatory deletion reason.
type DeleteTicketRequest struct {
	Reason string `json:"reason"`
}

// CreateCommentRequest is the comment payload.
type CreateCommentRequest struct {
	Body     string `json:"body"`
	Internal bool   `json:"internal"`
}

// TicketSummary is the list representation.
type TicketSummary struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	Category     domain.TicketCategory `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	CreatorID    string                `json:"creator_id"`
	AssigneeID   *string               `json:"assignee_id,omitempty"`
	CustomerID   *string               `json:"customer_id,omitempty"`
	DueDate      *time.Time            `json:"due_date,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetail is the single-ticket representation with comments and
// attachments inlined.
type TicketDetail struct {
	TicketSummary
	Description    string               `json:"description"`
	SerialNumber   *string              `json:"serial_number,omitempty"`
	ItemID         *string              `json:"item_id,omitempty"`
	ResolutionNote *string              `json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
	ClosedAt       *time.Time           `json:"closed_at,omitempty"`
	Comments       []CommentResponse    `json:"comments"`
	Attachments    []AttachmentResponse `json:"attachments"`
}

// CommentResponse is a serialized ticket comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	Internal  bool      `json:"internal"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentResponse is a serialized ticket attachment.
type AttachmentResponse struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignmentResponse is one entry of the assignment history.
type AssignmentResponse struct {
	ID         string    `json:"id"`
	AssignerID string    `json:"assigner_id"`
	AssigneeID string    `json:"assignee_id"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
