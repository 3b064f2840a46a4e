package domain

import "time"

// AuditAction enumerates recorded mutation kinds.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// AuditEntry is an immutable before/after record of a mutating operation.
// Entries are written as side effects and never updated or deleted.
type AuditEntry struct {
	ID            string
	EntityType    string
	EntityID      string
	Action        AuditAction
	PreviousState map[string]any
	NewState      map[string]any
	PerformedBy   string
	SourceAddress string
	CreatedAt     time.Time
}
