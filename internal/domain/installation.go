package domain

import "time"

// InstallationStatus enumerates installation request states.
type InstallationStatus string

const (
	InstallationStatusRequested InstallationStatus = "REQUESTED"
	InstallationStatusScheduled InstallationStatus = "SCHEDULED"
	InstallationStatusCompleted InstallationStatus = "COMPLETED"
	InstallationStatusCancelled InstallationStatus = "CANCELLED"
)

// InstallationRequest tracks on-site installation work for a customer.
type InstallationRequest struct {
	ID            string
	RequestNumber string
	CustomerID    string
	ItemID        *string
	Description   string
	Status        InstallationStatus
	TechnicianID  *string
	ScheduledFor  *time.Time
	CompletedAt   *time.Time
	PhotoURL      *string
	PhotoKey      *string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
