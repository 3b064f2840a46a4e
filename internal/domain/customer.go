package domain

import "time"

// Customer is an external party tickets and installations are raised for.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Company   string
	Address   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
