package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// User is the principal model. Every user holds exactly one role reference;
// only active users may authenticate.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	RoleID       string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the user may authenticate or be assigned work.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}
