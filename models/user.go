package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MatricNumber string    `json:"matric_number,omitempty"`
	Role         string    `json:"role"` // user, admin
	CreatedAt    time.Time `json:"created_at"`
}

// UserWithDetails is a user joined with its optional payment and ticket.
type UserWithDetails struct {
	User
	Payment *Payment `json:"payment,omitempty"`
	Ticket  *Ticket  `json:"ticket,omitempty"`
}

func IsRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// CanAct is the single authorization check used by every guarded
// operation. Admins satisfy any required role.
func CanAct(currentRole, requiredRole string) bool {
	if !IsRole(currentRole) || !IsRole(requiredRole) {
		return false
	}
	if currentRole == RoleAdmin {
		return true
	}
	return currentRole == requiredRole
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
