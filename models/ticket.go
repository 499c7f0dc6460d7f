package models

import (
	"time"
)

const (
	TableStandard = "Standard"
	TablePremium  = "Premium"
	TableVIP      = "VIP"
)

// Ticket is a seat/table assignment. At most one exists per user;
// reassignment overwrites it.
type Ticket struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TableType   string    `json:"table_type"` // Standard, Premium, VIP
	TableNumber string    `json:"table_number"`
	SeatNumber  string    `json:"seat_number"`
	CreatedAt   time.Time `json:"created_at"`
}

func IsTableType(tableType string) bool {
	switch tableType {
	case TableStandard, TablePremium, TableVIP:
		return true
	}
	return false
}
