package services

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"event-portal/models"
)

func userFromRecord(r *core.Record) models.User {
	return models.User{
		ID:           r.Id,
		Name:         r.GetString("name"),
		Email:        r.GetString("email"),
		MatricNumber: r.GetString("matric_number"),
		Role:         r.GetString("role"),
		CreatedAt:    r.GetDateTime("created").Time(),
	}
}

func paymentFromRecord(r *core.Record) models.Payment {
	return models.Payment{
		ID:         r.Id,
		UserID:     r.GetString("user"),
		Status:     r.GetString("status"),
		ReceiptURL: r.GetString("receipt_url"),
		CreatedAt:  r.GetDateTime("created").Time(),
		UpdatedAt:  r.GetDateTime("updated").Time(),
	}
}

func ticketFromRecord(r *core.Record) models.Ticket {
	return models.Ticket{
		ID:          r.Id,
		UserID:      r.GetString("user"),
		TableType:   r.GetString("table_type"),
		TableNumber: r.GetString("table_number"),
		SeatNumber:  r.GetString("seat_number"),
		CreatedAt:   r.GetDateTime("created").Time(),
	}
}

func parseStoredTime(s string) time.Time {
	dt, err := types.ParseDateTime(s)
	if err != nil {
		return time.Time{}
	}
	return dt.Time()
}
