package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"

	"event-portal/models"
)

// directoryQuery fetches every user joined with its optional payment
// and ticket in one round trip. The per-user lookups the views do for
// a single account would be an N+1 here.
const directoryQuery = `
SELECT
	u.id,
	u.name,
	u.email,
	u.matric_number,
	u.role,
	u.created,
	p.id AS payment_id,
	p.status AS payment_status,
	p.receipt_url AS payment_receipt_url,
	p.created AS payment_created,
	p.updated AS payment_updated,
	t.id AS ticket_id,
	t.table_type AS ticket_table_type,
	t.table_number AS ticket_table_number,
	t.seat_number AS ticket_seat_number,
	t.created AS ticket_created
FROM users u
LEFT JOIN payments p ON p.user = u.id
LEFT JOIN tickets t ON t.user = u.id
ORDER BY u.created ASC`

// ListUsers returns the full user population for the admin console,
// optionally narrowed by search text and payment status. A store
// failure propagates as an error, never as an empty list.
func (s *AccountService) ListUsers(ctx context.Context, search, status string) ([]models.UserWithDetails, error) {
	var rows []dbx.NullStringMap
	if err := s.app.DB().NewQuery(directoryQuery).WithContext(ctx).All(&rows); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]models.UserWithDetails, 0, len(rows))
	for _, row := range rows {
		detail := detailFromRow(row)
		if !matchesDirectoryFilters(detail, search, status) {
			continue
		}
		users = append(users, detail)
	}
	return users, nil
}

func detailFromRow(row dbx.NullStringMap) models.UserWithDetails {
	detail := models.UserWithDetails{
		User: models.User{
			ID:           row["id"].String,
			Name:         row["name"].String,
			Email:        row["email"].String,
			MatricNumber: row["matric_number"].String,
			Role:         row["role"].String,
			CreatedAt:    parseStoredTime(row["created"].String),
		},
	}

	if row["payment_id"].Valid && row["payment_id"].String != "" {
		detail.Payment = &models.Payment{
			ID:         row["payment_id"].String,
			UserID:     detail.ID,
			Status:     row["payment_status"].String,
			ReceiptURL: row["payment_receipt_url"].String,
			CreatedAt:  parseStoredTime(row["payment_created"].String),
			UpdatedAt:  parseStoredTime(row["payment_updated"].String),
		}
	}

	if row["ticket_id"].Valid && row["ticket_id"].String != "" {
		detail.Ticket = &models.Ticket{
			ID:          row["ticket_id"].String,
			UserID:      detail.ID,
			TableType:   row["ticket_table_type"].String,
			TableNumber: row["ticket_table_number"].String,
			SeatNumber:  row["ticket_seat_number"].String,
			CreatedAt:   parseStoredTime(row["ticket_created"].String),
		}
	}

	return detail
}

// matchesDirectoryFilters applies the admin console's narrowing rules.
// The "pending" status means the review queue: pending AND a receipt
// attached, because a payment with no receipt never needs action.
func matchesDirectoryFilters(u models.UserWithDetails, search, status string) bool {
	if search != "" {
		q := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(u.Name), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) &&
			!strings.Contains(strings.ToLower(u.MatricNumber), q) {
			return false
		}
	}

	switch status {
	case "":
		return true
	case models.PaymentPending:
		return u.Payment != nil && u.Payment.NeedsReview()
	default:
		return u.Payment != nil && u.Payment.Status == status
	}
}
