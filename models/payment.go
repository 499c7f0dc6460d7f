package models

import (
	"time"
)

const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
)

type Payment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"` // pending, confirmed, rejected
	ReceiptURL string    `json:"receipt_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func IsPaymentStatus(status string) bool {
	switch status {
	case PaymentPending, PaymentConfirmed, PaymentRejected:
		return true
	}
	return false
}

// IsReviewStatus reports whether status is one an admin may set during
// review. Pending is never set by review, only by receipt upload.
func IsReviewStatus(status string) bool {
	return status == PaymentConfirmed || status == PaymentRejected
}

// NeedsReview reports whether the payment should appear in the admin
// confirm/reject view. A payment with no receipt never needs action.
func (p *Payment) NeedsReview() bool {
	return p.Status == PaymentPending && p.ReceiptURL != ""
}
