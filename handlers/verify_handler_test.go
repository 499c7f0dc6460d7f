package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"event-portal/models"
	"event-portal/ticket"
)

func TestStationKeyMatches(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("GATE-KEY-1234"), bcrypt.DefaultCost)
	require.NoError(t, err)

	h := &VerifyHandler{stationKeyHash: hash}

	assert.True(t, h.stationKeyMatches("GATE-KEY-1234"))
	assert.False(t, h.stationKeyMatches("gate-key-1234"))
	assert.False(t, h.stationKeyMatches(""))
}

func TestStationKeyMatches_NoKeyConfigured(t *testing.T) {
	h := &VerifyHandler{}

	assert.False(t, h.stationKeyMatches("anything"))
	assert.False(t, h.stationKeyMatches(""))
}

func scannedTicket() ticket.TicketData {
	return ticket.TicketData{
		UserID:      "user-1",
		Name:        "Jane Doe",
		TableType:   models.TableVIP,
		TableNumber: "A1",
		SeatNumber:  "05",
	}
}

func TestVerificationOutcome_HolderMissing(t *testing.T) {
	result, status := verificationOutcome(scannedTicket(), nil)

	assert.Equal(t, false, result["valid"])
	assert.Equal(t, "revoked", status)
	assert.NotEmpty(t, result["reason"])
}

func TestVerificationOutcome_SeatRevoked(t *testing.T) {
	detail := &models.UserWithDetails{
		User:    models.User{ID: "user-1", Name: "Jane Doe", Email: "jane@x.com"},
		Payment: &models.Payment{Status: models.PaymentRejected},
	}

	result, status := verificationOutcome(scannedTicket(), detail)

	assert.Equal(t, false, result["valid"])
	assert.Equal(t, "revoked", status)
	assert.Equal(t, models.PaymentRejected, result["payment_status"])
}

func TestVerificationOutcome_SeatReassigned(t *testing.T) {
	detail := &models.UserWithDetails{
		User:    models.User{ID: "user-1", Name: "Jane Doe"},
		Payment: &models.Payment{Status: models.PaymentConfirmed},
		Ticket:  &models.Ticket{TableType: models.TableVIP, TableNumber: "B2", SeatNumber: "11"},
	}

	result, status := verificationOutcome(scannedTicket(), detail)

	// still a real ticket, but the gate is pointed at the live seat
	assert.Equal(t, true, result["valid"])
	assert.Equal(t, "reassigned", status)
	assert.Equal(t, detail.Ticket, result["current_ticket"])
	assert.NotEmpty(t, result["reason"])
}

func TestVerificationOutcome_Valid(t *testing.T) {
	detail := &models.UserWithDetails{
		User:    models.User{ID: "user-1", Name: "Jane Doe", Email: "jane@x.com"},
		Payment: &models.Payment{Status: models.PaymentConfirmed},
		Ticket:  &models.Ticket{TableType: models.TableVIP, TableNumber: "A1", SeatNumber: "05"},
	}

	result, status := verificationOutcome(scannedTicket(), detail)

	assert.Equal(t, true, result["valid"])
	assert.Equal(t, "valid", status)
	assert.Equal(t, models.PaymentConfirmed, result["payment_status"])
	assert.Equal(t, detail.Ticket, result["current_ticket"])
	holder, ok := result["holder"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "jane@x.com", holder["email"])
}
