// Package ticket encodes a seat assignment into the QR payload presented
// at the entrance and parses scanned payloads back during verification.
package ticket

import (
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"event-portal/models"
)

// TicketData is the set of fields carried inside a ticket QR symbol.
// The JSON field names are part of the wire format: payloads produced
// by older builds must keep decoding.
type TicketData struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	MatricNumber string `json:"matricNumber,omitempty"`
	TableType    string `json:"tableType"`
	TableNumber  string `json:"tableNumber"`
	SeatNumber   string `json:"seatNumber"`
}

// FromAssignment builds the QR payload fields for a user's ticket.
func FromAssignment(user models.User, t models.Ticket) TicketData {
	return TicketData{
		UserID:       user.ID,
		Name:         user.Name,
		MatricNumber: user.MatricNumber,
		TableType:    t.TableType,
		TableNumber:  t.TableNumber,
		SeatNumber:   t.SeatNumber,
	}
}

// Encode serializes the ticket fields into the QR payload text.
// Encoding is deterministic for a given field set.
func Encode(d TicketData) (string, error) {
	if d.UserID == "" || d.Name == "" {
		return "", fmt.Errorf("ticket payload requires user id and name")
	}
	if !models.IsTableType(d.TableType) {
		return "", fmt.Errorf("invalid table type %q", d.TableType)
	}
	if d.TableNumber == "" || d.SeatNumber == "" {
		return "", fmt.Errorf("ticket payload requires table and seat numbers")
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode ticket payload: %w", err)
	}
	return string(payload), nil
}

// Decode parses a scanned payload back into ticket fields. It reports
// ok=false for anything that is not a ticket payload (foreign QR codes,
// truncated text) instead of returning an error: the scanner keeps
// scanning on a miss. Decoding is structural only; it knows nothing
// about the current payment or seat state behind the payload.
func Decode(payload string) (TicketData, bool) {
	var d TicketData
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return TicketData{}, false
	}
	if d.UserID == "" || d.Name == "" || d.TableType == "" {
		return TicketData{}, false
	}
	return d, true
}

// EncodePNG renders the payload as a square QR image. Recovery level H
// keeps phone-screen scans reliable under glare.
func EncodePNG(d TicketData, size int) ([]byte, error) {
	payload, err := Encode(d)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(payload, qrcode.High, size)
	if err != nil {
		return nil, fmt.Errorf("render ticket qr: %w", err)
	}
	return png, nil
}
