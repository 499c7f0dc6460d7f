package services

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"event-portal/models"
)

// SeatService owns table/seat assignment.
type SeatService struct {
	app   RecordStore
	cache *SnapshotCache
}

func NewSeatService(app RecordStore, cache *SnapshotCache) *SeatService {
	return &SeatService{app: app, cache: cache}
}

// AssignSeat upserts the target user's ticket: the existing record is
// overwritten on reassignment, so a user can never hold two tickets.
// Assignment requires a confirmed payment.
func (s *SeatService) AssignSeat(ctx context.Context, userID, tableType, tableNumber, seatNumber string) (*models.Ticket, error) {
	if err := validateSeatAssignment(tableType, tableNumber, seatNumber); err != nil {
		return nil, err
	}

	payment, err := s.app.FindFirstRecordByFilter(
		"payments", "user = {:user}", dbx.Params{"user": userID},
	)
	if err != nil || payment.GetString("status") != models.PaymentConfirmed {
		return nil, ErrPaymentNotConfirmed
	}

	record, err := s.app.FindFirstRecordByFilter(
		"tickets", "user = {:user}", dbx.Params{"user": userID},
	)
	if err != nil {
		collection, err := s.app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return nil, fmt.Errorf("find tickets collection: %w", err)
		}
		record = core.NewRecord(collection)
		record.Set("user", userID)
	}

	record.Set("table_type", tableType)
	record.Set("table_number", tableNumber)
	record.Set("seat_number", seatNumber)
	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("assign seat: %w", err)
	}

	s.cache.Invalidate(ctx, userID)
	assignment := ticketFromRecord(record)
	return &assignment, nil
}

func validateSeatAssignment(tableType, tableNumber, seatNumber string) error {
	if tableType == "" || tableNumber == "" || seatNumber == "" {
		return ErrMissingSeatFields
	}
	if !models.IsTableType(tableType) {
		return ErrInvalidTableType
	}
	return nil
}
