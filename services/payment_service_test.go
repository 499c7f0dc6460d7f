package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-portal/models"
)

// stubStore is an in-memory RecordStore for exercising the payment and
// seat record flows without a database.
type stubStore struct {
	collections map[string]*core.Collection
	payments    map[string]*core.Record
	tickets     map[string]*core.Record
	saved       []*core.Record
	saveErr     error
}

func newStubStore() *stubStore {
	payments := core.NewBaseCollection("payments")
	payments.Fields.Add(
		&core.TextField{Name: "user"},
		&core.SelectField{Name: "status", MaxSelect: 1, Values: []string{"pending", "confirmed", "rejected"}},
		&core.FileField{Name: "receipt", MaxSelect: 1},
		&core.URLField{Name: "receipt_url"},
	)

	tickets := core.NewBaseCollection("tickets")
	tickets.Fields.Add(
		&core.TextField{Name: "user"},
		&core.SelectField{Name: "table_type", MaxSelect: 1, Values: []string{"Standard", "Premium", "VIP"}},
		&core.TextField{Name: "table_number"},
		&core.TextField{Name: "seat_number"},
	)

	return &stubStore{
		collections: map[string]*core.Collection{"payments": payments, "tickets": tickets},
		payments:    map[string]*core.Record{},
		tickets:     map[string]*core.Record{},
	}
}

func (s *stubStore) recordsFor(name string) map[string]*core.Record {
	if name == "tickets" {
		return s.tickets
	}
	return s.payments
}

func (s *stubStore) FindFirstRecordByFilter(col any, filter string, params ...dbx.Params) (*core.Record, error) {
	name, _ := col.(string)
	userID := ""
	if len(params) > 0 {
		userID, _ = params[0]["user"].(string)
	}
	if rec, ok := s.recordsFor(name)[userID]; ok {
		return rec, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStore) FindCollectionByNameOrId(name string) (*core.Collection, error) {
	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStore) Save(model core.Model) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	rec := model.(*core.Record)
	s.saved = append(s.saved, rec)
	s.recordsFor(rec.Collection().Name)[rec.GetString("user")] = rec
	return nil
}

func (s *stubStore) seedPayment(userID, status, receiptURL string) *core.Record {
	rec := core.NewRecord(s.collections["payments"])
	rec.Id = "payment-" + userID
	rec.Set("user", userID)
	rec.Set("status", status)
	rec.Set("receipt_url", receiptURL)
	s.payments[userID] = rec
	return rec
}

func (s *stubStore) seedTicket(userID, tableType, tableNumber, seatNumber string) *core.Record {
	rec := core.NewRecord(s.collections["tickets"])
	rec.Id = "ticket-" + userID
	rec.Set("user", userID)
	rec.Set("table_type", tableType)
	rec.Set("table_number", tableNumber)
	rec.Set("seat_number", seatNumber)
	s.tickets[userID] = rec
	return rec
}

func TestSubmitReceipt_URLResetsStatusToPending(t *testing.T) {
	store := newStubStore()
	cache, mock := newTestSnapshotCache(t)
	svc := NewPaymentService(store, cache, "http://localhost:8090")

	// a rejected payment re-enters the review queue on a new upload
	store.seedPayment("user-1", models.PaymentRejected, "")
	mock.ExpectDel("portal:snapshot:user-1").SetVal(1)

	payment, err := svc.SubmitReceipt(context.Background(), "user-1", nil, "https://store/r2.png")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, "https://store/r2.png", payment.ReceiptURL)
	assert.Len(t, store.saved, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitReceipt_ConfirmedAlsoResets(t *testing.T) {
	store := newStubStore()
	cache, mock := newTestSnapshotCache(t)
	svc := NewPaymentService(store, cache, "http://localhost:8090")

	store.seedPayment("user-1", models.PaymentConfirmed, "https://store/r1.png")
	mock.ExpectDel("portal:snapshot:user-1").SetVal(1)

	payment, err := svc.SubmitReceipt(context.Background(), "user-1", nil, "https://store/r2.png")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
}

func TestSubmitReceipt_FileBuildsHostedURL(t *testing.T) {
	store := newStubStore()
	cache, mock := newTestSnapshotCache(t)
	// trailing slash must not produce a double slash in the URL
	svc := NewPaymentService(store, cache, "http://localhost:8090/")

	store.seedPayment("user-1", models.PaymentPending, "")
	mock.ExpectDel("portal:snapshot:user-1").SetVal(1)

	file, err := filesystem.NewFileFromBytes([]byte("png bytes"), "receipt.png")
	require.NoError(t, err)

	payment, err := svc.SubmitReceipt(context.Background(), "user-1", file, "")
	require.NoError(t, err)

	want := fmt.Sprintf("http://localhost:8090/api/files/payments/payment-user-1/%s", file.Name)
	assert.Equal(t, want, payment.ReceiptURL)
	assert.Equal(t, models.PaymentPending, payment.Status)
}

func TestSubmitReceipt_MissingReceipt(t *testing.T) {
	store := newStubStore()
	cache, _ := newTestSnapshotCache(t)
	svc := NewPaymentService(store, cache, "http://localhost:8090")

	store.seedPayment("user-1", models.PaymentPending, "")

	_, err := svc.SubmitReceipt(context.Background(), "user-1", nil, "")
	assert.ErrorIs(t, err, ErrMissingReceipt)
	assert.Empty(t, store.saved)
}

func TestSubmitReceipt_NoPayment(t *testing.T) {
	store := newStubStore()
	cache, _ := newTestSnapshotCache(t)
	svc := NewPaymentService(store, cache, "http://localhost:8090")

	_, err := svc.SubmitReceipt(context.Background(), "ghost", nil, "https://store/r.png")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestUpdateStatus_RejectsNonReviewStatuses(t *testing.T) {
	store := newStubStore()
	cache, _ := newTestSnapshotCache(t)
	svc := NewPaymentService(store, cache, "http://localhost:8090")

	store.seedPayment("user-1", models.PaymentPending, "https://store/r.png")

	for _, status := range []string{"", "pending", "paid", "Confirmed"} {
		_, err := svc.UpdateStatus(context.Background(), "user-1", status)
		assert.ErrorIs(t, err, ErrInvalidStatus, "status %q", status)
	}
	assert.Empty(t, store.saved)
}

func TestUpdateStatus_ConfirmThenOverride(t *testing.T) {
	store := newStubStore()
	cache, mock := newTestSnapshotCache(t)
	svc := NewPaymentService(store, cache, "http://localhost:8090")

	store.seedPayment("user-1", models.PaymentPending, "https://store/r.png")
	mock.ExpectDel("portal:snapshot:user-1").SetVal(1)
	mock.ExpectDel("portal:snapshot:user-1").SetVal(1)

	payment, err := svc.UpdateStatus(context.Background(), "user-1", models.PaymentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentConfirmed, payment.Status)

	// an admin can re-decide an already reviewed payment
	payment, err = svc.UpdateStatus(context.Background(), "user-1", models.PaymentRejected)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRejected, payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_NoPayment(t *testing.T) {
	store := newStubStore()
	cache, _ := newTestSnapshotCache(t)
	svc := NewPaymentService(store, cache, "http://localhost:8090")

	_, err := svc.UpdateStatus(context.Background(), "ghost", models.PaymentConfirmed)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}
