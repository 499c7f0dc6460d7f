package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"

	"event-portal/models"
)

// RecordStore is the slice of core.App the payment and seat services
// touch. Narrow on purpose: the record flows behind it are covered by
// tests with a stub store.
type RecordStore interface {
	FindFirstRecordByFilter(collectionModelOrIdentifier any, filter string, params ...dbx.Params) (*core.Record, error)
	FindCollectionByNameOrId(nameOrId string) (*core.Collection, error)
	Save(model core.Model) error
}

// PaymentService owns receipt submission and admin review of payments.
type PaymentService struct {
	app           RecordStore
	cache         *SnapshotCache
	publicBaseURL string
}

func NewPaymentService(app RecordStore, cache *SnapshotCache, publicBaseURL string) *PaymentService {
	return &PaymentService{
		app:           app,
		cache:         cache,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *PaymentService) findByUser(userID string) (*core.Record, error) {
	record, err := s.app.FindFirstRecordByFilter(
		"payments", "user = {:user}", dbx.Params{"user": userID},
	)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	return record, nil
}

// SubmitReceipt attaches a receipt to the caller's payment. Either a
// stored file or an external URL is accepted; in both cases the status
// is forced back to pending so the upload re-enters the review queue,
// whatever the previous decision was.
func (s *PaymentService) SubmitReceipt(ctx context.Context, userID string, file *filesystem.File, receiptURL string) (*models.Payment, error) {
	record, err := s.findByUser(userID)
	if err != nil {
		return nil, err
	}

	if file != nil {
		record.Set("receipt", file)
		receiptURL = fmt.Sprintf("%s/api/files/payments/%s/%s", s.publicBaseURL, record.Id, file.Name)
	}
	if receiptURL == "" {
		return nil, ErrMissingReceipt
	}

	record.Set("receipt_url", receiptURL)
	record.Set("status", models.PaymentPending)
	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("save receipt: %w", err)
	}

	s.cache.Invalidate(ctx, userID)
	payment := paymentFromRecord(record)
	return &payment, nil
}

// UpdateStatus records an admin review decision for the target user's
// payment. Re-deciding an already reviewed payment is allowed; an
// admin can override an earlier confirm or reject.
func (s *PaymentService) UpdateStatus(ctx context.Context, userID, status string) (*models.Payment, error) {
	if !models.IsReviewStatus(status) {
		return nil, ErrInvalidStatus
	}

	record, err := s.findByUser(userID)
	if err != nil {
		return nil, err
	}

	record.Set("status", status)
	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	s.cache.Invalidate(ctx, userID)
	payment := paymentFromRecord(record)
	return &payment, nil
}
