package services

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"event-portal/models"
)

// AccountService owns registration and the cached joined view of a
// user ("who is logged in and what is their registration status").
type AccountService struct {
	app   core.App
	cache *SnapshotCache
}

func NewAccountService(app core.App, cache *SnapshotCache) *AccountService {
	return &AccountService{app: app, cache: cache}
}

// Register creates the user record and its pending payment in a single
// transaction, so a failed payment insert can never leave an account
// without a payment row.
func (s *AccountService) Register(ctx context.Context, name, email, password, matricNumber string) (*models.UserWithDetails, error) {
	var userID string

	err := s.app.RunInTransaction(func(tx core.App) error {
		users, err := tx.FindCollectionByNameOrId("users")
		if err != nil {
			return fmt.Errorf("find users collection: %w", err)
		}

		user := core.NewRecord(users)
		user.Set("name", name)
		user.Set("email", email)
		user.Set("matric_number", matricNumber)
		user.Set("role", models.RoleUser)
		user.SetPassword(password)
		if err := tx.Save(user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		payments, err := tx.FindCollectionByNameOrId("payments")
		if err != nil {
			return fmt.Errorf("find payments collection: %w", err)
		}

		payment := core.NewRecord(payments)
		payment.Set("user", user.Id)
		payment.Set("status", models.PaymentPending)
		if err := tx.Save(payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		userID = user.Id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Refresh(ctx, userID)
}

// UserWithDetails returns the joined snapshot for a user, served from
// cache when fresh.
func (s *AccountService) UserWithDetails(ctx context.Context, userID string) (*models.UserWithDetails, error) {
	if detail, ok := s.cache.Get(ctx, userID); ok {
		return detail, nil
	}
	return s.Refresh(ctx, userID)
}

// Refresh refetches the user and its sub-records from the store and
// rewrites the cached snapshot. Missing payment/ticket sub-records are
// not errors; the two lookups are independent.
func (s *AccountService) Refresh(ctx context.Context, userID string) (*models.UserWithDetails, error) {
	user, err := s.app.FindRecordById("users", userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	detail := &models.UserWithDetails{User: userFromRecord(user)}

	if record, err := s.app.FindFirstRecordByFilter(
		"payments", "user = {:user}", dbx.Params{"user": userID},
	); err == nil {
		payment := paymentFromRecord(record)
		detail.Payment = &payment
	}

	if record, err := s.app.FindFirstRecordByFilter(
		"tickets", "user = {:user}", dbx.Params{"user": userID},
	); err == nil {
		assignment := ticketFromRecord(record)
		detail.Ticket = &assignment
	}

	s.cache.Set(ctx, detail)
	return detail, nil
}

// Invalidate drops the cached snapshot for a user.
func (s *AccountService) Invalidate(ctx context.Context, userID string) {
	s.cache.Invalidate(ctx, userID)
}

// EnsurePayment creates the pending payment row for a user when none
// exists yet. Used by the users-collection hook so accounts created
// outside the register endpoint (for example via the dashboard) still
// get their payment row.
func (s *AccountService) EnsurePayment(ctx context.Context, userID string) error {
	if _, err := s.app.FindFirstRecordByFilter(
		"payments", "user = {:user}", dbx.Params{"user": userID},
	); err == nil {
		return nil
	}

	payments, err := s.app.FindCollectionByNameOrId("payments")
	if err != nil {
		return fmt.Errorf("find payments collection: %w", err)
	}

	payment := core.NewRecord(payments)
	payment.Set("user", userID)
	payment.Set("status", models.PaymentPending)
	if err := s.app.Save(payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	s.cache.Invalidate(ctx, userID)
	return nil
}

// PromoteToAdmin sets the target user's role to admin.
func (s *AccountService) PromoteToAdmin(ctx context.Context, userID string) (*models.User, error) {
	record, err := s.app.FindRecordById("users", userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	record.Set("role", models.RoleAdmin)
	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}

	s.cache.Invalidate(ctx, userID)
	user := userFromRecord(record)
	return &user, nil
}
