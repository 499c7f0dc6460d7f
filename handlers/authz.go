package handlers

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"event-portal/models"
)

// requireAuth rejects unauthenticated requests.
func requireAuth(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Authentication required", nil)
	}
	return nil
}

// requireRole rejects callers whose role cannot act as the required
// one. Admins satisfy every role check.
func requireRole(e *core.RequestEvent, role string) error {
	if err := requireAuth(e); err != nil {
		return err
	}
	if !models.CanAct(e.Auth.GetString("role"), role) {
		return apis.NewForbiddenError("Insufficient permissions", nil)
	}
	return nil
}
