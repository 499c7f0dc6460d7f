package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"event-portal/models"
	"event-portal/monitoring"
	"event-portal/services"
)

type AdminHandler struct {
	app      core.App
	accounts *services.AccountService
	payments *services.PaymentService
	seats    *services.SeatService
	monitor  *monitoring.Monitor
}

func NewAdminHandler(
	app core.App,
	accounts *services.AccountService,
	payments *services.PaymentService,
	seats *services.SeatService,
	monitor *monitoring.Monitor,
) *AdminHandler {
	return &AdminHandler{
		app:      app,
		accounts: accounts,
		payments: payments,
		seats:    seats,
		monitor:  monitor,
	}
}

// ListUsers returns every registered user with payment and ticket
// joined, narrowed by ?search= and ?status=.
func (h *AdminHandler) ListUsers(e *core.RequestEvent) error {
	if err := requireRole(e, models.RoleAdmin); err != nil {
		return err
	}

	query := e.Request.URL.Query()
	users, err := h.accounts.ListUsers(e.Request.Context(), query.Get("search"), query.Get("status"))
	if err != nil {
		slog.Error("list users", "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, users)
}

type reviewRequest struct {
	Status string `json:"status"`
}

// UpdatePaymentStatus records a review decision (confirmed or
// rejected) for the target user's payment.
func (h *AdminHandler) UpdatePaymentStatus(e *core.RequestEvent) error {
	if err := requireRole(e, models.RoleAdmin); err != nil {
		return err
	}

	var req reviewRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	userID := e.Request.PathValue("userId")
	payment, err := h.payments.UpdateStatus(e.Request.Context(), userID, req.Status)
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		return apis.NewBadRequestError("Status must be confirmed or rejected", nil)
	case errors.Is(err, services.ErrPaymentNotFound):
		return apis.NewNotFoundError("Payment not found", nil)
	case err != nil:
		slog.Error("update payment status", "user_id", userID, "error", err)
		h.monitor.TrackOperation("review_payment", "error")
		return apis.NewInternalServerError("internal error", err)
	}

	h.monitor.TrackOperation("review_payment", req.Status)
	return e.JSON(http.StatusOK, payment)
}

type assignSeatRequest struct {
	TableType   string `json:"table_type"`
	TableNumber string `json:"table_number"`
	SeatNumber  string `json:"seat_number"`
}

// AssignSeat sets or replaces the target user's table and seat.
func (h *AdminHandler) AssignSeat(e *core.RequestEvent) error {
	if err := requireRole(e, models.RoleAdmin); err != nil {
		return err
	}

	var req assignSeatRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	userID := e.Request.PathValue("userId")
	assigned, err := h.seats.AssignSeat(e.Request.Context(), userID, req.TableType, req.TableNumber, req.SeatNumber)
	switch {
	case errors.Is(err, services.ErrMissingSeatFields):
		return apis.NewBadRequestError("Table type, table number and seat number are required", nil)
	case errors.Is(err, services.ErrInvalidTableType):
		return apis.NewBadRequestError("Unknown table type", nil)
	case errors.Is(err, services.ErrPaymentNotConfirmed):
		return apis.NewBadRequestError("Payment must be confirmed before assigning a seat", nil)
	case err != nil:
		slog.Error("assign seat", "user_id", userID, "error", err)
		h.monitor.TrackOperation("assign_seat", "error")
		return apis.NewInternalServerError("internal error", err)
	}

	h.monitor.TrackOperation("assign_seat", "success")
	return e.JSON(http.StatusOK, assigned)
}

// Promote grants the target user the admin role.
func (h *AdminHandler) Promote(e *core.RequestEvent) error {
	if err := requireRole(e, models.RoleAdmin); err != nil {
		return err
	}

	userID := e.Request.PathValue("userId")
	user, err := h.accounts.PromoteToAdmin(e.Request.Context(), userID)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return apis.NewNotFoundError("User not found", nil)
	case err != nil:
		slog.Error("promote user", "user_id", userID, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, user)
}
