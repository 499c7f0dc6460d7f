package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"

	"event-portal/models"
	"event-portal/monitoring"
	"event-portal/services"
)

type PaymentHandler struct {
	app      core.App
	payments *services.PaymentService
	monitor  *monitoring.Monitor
}

func NewPaymentHandler(app core.App, payments *services.PaymentService, monitor *monitoring.Monitor) *PaymentHandler {
	return &PaymentHandler{app: app, payments: payments, monitor: monitor}
}

type receiptRequest struct {
	ReceiptURL string `json:"receipt_url"`
}

// SubmitReceipt attaches a payment receipt to the caller's payment.
// Accepts either a multipart upload (field "receipt") or a JSON body
// carrying an already hosted receipt URL.
func (h *PaymentHandler) SubmitReceipt(e *core.RequestEvent) error {
	if err := requireAuth(e); err != nil {
		return err
	}
	ctx := e.Request.Context()

	var file *filesystem.File
	var receiptURL string

	if strings.HasPrefix(e.Request.Header.Get("Content-Type"), "multipart/form-data") {
		_, header, err := e.Request.FormFile("receipt")
		if err != nil {
			return apis.NewBadRequestError("Receipt file is required", err)
		}
		file, err = filesystem.NewFileFromMultipart(header)
		if err != nil {
			return apis.NewBadRequestError("Invalid receipt file", err)
		}
	} else {
		var req receiptRequest
		if err := e.BindBody(&req); err != nil {
			return apis.NewBadRequestError("Invalid request", err)
		}
		receiptURL = strings.TrimSpace(req.ReceiptURL)
	}

	payment, err := h.payments.SubmitReceipt(ctx, e.Auth.Id, file, receiptURL)
	switch {
	case errors.Is(err, services.ErrMissingReceipt):
		return apis.NewBadRequestError("A receipt file or URL is required", nil)
	case errors.Is(err, services.ErrPaymentNotFound):
		return apis.NewNotFoundError("Payment not found", nil)
	case err != nil:
		slog.Error("submit receipt", "user_id", e.Auth.Id, "error", err)
		h.monitor.TrackOperation("submit_receipt", "error")
		return apis.NewInternalServerError("internal error", err)
	}

	h.monitor.TrackOperation("submit_receipt", "success")
	slog.Info("receipt submitted", "user_id", e.Auth.Id)
	return e.JSON(http.StatusOK, payment)
}

// GetTiers lists the ticket pricing tiers. Public: the registration
// page shows them before login.
func (h *PaymentHandler) GetTiers(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, models.Tiers())
}
