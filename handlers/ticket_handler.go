package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"event-portal/models"
	"event-portal/services"
	"event-portal/ticket"
)

type TicketHandler struct {
	app      core.App
	accounts *services.AccountService
}

func NewTicketHandler(app core.App, accounts *services.AccountService) *TicketHandler {
	return &TicketHandler{app: app, accounts: accounts}
}

func (h *TicketHandler) callerTicket(e *core.RequestEvent) (ticket.TicketData, error) {
	detail, err := h.accounts.UserWithDetails(e.Request.Context(), e.Auth.Id)
	if err != nil {
		slog.Error("load account snapshot", "user_id", e.Auth.Id, "error", err)
		return ticket.TicketData{}, apis.NewInternalServerError("internal error", err)
	}
	if detail.Ticket == nil {
		return ticket.TicketData{}, apis.NewNotFoundError("No seat assigned yet", nil)
	}
	return ticket.FromAssignment(detail.User, *detail.Ticket), nil
}

// MyTicket returns the caller's seat assignment together with the QR
// payload text the entrance scanner expects.
func (h *TicketHandler) MyTicket(e *core.RequestEvent) error {
	if err := requireAuth(e); err != nil {
		return err
	}

	data, err := h.callerTicket(e)
	if err != nil {
		return err
	}

	payload, err := ticket.Encode(data)
	if err != nil {
		slog.Error("encode ticket payload", "user_id", e.Auth.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	resp := map[string]any{
		"ticket":     data,
		"qr_payload": payload,
	}
	if amount, ok := models.AmountFor(data.TableType); ok {
		resp["tier_amount"] = amount
	}

	return e.JSON(http.StatusOK, resp)
}

// MyTicketQR renders the caller's ticket QR as a downloadable PNG.
func (h *TicketHandler) MyTicketQR(e *core.RequestEvent) error {
	if err := requireAuth(e); err != nil {
		return err
	}

	data, err := h.callerTicket(e)
	if err != nil {
		return err
	}

	png, err := ticket.EncodePNG(data, 512)
	if err != nil {
		slog.Error("render ticket qr", "user_id", e.Auth.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	e.Response.Header().Set("Content-Disposition", `attachment; filename="ticket.png"`)
	return e.Blob(http.StatusOK, "image/png", png)
}
