package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/crypto/bcrypt"

	"event-portal/models"
	"event-portal/monitoring"
	"event-portal/services"
	"event-portal/ticket"
)

// VerifyHandler checks scanned QR payloads at the entrance. Callers
// are either a logged-in admin or a gate station presenting the shared
// station key.
type VerifyHandler struct {
	accounts       *services.AccountService
	stationKeyHash []byte
	monitor        *monitoring.Monitor
}

func NewVerifyHandler(accounts *services.AccountService, stationKeyHash []byte, monitor *monitoring.Monitor) *VerifyHandler {
	return &VerifyHandler{accounts: accounts, stationKeyHash: stationKeyHash, monitor: monitor}
}

func (h *VerifyHandler) stationKeyMatches(key string) bool {
	if len(h.stationKeyHash) == 0 || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(h.stationKeyHash, []byte(key)) == nil
}

func (h *VerifyHandler) authorized(e *core.RequestEvent) bool {
	if e.Auth != nil && models.CanAct(e.Auth.GetString("role"), models.RoleAdmin) {
		return true
	}
	return h.stationKeyMatches(e.Request.Header.Get("X-Station-Key"))
}

type verifyRequest struct {
	Payload string `json:"payload"`
}

// verificationOutcome grades a decoded payload against the holder's
// live registration state. The payload is a point-in-time snapshot;
// the live seat and payment sit next to it so the gate can spot
// revocations and reassignments. detail is nil when the holder record
// no longer exists.
func verificationOutcome(data ticket.TicketData, detail *models.UserWithDetails) (map[string]any, string) {
	result := map[string]any{
		"valid":  true,
		"ticket": data,
	}

	if detail == nil {
		result["valid"] = false
		result["reason"] = "Ticket holder no longer exists"
		return result, "revoked"
	}

	result["holder"] = map[string]any{
		"id":    detail.ID,
		"name":  detail.Name,
		"email": detail.Email,
	}
	if detail.Payment != nil {
		result["payment_status"] = detail.Payment.Status
	}

	if detail.Ticket == nil {
		result["valid"] = false
		result["reason"] = "Seat assignment has been revoked"
		return result, "revoked"
	}
	result["current_ticket"] = detail.Ticket

	if detail.Ticket.TableNumber != data.TableNumber || detail.Ticket.SeatNumber != data.SeatNumber {
		result["reason"] = "Seat was reassigned; use the current ticket"
		return result, "reassigned"
	}

	return result, "valid"
}

// Verify decodes a scanned payload and, when it names a ticket, grades
// it against the holder's live registration state. A payload that is
// not a ticket is a negative verification result.
func (h *VerifyHandler) Verify(e *core.RequestEvent) error {
	if !h.authorized(e) {
		return apis.NewForbiddenError("Admin session or station key required", nil)
	}

	var req verifyRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	started := time.Now()
	data, ok := ticket.Decode(req.Payload)
	h.monitor.TrackScan(time.Since(started))

	if !ok {
		h.monitor.TrackOperation("verify_ticket", "invalid")
		return e.JSON(http.StatusBadRequest, map[string]any{
			"valid":  false,
			"reason": "Not a ticket QR code",
		})
	}

	detail, err := h.accounts.UserWithDetails(e.Request.Context(), data.UserID)
	if err != nil {
		detail = nil
	}

	result, status := verificationOutcome(data, detail)
	h.monitor.TrackOperation("verify_ticket", status)

	return e.JSON(http.StatusOK, result)
}
