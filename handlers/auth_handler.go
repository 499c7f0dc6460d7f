package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"event-portal/monitoring"
	"event-portal/services"
)

type AuthHandler struct {
	app      core.App
	accounts *services.AccountService
	monitor  *monitoring.Monitor
}

func NewAuthHandler(app core.App, accounts *services.AccountService, monitor *monitoring.Monitor) *AuthHandler {
	return &AuthHandler{app: app, accounts: accounts, monitor: monitor}
}

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	MatricNumber string `json:"matric_number"`
}

// Register creates an account plus its pending payment and signs the
// caller in right away.
func (h *AuthHandler) Register(e *core.RequestEvent) error {
	var req registerRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apis.NewBadRequestError("Name, email and password are required", nil)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apis.NewBadRequestError("Invalid email address", nil)
	}
	if len(req.Password) < 8 {
		return apis.NewBadRequestError("Password must be at least 8 characters", nil)
	}

	detail, err := h.accounts.Register(e.Request.Context(), req.Name, req.Email, req.Password, req.MatricNumber)
	if err != nil {
		slog.Error("register account", "email", req.Email, "error", err)
		h.monitor.TrackOperation("register", "error")
		return apis.NewBadRequestError(registerErrorMessage(err), err)
	}
	h.monitor.TrackOperation("register", "success")
	slog.Info("account registered", "user_id", detail.ID)

	record, err := h.app.FindRecordById("users", detail.ID)
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}
	token, err := record.NewAuthToken()
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  detail,
	})
}

// registerErrorMessage maps record validation failures to the fixed
// set of user-facing messages. Anything unrecognized stays generic so
// store internals never leak to the client.
func registerErrorMessage(err error) string {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		if _, ok := verrs["email"]; ok {
			return "Email is already registered"
		}
		if _, ok := verrs["password"]; ok {
			return "Password does not meet requirements"
		}
	}
	return "Registration failed"
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the credentials and returns a fresh auth token with the
// caller's joined registration snapshot.
func (h *AuthHandler) Login(e *core.RequestEvent) error {
	var req loginRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	record, err := h.app.FindAuthRecordByEmail("users", strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil || !record.ValidatePassword(req.Password) {
		// one message for both so probing cannot tell accounts apart
		h.monitor.TrackOperation("login", "failure")
		return apis.NewBadRequestError("Invalid email or password", nil)
	}
	h.monitor.TrackOperation("login", "success")

	token, err := record.NewAuthToken()
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}

	detail, err := h.accounts.UserWithDetails(e.Request.Context(), record.Id)
	if err != nil {
		slog.Error("load account snapshot", "user_id", record.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  detail,
	})
}

// Logout drops the cached snapshot for the caller. Tokens are
// stateless; the client discards its copy.
func (h *AuthHandler) Logout(e *core.RequestEvent) error {
	if err := requireAuth(e); err != nil {
		return err
	}

	h.accounts.Invalidate(e.Request.Context(), e.Auth.Id)
	return e.JSON(http.StatusOK, map[string]any{"message": "Logged out"})
}

// Me returns the caller's user, payment and ticket in one response.
func (h *AuthHandler) Me(e *core.RequestEvent) error {
	if err := requireAuth(e); err != nil {
		return err
	}

	detail, err := h.accounts.UserWithDetails(e.Request.Context(), e.Auth.Id)
	if err != nil {
		slog.Error("load account snapshot", "user_id", e.Auth.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}
	return e.JSON(http.StatusOK, detail)
}
