package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

const rememberTTL = 7 * 24 * time.Hour

// Recorder receives audit entries for authentication events.
type Recorder interface {
	Record(ctx context.Context, actorID int64, action, entity, detail string)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	gate           authz.Gate
	audit          Recorder
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, gate authz.Gate, audit Recorder) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		gate:           gate,
		audit:          audit,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	// Credential guessing gets its own, much tighter bucket than the
	// global limiter.
	loginLimiter := httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
	r.With(loginLimiter).Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Get("/me", h.handleMe)
		r.Post("/change-password", h.handleChangePassword)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(authz.PermSystemConfig))
		r.Post("/cleanup-sessions", h.handleCleanupSessions)
	})
}

type loginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type loginResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	User    Profile `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	account, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			httpx.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, shared.ErrAccountLocked):
			httpx.Fail(w, http.StatusUnauthorized, "Account is temporarily locked due to multiple failed login attempts")
		case errors.Is(err, shared.ErrAccountInactive):
			httpx.Fail(w, http.StatusUnauthorized, "Account is deactivated")
		default:
			h.logger.Error("authenticate", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Fail(w, http.StatusInternalServerError, "Login failed")
		return
	}
	sess.SetPrincipal(account.ID, account.Username, account.Role.String())
	if req.RememberMe {
		sess.SetTTL(rememberTTL)
	}
	expiresAt := time.Now().Add(sess.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, account.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	if h.audit != nil {
		h.audit.Record(r.Context(), account.ID, "auth.login", "admin_user", account.Username)
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		User:    account.Profile(time.Now()),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil && sess.Authenticated() {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		if h.audit != nil {
			h.audit.Record(r.Context(), sess.UserID(), "auth.logout", "admin_user", sess.Username())
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.Message(w, http.StatusOK, "Logout successful")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	account, err := h.service.GetAccount(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("load account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, struct {
		Success bool    `json:"success"`
		User    Profile `json:"user"`
	}{Success: true, User: account.Profile(time.Now())})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}

	principal := authz.PrincipalFromContext(r.Context())
	if err := h.service.ChangePassword(r.Context(), principal.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		var policyErr *PolicyError
		if errors.As(err, &policyErr) {
			httpx.Fail(w, http.StatusBadRequest, policyErr.Error())
			return
		}
		h.logger.Error("change password", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error changing password")
		return
	}
	if h.audit != nil {
		h.audit.Record(r.Context(), principal.ID, "auth.change_password", "admin_user", principal.Username)
	}
	httpx.Message(w, http.StatusOK, "Password changed successfully")
}

func (h *Handler) handleCleanupSessions(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CleanupSessions(r.Context())
	if err != nil {
		h.logger.Error("cleanup sessions", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error cleaning up sessions")
		return
	}
	httpx.Message(w, http.StatusOK, fmt.Sprintf("Cleaned up %d expired sessions", count))
}
