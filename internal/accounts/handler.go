package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/atlas-crm/atlas-crm/internal/auth"
	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// Recorder receives audit entries for account management events.
type Recorder interface {
	Record(ctx context.Context, actorID int64, action, entity, detail string)
}

// Handler manages admin account endpoints under /auth/users.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Gate
	audit     Recorder
	validator *validator.Validate
	titler    cases.Caser
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Gate, audit Recorder) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		audit:     audit,
		validator: validator.New(),
		titler:    cases.Title(language.English),
	}
}

// MountRoutes registers account management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(authz.PermManageUsers))
		r.Get("/", h.listAdmins)
		r.Put("/{id}", h.updateAdmin)
		r.Post("/{id}/reset-password", h.resetPassword)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(authz.PermCreateModerator))
		r.Post("/", h.createAdmin)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(authz.PermDeleteUsers))
		r.Delete("/{id}", h.deleteAdmin)
	})
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	q := shared.ParseListQuery(r)
	admins, page, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list admins", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching admin users")
		return
	}
	now := time.Now()
	views := make([]View, len(admins))
	for i := range admins {
		views[i] = admins[i].View(now)
	}
	httpx.Data(w, http.StatusOK, map[string]any{
		"users":       views,
		"total":       page.Total,
		"page":        page.Page,
		"limit":       page.Limit,
		"total_pages": page.TotalPages,
	})
}

type createRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

func (h *Handler) createAdmin(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Role == "" {
		req.Role = authz.RoleModerator.String()
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}

	role := authz.ParseRole(req.Role)
	if !assignable(role) {
		httpx.Fail(w, http.StatusBadRequest, "Invalid role specified")
		return
	}
	principal := authz.PrincipalFromContext(r.Context())
	if role == authz.RoleAdmin && !principal.CanCreateAdmin() {
		httpx.Fail(w, http.StatusForbidden, "Insufficient permissions to create admin user")
		return
	}

	admin, err := h.service.Create(r.Context(), req.Username, req.Email, req.Password, role, principal.ID)
	if err != nil {
		var policyErr *auth.PolicyError
		switch {
		case errors.As(err, &policyErr):
			httpx.Fail(w, http.StatusBadRequest, policyErr.Error())
		case errors.Is(err, shared.ErrDuplicate):
			httpx.Fail(w, http.StatusBadRequest, "Username or email already exists")
		default:
			h.logger.Error("create admin", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "Error creating user")
		}
		return
	}
	if h.audit != nil {
		h.audit.Record(r.Context(), principal.ID, "accounts.create", "admin_user", admin.Username)
	}

	httpx.JSON(w, http.StatusCreated, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		User    View   `json:"user"`
	}{
		Success: true,
		Message: fmt.Sprintf("%s user created successfully", h.titler.String(role.String())),
		User:    admin.View(time.Now()),
	})
}

type updateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
	Role     *string `json:"role"`
}

func (h *Handler) updateAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}
	target, ok := h.manageableTarget(w, r, id, "Insufficient permissions to modify this user")
	if !ok {
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := UpdateInput{IsActive: req.IsActive}
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		input.Username = &trimmed
	}
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		input.Email = &trimmed
	}
	principal := authz.PrincipalFromContext(r.Context())
	if req.Role != nil && principal.CanCreateAdmin() {
		role := authz.ParseRole(*req.Role)
		if assignable(role) {
			input.Role = &role
		}
	}

	admin, err := h.service.Update(r.Context(), target.ID, input)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			httpx.Fail(w, http.StatusBadRequest, "Username or email already exists")
			return
		}
		h.logger.Error("update admin", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error updating user")
		return
	}
	if h.audit != nil {
		h.audit.Record(r.Context(), principal.ID, "accounts.update", "admin_user", admin.Username)
	}

	httpx.JSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		User    View   `json:"user"`
	}{Success: true, Message: "User updated successfully", User: admin.View(time.Now())})
}

func (h *Handler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}
	principal := authz.PrincipalFromContext(r.Context())
	if id == principal.ID {
		httpx.Fail(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}
	target, ok := h.manageableTarget(w, r, id, "Insufficient permissions to delete this user")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), target.ID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("delete admin", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error deleting user")
		return
	}
	if h.audit != nil {
		h.audit.Record(r.Context(), principal.ID, "accounts.delete", "admin_user", target.Username)
	}
	httpx.Message(w, http.StatusOK, "User deleted successfully")
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}
	target, ok := h.manageableTarget(w, r, id, "Insufficient permissions to reset password for this user")
	if !ok {
		return
	}

	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "New password is required")
		return
	}

	if err := h.service.ResetPassword(r.Context(), target.ID, req.NewPassword); err != nil {
		var policyErr *auth.PolicyError
		if errors.As(err, &policyErr) {
			httpx.Fail(w, http.StatusBadRequest, policyErr.Error())
			return
		}
		h.logger.Error("reset password", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error resetting password")
		return
	}
	principal := authz.PrincipalFromContext(r.Context())
	if h.audit != nil {
		h.audit.Record(r.Context(), principal.ID, "accounts.reset_password", "admin_user", target.Username)
	}
	httpx.Message(w, http.StatusOK, "Password reset successfully")
}

func (h *Handler) targetID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user id")
		return 0, false
	}
	return id, true
}

// manageableTarget loads the target account and checks the role hierarchy
// rule: super admins manage everyone, admins manage moderators only.
func (h *Handler) manageableTarget(w http.ResponseWriter, r *http.Request, id int64, denyMessage string) (*Admin, bool) {
	target, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "User not found")
			return nil, false
		}
		h.logger.Error("load target admin", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	principal := authz.PrincipalFromContext(r.Context())
	if !principal.CanManageUser(target.Role) {
		httpx.Fail(w, http.StatusForbidden, denyMessage)
		return nil, false
	}
	return target, true
}

func assignable(role authz.Role) bool {
	for _, r := range authz.AssignableRoles() {
		if role == r {
			return true
		}
	}
	return false
}
