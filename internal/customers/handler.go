package customers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// Recorder receives audit entries for customer moderation events.
type Recorder interface {
	Record(ctx context.Context, actorID int64, action, entity, detail string)
}

// CacheBumper invalidates derived analytics after a write.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Handler serves the /admin/users endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Gate
	audit   Recorder
	cache   CacheBumper
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Gate, audit Recorder, cache CacheBumper) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, audit: audit, cache: cache}
}

// MountRoutes registers customer routes. Listing is open to moderators via
// view_users; status changes need manage_users.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.Require(authz.PermViewUsers)).Get("/", h.listCustomers)
	r.With(h.gate.Require(authz.PermManageUsers)).Put("/{id}/status", h.updateStatus)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	q := shared.ParseListQuery(r)
	items, page, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	views := make([]View, len(items))
	for i := range items {
		views[i] = items[i].View()
	}
	httpx.Data(w, http.StatusOK, map[string]any{
		"users":       views,
		"total":       page.Total,
		"page":        page.Page,
		"limit":       page.Limit,
		"total_pages": page.TotalPages,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status := ParseStatus(req.Status)
	if status == "" {
		httpx.Fail(w, http.StatusBadRequest, "Invalid status. Must be 'active', 'inactive', or 'suspended'")
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("update customer status", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error updating user status")
		return
	}

	principal := authz.PrincipalFromContext(r.Context())
	if h.audit != nil && principal != nil {
		h.audit.Record(r.Context(), principal.ID, "customers.status", "shop_user", fmt.Sprintf("%d -> %s", id, status))
	}
	if h.cache != nil {
		if err := h.cache.Bump(r.Context()); err != nil {
			h.logger.Warn("bump analytics cache", slog.Any("error", err))
		}
	}

	httpx.Message(w, http.StatusOK, fmt.Sprintf("User %d status updated to %s", id, status))
}
