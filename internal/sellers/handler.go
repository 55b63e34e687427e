package sellers

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

// Recorder receives audit entries for seller moderation events.
type Recorder interface {
	Record(ctx context.Context, actorID int64, action, entity, detail string)
}

// CacheBumper invalidates derived analytics after a write.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Handler serves the /admin/sellers endpoints.
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

// MountRoutes registers seller routes behind manage_sellers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(authz.PermManageSellers))
		r.Get("/", h.listSellers)
		r.Put("/{id}/status", h.updateStatus)
	})
}

func (h *Handler) listSellers(w http.ResponseWriter, r *http.Request) {
	q := shared.ParseListQuery(r)
	items, page, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list sellers", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching sellers")
		return
	}
	views := make([]View, len(items))
	for i := range items {
		views[i] = items[i].View()
	}
	httpx.Data(w, http.StatusOK, map[string]any{
		"sellers":     views,
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
		httpx.Fail(w, http.StatusBadRequest, "Invalid seller id")
		return
	}

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status := ParseStatus(req.Status)
	if status == "" {
		httpx.Fail(w, http.StatusBadRequest, "Invalid status. Must be 'active', 'pending', or 'suspended'")
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "Seller not found")
			return
		}
		h.logger.Error("update seller status", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error updating seller status")
		return
	}

	principal := authz.PrincipalFromContext(r.Context())
	if h.audit != nil && principal != nil {
		h.audit.Record(r.Context(), principal.ID, "sellers.status", "seller", fmt.Sprintf("%d -> %s", id, status))
	}
	if h.cache != nil {
		if err := h.cache.Bump(r.Context()); err != nil {
			h.logger.Warn("bump analytics cache", slog.Any("error", err))
		}
	}

	httpx.Message(w, http.StatusOK, fmt.Sprintf("Seller %d status updated to %s", id, status))
}
