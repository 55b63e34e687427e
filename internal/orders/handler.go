package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// Recorder receives audit entries for order moderation events.
type Recorder interface {
	Record(ctx context.Context, actorID int64, action, entity, detail string)
}

// CacheBumper invalidates derived analytics after a write.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Handler serves the /admin/orders endpoints.
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

// MountRoutes registers order routes behind manage_orders.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(authz.PermManageOrders))
		r.Get("/", h.listOrders)
		r.Put("/{reference}/status", h.updateStatus)
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := shared.ParseListQuery(r)
	// An unknown status filter simply matches nothing.
	filter := Status(r.URL.Query().Get("status"))
	items, page, err := h.service.List(r.Context(), filter, q.Page, q.Limit)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}
	views := make([]View, len(items))
	for i := range items {
		views[i] = items[i].View()
	}
	httpx.Data(w, http.StatusOK, map[string]any{
		"orders":      views,
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
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		httpx.Fail(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status := ParseStatus(req.Status)
	if status == "" {
		httpx.Fail(w, http.StatusBadRequest, "Invalid status. Must be one of: pending, processing, shipped, delivered, cancelled, refunded")
		return
	}

	if err := h.service.UpdateStatus(r.Context(), reference, status); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("update order status", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error updating order status")
		return
	}

	principal := authz.PrincipalFromContext(r.Context())
	if h.audit != nil && principal != nil {
		h.audit.Record(r.Context(), principal.ID, "orders.status", "order", fmt.Sprintf("%s -> %s", reference, status))
	}
	if h.cache != nil {
		if err := h.cache.Bump(r.Context()); err != nil {
			h.logger.Warn("bump analytics cache", slog.Any("error", err))
		}
	}

	httpx.Message(w, http.StatusOK, fmt.Sprintf("Order %s status updated to %s", reference, status))
}
