package products

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// Handler serves the /admin/products endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Gate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers catalog routes behind view_products.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(authz.PermViewProducts))
		r.Get("/", h.listProducts)
		r.Get("/categories", h.listCategories)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := shared.ParseListQuery(r)
	category := r.URL.Query().Get("category")
	items, page, err := h.service.List(r.Context(), category, q.Page, q.Limit)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	views := make([]View, len(items))
	for i := range items {
		views[i] = items[i].View()
	}
	httpx.Data(w, http.StatusOK, map[string]any{
		"products":    views,
		"total":       page.Total,
		"page":        page.Page,
		"limit":       page.Limit,
		"total_pages": page.TotalPages,
	})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching categories")
		return
	}
	httpx.Data(w, http.StatusOK, map[string]any{"categories": categories})
}
