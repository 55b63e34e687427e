package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
)

// Handler serves GET /admin/dashboard.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Gate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers the dashboard route behind view_dashboard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.Require(authz.PermViewDashboard)).Get("/", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching dashboard data")
		return
	}
	httpx.Data(w, http.StatusOK, summary)
}
