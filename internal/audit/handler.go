package audit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// Handler serves GET /admin/audit.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Gate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers the audit log route behind audit_logs.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.Require(authz.PermAuditLogs)).Get("/", h.listEntries)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	q := shared.ParseListQuery(r)
	action := r.URL.Query().Get("action")
	entries, page, err := h.service.List(r.Context(), action, q.Page, q.Limit)
	if err != nil {
		h.logger.Error("list audit entries", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching audit log")
		return
	}
	httpx.Data(w, http.StatusOK, map[string]any{
		"entries":     entries,
		"total":       page.Total,
		"page":        page.Page,
		"limit":       page.Limit,
		"total_pages": page.TotalPages,
	})
}
