package analytics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
)

// Handler serves the chart and report endpoints under /admin.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Gate
	now     func() time.Time
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, now: time.Now}
}

// MountRoutes registers analytics routes behind view_analytics. The router
// passed in is the /admin subrouter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(authz.PermViewAnalytics))
		r.Get("/analytics/revenue", h.revenue)
		r.Get("/analytics/users", h.users)
		r.Get("/reports/sales", h.salesReport)
	})
}

func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.Revenue(r.Context())
	if err != nil {
		h.logger.Error("revenue analytics", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching revenue analytics")
		return
	}
	httpx.Data(w, http.StatusOK, series)
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.Users(r.Context())
	if err != nil {
		h.logger.Error("user analytics", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error fetching user analytics")
		return
	}
	httpx.Data(w, http.StatusOK, series)
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	start := now.AddDate(0, 0, -30)
	end := now
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD")
			return
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD")
			return
		}
		end = parsed
	}
	if end.Before(start) {
		httpx.Fail(w, http.StatusBadRequest, "end_date must not precede start_date")
		return
	}

	report, err := h.service.Sales(r.Context(), start, end)
	if err != nil {
		h.logger.Error("sales report", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Error generating sales report")
		return
	}
	httpx.Data(w, http.StatusOK, report)
}
