package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atlas-crm/atlas-crm/internal/accounts"
	"github.com/atlas-crm/atlas-crm/internal/analytics"
	"github.com/atlas-crm/atlas-crm/internal/audit"
	"github.com/atlas-crm/atlas-crm/internal/auth"
	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/customers"
	"github.com/atlas-crm/atlas-crm/internal/dashboard"
	"github.com/atlas-crm/atlas-crm/internal/orders"
	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
	"github.com/atlas-crm/atlas-crm/internal/products"
	"github.com/atlas-crm/atlas-crm/internal/sellers"
	"github.com/atlas-crm/atlas-crm/internal/shared"
	"github.com/atlas-crm/atlas-crm/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler        *auth.Handler
	AccountsHandler    *accounts.Handler
	CustomersHandler   *customers.Handler
	SellersHandler     *sellers.Handler
	OrdersHandler      *orders.Handler
	ProductsHandler    *products.Handler
	DashboardHandler   *dashboard.Handler
	AnalyticsHandler   *analytics.Handler
	AuditHandler       *audit.Handler
	PermissionsHandler *authz.PermissionsHandler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with Atlas defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		if params.AccountsHandler != nil {
			r.Route("/users", params.AccountsHandler.MountRoutes)
		}
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httpx.JSON(w, http.StatusOK, struct {
				Success   bool   `json:"success"`
				Message   string `json:"message"`
				Timestamp string `json:"timestamp"`
			}{Success: true, Message: "Atlas CRM API is running", Timestamp: time.Now().Format(time.RFC3339)})
		})

		if params.DashboardHandler != nil {
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		}
		if params.CustomersHandler != nil {
			r.Route("/users", params.CustomersHandler.MountRoutes)
		}
		if params.SellersHandler != nil {
			r.Route("/sellers", params.SellersHandler.MountRoutes)
		}
		if params.OrdersHandler != nil {
			r.Route("/orders", params.OrdersHandler.MountRoutes)
		}
		if params.ProductsHandler != nil {
			r.Route("/products", params.ProductsHandler.MountRoutes)
		}
		if params.AnalyticsHandler != nil {
			params.AnalyticsHandler.MountRoutes(r)
		}
		if params.AuditHandler != nil {
			r.Route("/audit", params.AuditHandler.MountRoutes)
		}
	})

	if params.PermissionsHandler != nil {
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
