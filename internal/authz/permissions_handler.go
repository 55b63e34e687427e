package authz

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
)

// PermissionsHandler exposes the current principal's effective permissions so
// UI clients can hide affordances without hardcoding the table.
type PermissionsHandler struct {
	logger *slog.Logger
	gate   Gate
}

// NewPermissionsHandler builds a PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, gate Gate) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, gate: gate}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuth)
		r.Get("/", h.listPermissions)
	})
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	perms := Grants(principal.Role)
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.String())
	}
	sort.Strings(names)
	httpx.Data(w, http.StatusOK, map[string]any{
		"role":        principal.Role.String(),
		"permissions": names,
	})
}
