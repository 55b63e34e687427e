package authz

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/atlas-crm/atlas-crm/internal/platform/httpx"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// AccountSource resolves the principal behind a session user ID. The gate
// consults it on every protected request so deactivations and lockouts take
// effect without waiting for session expiry.
type AccountSource interface {
	ResolvePrincipal(ctx context.Context, userID int64) (*Principal, error)
}

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal, nil when unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// Gate enforces the permission evaluator's verdict at the HTTP boundary.
// This is the authoritative check; any client-side gating over the same
// table is advisory UI hiding only.
type Gate struct {
	Accounts AccountSource
	Logger   *slog.Logger
}

// RequireAuth admits authenticated principals only. The unauthenticated
// fallback (401) is distinct from the forbidden fallback (403) so callers
// can tell a missing session from a denied permission.
func (g Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := g.resolve(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// Require admits principals holding the given permission.
func (g Gate) Require(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := g.resolve(w, r)
			if !ok {
				return
			}
			if !principal.HasPermission(perm) {
				httpx.Fail(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func (g Gate) resolve(w http.ResponseWriter, r *http.Request) (*Principal, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || !sess.Authenticated() {
		httpx.Fail(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	principal, err := g.Accounts.ResolvePrincipal(r.Context(), sess.UserID())
	if err != nil {
		if g.Logger != nil {
			g.Logger.Error("resolve principal", slog.Int64("user_id", sess.UserID()), slog.Any("error", err))
		}
		httpx.Fail(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	if principal == nil {
		httpx.Fail(w, http.StatusUnauthorized, "Session is invalid or expired")
		return nil, false
	}
	return principal, true
}
