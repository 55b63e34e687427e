package authz_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/shared"
	_ "github.com/atlas-crm/atlas-crm/testing"
)

type stubAccounts struct {
	principals map[int64]*authz.Principal
}

func (s *stubAccounts) ResolvePrincipal(ctx context.Context, userID int64) (*authz.Principal, error) {
	return s.principals[userID], nil
}

func newSession(t *testing.T, userID int64, role authz.Role) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	manager := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "atlas_session", "secret", time.Hour, false)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	if userID != 0 {
		sess.SetPrincipal(userID, "probe", role.String())
	}
	return sess
}

func serve(t *testing.T, gate authz.Gate, perm authz.Permission, sess *shared.Session) *httptest.ResponseRecorder {
	t.Helper()
	handler := gate.Require(perm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	if sess != nil {
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestGateUnauthenticatedFallback(t *testing.T) {
	gate := authz.Gate{Accounts: &stubAccounts{}}

	res := serve(t, gate, authz.PermViewDashboard, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Contains(t, res.Body.String(), `"success":false`)

	// Anonymous session behaves like no session at all.
	res = serve(t, gate, authz.PermViewDashboard, newSession(t, 0, authz.RoleUnknown))
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestGateForbiddenFallback(t *testing.T) {
	accounts := &stubAccounts{principals: map[int64]*authz.Principal{
		7: {ID: 7, Username: "mod", Role: authz.RoleModerator},
	}}
	gate := authz.Gate{Accounts: accounts}

	res := serve(t, gate, authz.PermManageUsers, newSession(t, 7, authz.RoleModerator))
	require.Equal(t, http.StatusForbidden, res.Code)
	require.Contains(t, res.Body.String(), "Insufficient permissions")
}

func TestGateAllowsGrantedPermission(t *testing.T) {
	accounts := &stubAccounts{principals: map[int64]*authz.Principal{
		7: {ID: 7, Username: "mod", Role: authz.RoleModerator},
	}}
	gate := authz.Gate{Accounts: accounts}

	res := serve(t, gate, authz.PermViewUsers, newSession(t, 7, authz.RoleModerator))
	require.Equal(t, http.StatusNoContent, res.Code)
}

func TestGateStalePrincipalTreatedAsUnauthenticated(t *testing.T) {
	// Session references an account that no longer resolves (deleted,
	// deactivated or locked); the gate answers 401, not 403.
	gate := authz.Gate{Accounts: &stubAccounts{}}

	res := serve(t, gate, authz.PermViewDashboard, newSession(t, 99, authz.RoleAdmin))
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.True(t, strings.Contains(res.Body.String(), "invalid or expired"))
}
