package sellers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/sellers"
	"github.com/atlas-crm/atlas-crm/internal/shared"
	_ "github.com/atlas-crm/atlas-crm/testing"
)

type memRepo struct {
	items []sellers.Seller
}

func (r *memRepo) List(ctx context.Context, search string, limit, offset int) ([]sellers.Seller, int, error) {
	total := len(r.items)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return r.items[offset:end], total, nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, id int64, status sellers.Status) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Status = status
			return nil
		}
	}
	return shared.ErrNotFound
}

type stubAccounts struct {
	principals map[int64]*authz.Principal
}

func (s *stubAccounts) ResolvePrincipal(ctx context.Context, userID int64) (*authz.Principal, error) {
	return s.principals[userID], nil
}

func newRouter(t *testing.T, repo *memRepo) (chi.Router, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "atlas_session", "secret", time.Hour, false)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := authz.Gate{Accounts: &stubAccounts{principals: map[int64]*authz.Principal{
		1: {ID: 1, Username: "ops", Role: authz.RoleAdmin},
		2: {ID: 2, Username: "triage", Role: authz.RoleModerator},
	}}, Logger: logger}

	handler := sellers.NewHandler(logger, sellers.NewService(repo), gate, nil, nil)
	router := chi.NewRouter()
	router.Route("/admin/sellers", handler.MountRoutes)
	return router, sessions
}

func do(t *testing.T, router chi.Router, sessions *shared.SessionManager, actorID int64, role authz.Role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	sess, err := sessions.Load(req.Context(), req)
	require.NoError(t, err)
	sess.SetPrincipal(actorID, "actor", role.String())
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestListSellers(t *testing.T) {
	repo := &memRepo{items: []sellers.Seller{
		{ID: 1, Name: "Brightware", Email: "hello@brightware.io", Status: sellers.StatusActive, RegisteredAt: time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC), TotalProducts: 12, TotalSales: 4820.75, CommissionRate: 8.5},
	}}
	router, sessions := newRouter(t, repo)

	res := do(t, router, sessions, 1, authz.RoleAdmin, http.MethodGet, "/admin/sellers", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Data struct {
			Sellers []sellers.View `json:"sellers"`
			Total   int            `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, 1, body.Data.Total)
	require.Equal(t, 8.5, body.Data.Sellers[0].CommissionRate)
	require.Equal(t, "2024-11-05", body.Data.Sellers[0].RegistrationDate)
}

func TestSellersForbiddenForModerator(t *testing.T) {
	router, sessions := newRouter(t, &memRepo{})

	// manage_sellers is not in the moderator grant set.
	res := do(t, router, sessions, 2, authz.RoleModerator, http.MethodGet, "/admin/sellers", nil)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestUpdateSellerStatus(t *testing.T) {
	repo := &memRepo{items: []sellers.Seller{{ID: 1, Name: "Brightware", Status: sellers.StatusPending}}}
	router, sessions := newRouter(t, repo)

	res := do(t, router, sessions, 1, authz.RoleAdmin, http.MethodPut, "/admin/sellers/1/status", map[string]any{"status": "active"})
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "Seller 1 status updated to active")
	require.Equal(t, sellers.StatusActive, repo.items[0].Status)

	res = do(t, router, sessions, 1, authz.RoleAdmin, http.MethodPut, "/admin/sellers/1/status", map[string]any{"status": "inactive"})
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "Invalid status. Must be 'active', 'pending', or 'suspended'")
}
