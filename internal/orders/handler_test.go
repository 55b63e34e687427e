package orders_test

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
	"github.com/atlas-crm/atlas-crm/internal/orders"
	"github.com/atlas-crm/atlas-crm/internal/shared"
	_ "github.com/atlas-crm/atlas-crm/testing"
)

type memRepo struct {
	items []orders.Order
}

func (r *memRepo) List(ctx context.Context, status orders.Status, limit, offset int) ([]orders.Order, int, error) {
	var matched []orders.Order
	for _, o := range r.items {
		if status != "" && o.Status != status {
			continue
		}
		matched = append(matched, o)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, reference string, status orders.Status) error {
	for i := range r.items {
		if r.items[i].Reference == reference {
			r.items[i].Status = status
			return nil
		}
	}
	return shared.ErrNotFound
}

type stubAccounts struct{}

func (stubAccounts) ResolvePrincipal(ctx context.Context, userID int64) (*authz.Principal, error) {
	if userID == 3 {
		return &authz.Principal{ID: 3, Username: "triage", Role: authz.RoleModerator}, nil
	}
	return nil, nil
}

type stubBumper struct{ bumps int }

func (s *stubBumper) Bump(ctx context.Context) error { s.bumps++; return nil }

type fixture struct {
	repo     *memRepo
	cache    *stubBumper
	router   chi.Router
	sessions *shared.SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "atlas_session", "secret", time.Hour, false)

	placed := time.Date(2025, 8, 2, 14, 30, 0, 0, time.UTC)
	repo := &memRepo{items: []orders.Order{
		{ID: 1, Reference: "ORD0001", CustomerName: "Ada Duarte", SellerName: "Brightware", Amount: 82.50, Status: orders.StatusPending, PlacedAt: placed, ItemsCount: 2},
		{ID: 2, Reference: "ORD0002", CustomerName: "Bo Lindqvist", SellerName: "Brightware", Amount: 19.99, Status: orders.StatusDelivered, PlacedAt: placed.Add(-48 * time.Hour), ItemsCount: 1},
	}}
	cache := &stubBumper{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := authz.Gate{Accounts: stubAccounts{}, Logger: logger}
	handler := orders.NewHandler(logger, orders.NewService(repo), gate, nil, cache)

	router := chi.NewRouter()
	router.Route("/admin/orders", handler.MountRoutes)
	return &fixture{repo: repo, cache: cache, router: router, sessions: sessions}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	// Moderators hold manage_orders, so the fixture signs in as one.
	sess, err := f.sessions.Load(req.Context(), req)
	require.NoError(t, err)
	sess.SetPrincipal(3, "triage", authz.RoleModerator.String())
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/admin/orders", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Data struct {
			Orders []orders.View `json:"orders"`
			Total  int           `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, 2, body.Data.Total)
	require.Equal(t, "ORD0001", body.Data.Orders[0].ID)
	require.Equal(t, "2025-08-02 14:30", body.Data.Orders[0].OrderDate)
}

func TestListOrdersStatusFilter(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/admin/orders?status=delivered", nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"total":1`)
	require.Contains(t, res.Body.String(), "ORD0002")

	// Unknown filter values match nothing rather than erroring.
	res = f.do(t, http.MethodGet, "/admin/orders?status=lost", nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"total":0`)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPut, "/admin/orders/ORD0001/status", map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "Order ORD0001 status updated to shipped")
	require.Equal(t, orders.StatusShipped, f.repo.items[0].Status)
	require.Equal(t, 1, f.cache.bumps)
}

func TestUpdateOrderStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPut, "/admin/orders/ORD0001/status", map[string]any{"status": "lost"})
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "Invalid status. Must be one of: pending, processing, shipped, delivered, cancelled, refunded")
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPut, "/admin/orders/ORD9999/status", map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Contains(t, res.Body.String(), "Order not found")
}
