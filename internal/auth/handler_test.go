package auth_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-crm/atlas-crm/internal/auth"
	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/shared"
	_ "github.com/atlas-crm/atlas-crm/testing"
)

type authFixture struct {
	router   chi.Router
	sessions *shared.SessionManager
	service  *auth.Service
}

func newAuthFixture(t *testing.T, repo auth.Repository) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "atlas_session", "secret", time.Hour, false)
	service := auth.NewService(repo)
	gate := authz.Gate{Accounts: service}
	handler := auth.NewHandler(discardLogger(), service, sessions, gate, nil)

	router := chi.NewRouter()
	router.Use(sessionMiddleware(t, sessions))
	router.Route("/auth", handler.MountRoutes)
	return &authFixture{router: router, sessions: sessions, service: service}
}

// sessionMiddleware mirrors the production session loading/commit wrapping.
func sessionMiddleware(t *testing.T, sessions *shared.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r.Context(), r)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(r.Context(), sess)
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, r.WithContext(ctx))
			require.NoError(t, sessions.Commit(ctx, w, r, sess))
			for k, vals := range rec.Header() {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}
			w.WriteHeader(rec.Code)
			_, _ = w.Write(rec.Body.Bytes())
		})
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doJSON(t *testing.T, router chi.Router, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	fixture := newAuthFixture(t, newMemRepo(testAccount(t)))

	res := doJSON(t, fixture.router, http.MethodPost, "/auth/login",
		`{"username":"root","password":"Correct#Horse1","remember_me":false}`, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Success bool `json:"success"`
		User    struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "root", payload.User.Username)
	assert.Equal(t, "super_admin", payload.User.Role)

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "atlas_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestLoginInvalidCredentials(t *testing.T) {
	fixture := newAuthFixture(t, newMemRepo(testAccount(t)))

	res := doJSON(t, fixture.router, http.MethodPost, "/auth/login",
		`{"username":"root","password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), `"success":false`)
	assert.Contains(t, res.Body.String(), "Invalid credentials")
}

func TestLoginMissingFields(t *testing.T) {
	fixture := newAuthFixture(t, newMemRepo(testAccount(t)))

	res := doJSON(t, fixture.router, http.MethodPost, "/auth/login", `{"username":"root"}`, nil)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Username and password are required")
}

func TestMeWithoutSession(t *testing.T) {
	fixture := newAuthFixture(t, newMemRepo(testAccount(t)))

	res := doJSON(t, fixture.router, http.MethodGet, "/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), `"success":false`)
}

func TestLoginThenMeThenLogout(t *testing.T) {
	fixture := newAuthFixture(t, newMemRepo(testAccount(t)))

	login := doJSON(t, fixture.router, http.MethodPost, "/auth/login",
		`{"username":"root","password":"Correct#Horse1"}`, nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	me := doJSON(t, fixture.router, http.MethodGet, "/auth/me", "", cookies)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"username":"root"`)

	logout := doJSON(t, fixture.router, http.MethodPost, "/auth/logout", "", cookies)
	require.Equal(t, http.StatusOK, logout.Code)
	assert.Contains(t, logout.Body.String(), "Logout successful")

	// The destroyed session no longer authenticates.
	meAfter := doJSON(t, fixture.router, http.MethodGet, "/auth/me", "", cookies)
	require.Equal(t, http.StatusUnauthorized, meAfter.Code)
}

func TestChangePasswordFlow(t *testing.T) {
	repo := newMemRepo(testAccount(t))
	fixture := newAuthFixture(t, repo)

	login := doJSON(t, fixture.router, http.MethodPost, "/auth/login",
		`{"username":"root","password":"Correct#Horse1"}`, nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()

	weak := doJSON(t, fixture.router, http.MethodPost, "/auth/change-password",
		`{"current_password":"Correct#Horse1","new_password":"weak"}`, cookies)
	require.Equal(t, http.StatusBadRequest, weak.Code)
	assert.Contains(t, weak.Body.String(), "at least 8 characters")

	wrong := doJSON(t, fixture.router, http.MethodPost, "/auth/change-password",
		`{"current_password":"nope","new_password":"NewSecret#9"}`, cookies)
	require.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Contains(t, wrong.Body.String(), "Current password is incorrect")

	ok := doJSON(t, fixture.router, http.MethodPost, "/auth/change-password",
		`{"current_password":"Correct#Horse1","new_password":"NewSecret#9"}`, cookies)
	require.Equal(t, http.StatusOK, ok.Code)
	assert.Contains(t, ok.Body.String(), "Password changed successfully")
}

func TestCleanupSessionsRequiresSystemConfig(t *testing.T) {
	account := testAccount(t)
	account.Role = authz.RoleAdmin
	fixture := newAuthFixture(t, newMemRepo(account))

	login := doJSON(t, fixture.router, http.MethodPost, "/auth/login",
		`{"username":"root","password":"Correct#Horse1"}`, nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()

	// admin lacks system_config; only super_admin carries it.
	res := doJSON(t, fixture.router, http.MethodPost, "/auth/cleanup-sessions", "", cookies)
	require.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "Insufficient permissions")
}
