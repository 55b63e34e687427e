package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/atlas-crm/atlas-crm/testing"
)

const sessionCookie = "atlas_session"

func authServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		if body.Username != "root" || body.Password != "RootPassw0rd" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Invalid username or password",
			})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "s-1", Path: "/"})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Login successful",
			"user": map[string]any{
				"id":         1,
				"username":   "root",
				"email":      "root@atlas.test",
				"role":       "super_admin",
				"is_active":  true,
				"created_at": time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			},
		})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value != "s-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Authentication required",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user": map[string]any{
				"id":        1,
				"username":  "root",
				"role":      "super_admin",
				"is_active": true,
			},
		})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Logout successful",
		})
	})
	mux.HandleFunc("POST /auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CurrentPassword string `json:"current_password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		if body.CurrentPassword != "RootPassw0rd" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Current password is incorrect",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Password changed successfully",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginStoresSessionAndPrincipal(t *testing.T) {
	srv := authServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	res := c.Login(context.Background(), "root", "RootPassw0rd", true)
	require.True(t, res.Success)
	require.Equal(t, "Login successful", res.Message)
	require.NotNil(t, res.User)
	require.Equal(t, "root", res.User.Username)
	require.Equal(t, "super_admin", res.User.Role)

	current := c.CurrentUser()
	require.NotNil(t, current)
	require.Equal(t, int64(1), current.ID)

	user, ok := c.CheckSession(context.Background())
	require.True(t, ok)
	require.Equal(t, "root", user.Username)
}

func TestLoginFailureKeepsPrincipal(t *testing.T) {
	srv := authServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	ok := c.Login(context.Background(), "root", "RootPassw0rd", false)
	require.True(t, ok.Success)

	res := c.Login(context.Background(), "root", "wrong", false)
	require.False(t, res.Success)
	require.Equal(t, "Invalid username or password", res.Message)
	require.Nil(t, res.User)

	current := c.CurrentUser()
	require.NotNil(t, current)
	require.Equal(t, "root", current.Username)
}

func TestLoginUnreachableServerFallsBack(t *testing.T) {
	srv := authServer(t)
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	res := c.Login(context.Background(), "root", "RootPassw0rd", false)
	require.False(t, res.Success)
	require.Equal(t, "Unable to reach the server. Please try again.", res.Message)
	require.Nil(t, c.CurrentUser())
}

func TestCheckSessionWithoutCookie(t *testing.T) {
	srv := authServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	user, ok := c.CheckSession(context.Background())
	require.False(t, ok)
	require.Nil(t, user)
	require.Nil(t, c.CurrentUser())
}

func TestLogoutClearsPrincipalEvenWhenUnreachable(t *testing.T) {
	srv := authServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	require.True(t, c.Login(context.Background(), "root", "RootPassw0rd", false).Success)
	require.NotNil(t, c.CurrentUser())

	srv.Close()
	res := c.Logout(context.Background())
	require.True(t, res.Success)
	require.Nil(t, c.CurrentUser())
}

func TestChangePasswordPassthrough(t *testing.T) {
	srv := authServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)
	require.True(t, c.Login(context.Background(), "root", "RootPassw0rd", false).Success)

	res := c.ChangePassword(context.Background(), "wrong", "NewPassw0rd1")
	require.False(t, res.Success)
	require.Equal(t, "Current password is incorrect", res.Message)

	res = c.ChangePassword(context.Background(), "RootPassw0rd", "NewPassw0rd1")
	require.True(t, res.Success)
	require.Equal(t, "Password changed successfully", res.Message)
}
