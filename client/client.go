// Package client is the Go API client for the Atlas CRM admin backend. It
// keeps the session cookie in a jar and mirrors the backend's response
// envelopes as structured results instead of errors, so callers can branch
// on outcomes without unwrapping.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const fallbackMessage = "Unable to reach the server. Please try again."

// User is the authenticated principal as reported by the backend.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
	IsLocked  bool       `json:"is_locked"`
}

// Result is the outcome of a write operation.
type Result struct {
	Success bool
	Message string
}

// LoginResult is the outcome of a login attempt.
type LoginResult struct {
	Success bool
	Message string
	User    *User
}

// Client talks to the Atlas CRM API. It is safe for concurrent use; the
// cached principal is last-write-wins, concurrent login attempts are not
// de-duplicated.
type Client struct {
	baseURL string
	// probe retries idempotent reads; writes go through once so a login
	// or status change is never replayed.
	probe *retryablehttp.Client
	once  *http.Client

	mu        sync.Mutex
	principal *User
}

// New builds a Client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("client: cookie jar: %w", err)
	}

	probe := retryablehttp.NewClient()
	probe.RetryMax = 2
	probe.RetryWaitMin = 200 * time.Millisecond
	probe.RetryWaitMax = 2 * time.Second
	probe.HTTPClient.Timeout = 10 * time.Second
	probe.HTTPClient.Jar = jar
	probe.Logger = nil

	once := &http.Client{Timeout: 10 * time.Second, Jar: jar}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		probe:   probe,
		once:    once,
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    json.RawMessage `json:"user"`
	Data    json.RawMessage `json:"data"`
}

// CurrentUser returns a copy of the cached principal, or nil when no login
// has succeeded yet.
func (c *Client) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.principal == nil {
		return nil
	}
	u := *c.principal
	return &u
}

func (c *Client) setPrincipal(u *User) {
	c.mu.Lock()
	c.principal = u
	c.mu.Unlock()
}

// CheckSession silently probes /auth/me with the stored cookie. Any failure,
// network or HTTP, means unauthenticated; the method never returns an error
// so startup flows cannot break on a dead backend.
func (c *Client) CheckSession(ctx context.Context) (*User, bool) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		c.setPrincipal(nil)
		return nil, false
	}
	res, err := c.probe.Do(req)
	if err != nil {
		c.setPrincipal(nil)
		return nil, false
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		c.setPrincipal(nil)
		return nil, false
	}
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil || !env.Success || env.User == nil {
		c.setPrincipal(nil)
		return nil, false
	}
	var u User
	if err := json.Unmarshal(env.User, &u); err != nil {
		c.setPrincipal(nil)
		return nil, false
	}
	c.setPrincipal(&u)
	return c.CurrentUser(), true
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// Login performs a single login attempt. Credential failures come back as a
// structured result carrying the server's message; only the transport
// decides between the server message and the generic fallback. A failed
// attempt leaves the cached principal untouched.
func (c *Client) Login(ctx context.Context, username, password string, remember bool) LoginResult {
	env, ok := c.postJSON(ctx, "/auth/login", loginRequest{Username: username, Password: password, RememberMe: remember})
	if !ok {
		return LoginResult{Success: false, Message: fallbackMessage}
	}
	if !env.Success {
		return LoginResult{Success: false, Message: env.Message}
	}
	var u User
	if env.User != nil {
		if err := json.Unmarshal(env.User, &u); err != nil {
			return LoginResult{Success: false, Message: fallbackMessage}
		}
	}
	c.setPrincipal(&u)
	return LoginResult{Success: true, Message: env.Message, User: c.CurrentUser()}
}

// Logout posts to /auth/logout best effort and always clears the cached
// principal, matching the server's always-succeeds logout semantics.
func (c *Client) Logout(ctx context.Context) Result {
	defer c.setPrincipal(nil)
	env, ok := c.postJSON(ctx, "/auth/logout", struct{}{})
	if !ok {
		return Result{Success: true, Message: "Logout successful"}
	}
	return Result{Success: env.Success, Message: env.Message}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword passes the server's verdict through unchanged.
func (c *Client) ChangePassword(ctx context.Context, current, next string) Result {
	env, ok := c.postJSON(ctx, "/auth/change-password", changePasswordRequest{CurrentPassword: current, NewPassword: next})
	if !ok {
		return Result{Success: false, Message: fallbackMessage}
	}
	return Result{Success: env.Success, Message: env.Message}
}

// postJSON performs a non-retried POST and decodes the envelope. ok is false
// only for transport level failures; HTTP error statuses still carry a
// server envelope and decode normally.
func (c *Client) postJSON(ctx context.Context, path string, payload any) (envelope, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return envelope{}, false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return envelope{}, false
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.once.Do(req)
	if err != nil {
		return envelope{}, false
	}
	defer func() { _ = res.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return envelope{}, false
	}
	return env, true
}
