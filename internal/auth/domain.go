package auth

import (
	"time"

	"github.com/atlas-crm/atlas-crm/internal/authz"
)

// Account represents an admin account able to sign in to the CRM.
type Account struct {
	ID                  int64
	Username            string
	Email               string
	PasswordHash        string
	Role                authz.Role
	IsActive            bool
	CreatedAt           time.Time
	CreatedBy           *int64
	LastLogin           *time.Time
	FailedLoginAttempts int
	LockedUntil         *time.Time
}

// IsLocked reports whether the account is under a login lockout.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// Profile is the wire representation of an account returned by the API.
type Profile struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
	IsLocked  bool       `json:"is_locked"`
}

// Profile converts the account into its wire representation.
func (a *Account) Profile(now time.Time) Profile {
	return Profile{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role.String(),
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		LastLogin: a.LastLogin,
		IsLocked:  a.IsLocked(now),
	}
}
