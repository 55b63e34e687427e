package accounts

import (
	"time"

	"github.com/atlas-crm/atlas-crm/internal/authz"
)

// Admin is an administrative account as seen by the management endpoints.
type Admin struct {
	ID          int64
	Username    string
	Email       string
	Role        authz.Role
	IsActive    bool
	CreatedAt   time.Time
	CreatedBy   *int64
	LastLogin   *time.Time
	LockedUntil *time.Time
}

// IsLocked reports whether the account is under a login lockout.
func (a *Admin) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// View is the wire representation of an admin account.
type View struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
	IsLocked  bool       `json:"is_locked"`
}

// View converts the admin into its wire representation.
func (a *Admin) View(now time.Time) View {
	return View{
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
