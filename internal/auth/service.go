package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

const (
	lockAfterAttempts = 5
	lockDuration      = 30 * time.Minute
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Authenticate validates credentials by username or email. Lockout applies
// after five consecutive failures and clears after thirty minutes.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*Account, error) {
	account, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	now := s.now()
	if account.IsLocked(now) {
		return nil, shared.ErrAccountLocked
	}
	if !account.IsActive {
		return nil, shared.ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		if _, ferr := s.repo.RecordLoginFailure(ctx, account.ID, lockAfterAttempts, lockDuration); ferr != nil {
			return nil, ferr
		}
		return nil, shared.ErrInvalidCredentials
	}
	if err := s.repo.RecordLoginSuccess(ctx, account.ID, now); err != nil {
		return nil, err
	}
	account.FailedLoginAttempts = 0
	account.LockedUntil = nil
	account.LastLogin = &now
	return account, nil
}

// GetAccount loads an account by ID.
func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	return s.repo.FindByID(ctx, id)
}

// ResolvePrincipal implements authz.AccountSource. Deleted, deactivated and
// locked accounts resolve to nil so stale sessions stop passing the gate
// immediately.
func (s *Service) ResolvePrincipal(ctx context.Context, userID int64) (*authz.Principal, error) {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !account.IsActive || account.IsLocked(s.now()) {
		return nil, nil
	}
	return &authz.Principal{ID: account.ID, Username: account.Username, Role: account.Role}, nil
}

// ChangePassword verifies the current password, enforces the policy and
// stores the new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(current)); err != nil {
		return shared.ErrInvalidCredentials
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

// RegisterSession persists session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// CleanupSessions removes expired session records and returns the count.
func (s *Service) CleanupSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, s.now())
}

var _ authz.AccountSource = (*Service)(nil)
