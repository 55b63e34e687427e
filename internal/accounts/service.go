package accounts

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-crm/atlas-crm/internal/auth"
	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// RepositoryPort defines data access methods for admin accounts.
type RepositoryPort interface {
	List(ctx context.Context, search string, limit, offset int) ([]Admin, int, error)
	Get(ctx context.Context, id int64) (*Admin, error)
	Create(ctx context.Context, username, email, passwordHash string, role authz.Role, createdBy int64) (*Admin, error)
	UpdateFields(ctx context.Context, id int64, username, email *string, isActive *bool, role *authz.Role) (*Admin, error)
	Delete(ctx context.Context, id int64) error
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
}

// Service handles admin account management logic. Permission verdicts are
// enforced by the handler's gate; the service only applies data rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of admin accounts with pagination metadata.
func (s *Service) List(ctx context.Context, q shared.ListQuery) ([]Admin, shared.Pagination, error) {
	page := shared.NewPagination(q.Page, q.Limit, 0)
	admins, total, err := s.repo.List(ctx, q.Search, page.Limit, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return admins, shared.NewPagination(q.Page, q.Limit, total), nil
}

// Get fetches one admin account.
func (s *Service) Get(ctx context.Context, id int64) (*Admin, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the password policy, hashes the secret and stores the
// account.
func (s *Service) Create(ctx context.Context, username, email, password string, role authz.Role, createdBy int64) (*Admin, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, username, email, string(hash), role, createdBy)
}

// UpdateInput carries the optional fields of an account update.
type UpdateInput struct {
	Username *string
	Email    *string
	IsActive *bool
	Role     *authz.Role
}

// Update applies the provided fields.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*Admin, error) {
	return s.repo.UpdateFields(ctx, id, input.Username, input.Email, input.IsActive, input.Role)
}

// Delete removes an admin account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ResetPassword validates the policy, hashes and stores the new secret, and
// unlocks the account.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.ResetPassword(ctx, id, string(hash))
}
