package customers

import (
	"context"

	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// RepositoryPort defines data access methods for customers.
type RepositoryPort interface {
	List(ctx context.Context, search string, limit, offset int) ([]Customer, int, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// Service exposes customer listing and moderation operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of customers with pagination metadata.
func (s *Service) List(ctx context.Context, q shared.ListQuery) ([]Customer, shared.Pagination, error) {
	page := shared.NewPagination(q.Page, q.Limit, 0)
	items, total, err := s.repo.List(ctx, q.Search, page.Limit, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

// UpdateStatus moves the customer to the given state.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) error {
	return s.repo.UpdateStatus(ctx, id, status)
}
