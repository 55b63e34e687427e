package orders

import (
	"context"

	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// RepositoryPort defines data access methods for orders.
type RepositoryPort interface {
	List(ctx context.Context, status Status, limit, offset int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, reference string, status Status) error
}

// Service exposes order listing and moderation operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of orders with pagination metadata.
func (s *Service) List(ctx context.Context, status Status, pageNum, limit int) ([]Order, shared.Pagination, error) {
	page := shared.NewPagination(pageNum, limit, 0)
	items, total, err := s.repo.List(ctx, status, page.Limit, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(pageNum, limit, total), nil
}

// UpdateStatus moves the order to the given state.
func (s *Service) UpdateStatus(ctx context.Context, reference string, status Status) error {
	return s.repo.UpdateStatus(ctx, reference, status)
}
