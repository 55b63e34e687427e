package products

import (
	"context"

	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// RepositoryPort defines data access methods for the catalog.
type RepositoryPort interface {
	List(ctx context.Context, category string, limit, offset int) ([]Product, int, error)
	Categories(ctx context.Context) ([]string, error)
}

// Service exposes catalog listing operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of products with pagination metadata.
func (s *Service) List(ctx context.Context, category string, pageNum, limit int) ([]Product, shared.Pagination, error) {
	page := shared.NewPagination(pageNum, limit, 0)
	items, total, err := s.repo.List(ctx, category, page.Limit, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(pageNum, limit, total), nil
}

// Categories returns the distinct catalog categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}
