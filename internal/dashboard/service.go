package dashboard

import (
	"context"

	"github.com/atlas-crm/atlas-crm/internal/analytics"
)

// RepositoryPort defines the aggregate query the service depends on.
type RepositoryPort interface {
	Summary(ctx context.Context) (*Summary, error)
}

// Service serves the dashboard summary through the shared analytics cache,
// so CRM writes invalidate it together with the chart series.
type Service struct {
	repo  RepositoryPort
	cache *analytics.Cache
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *analytics.Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Summary returns the cached headline figures, computing them on a miss.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	key, err := s.cache.BuildKey(ctx, analytics.KeyDashboard())
	if err != nil {
		return nil, err
	}
	var out Summary
	if err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.Summary(ctx)
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Warm precomputes the summary for the current cache version.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.Summary(ctx)
	return err
}
