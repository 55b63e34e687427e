package audit

import (
	"context"
	"log/slog"

	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// RepositoryPort defines storage access for audit entries.
type RepositoryPort interface {
	Insert(ctx context.Context, actorID int64, action, entity, detail string) error
	List(ctx context.Context, action string, limit, offset int) ([]Entry, int, error)
}

// Service records and lists admin actions. Recording is best effort; a
// failed insert must never fail the operation being audited.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort) *Service {
	return &Service{logger: logger, repo: repo}
}

// Record appends one entry, logging instead of propagating failures.
func (s *Service) Record(ctx context.Context, actorID int64, action, entity, detail string) {
	if err := s.repo.Insert(ctx, actorID, action, entity, detail); err != nil {
		s.logger.Warn("audit record failed",
			slog.String("action", action),
			slog.Int64("actor_id", actorID),
			slog.Any("error", err),
		)
	}
}

// List returns a page of entries with pagination metadata.
func (s *Service) List(ctx context.Context, action string, pageNum, limit int) ([]Entry, shared.Pagination, error) {
	page := shared.NewPagination(pageNum, limit, 0)
	items, total, err := s.repo.List(ctx, action, page.Limit, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(pageNum, limit, total), nil
}
