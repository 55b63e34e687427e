package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores and reads audit entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one entry.
func (r *Repository) Insert(ctx context.Context, actorID int64, action, entity, detail string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (actor_id, action, entity, detail, recorded_at)
		VALUES ($1, $2, $3, $4, now())`,
		actorID, action, entity, detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns a page of entries, newest first, optionally filtered by
// action prefix.
func (r *Repository) List(ctx context.Context, action string, limit, offset int) ([]Entry, int, error) {
	pattern := action + "%"

	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM audit_log
		WHERE $1 = '' OR action LIKE $2`,
		action, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.actor_id, COALESCE(u.username, ''), a.action, a.entity, a.detail, a.recorded_at
		FROM audit_log a
		LEFT JOIN admin_users u ON u.id = a.actor_id
		WHERE $1 = '' OR a.action LIKE $2
		ORDER BY a.recorded_at DESC, a.id DESC
		LIMIT $3 OFFSET $4`,
		action, pattern, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.Entity, &e.Detail, &e.RecordedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}
