package customers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// Repository provides Postgres access to storefront customers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a page of customers with their order aggregates, optionally
// filtered by a name or email search term.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]Customer, int, error) {
	pattern := "%" + search + "%"

	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM shop_users
		WHERE $1 = '' OR name ILIKE $2 OR email ILIKE $2`,
		search, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.status, u.created_at,
		       count(o.id) AS total_orders,
		       COALESCE(sum(o.amount) FILTER (WHERE o.status NOT IN ('cancelled', 'refunded')), 0) AS total_spent
		FROM shop_users u
		LEFT JOIN shop_orders o ON o.customer_id = u.id
		WHERE $1 = '' OR u.name ILIKE $2 OR u.email ILIKE $2
		GROUP BY u.id
		ORDER BY u.id
		LIMIT $3 OFFSET $4`,
		search, pattern, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		var status string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &status, &c.RegisteredAt, &c.TotalOrders, &c.TotalSpent); err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		c.Status = ParseStatus(status)
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// UpdateStatus sets the customer status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shop_users SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update customer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
