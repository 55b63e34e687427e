package sellers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// Repository provides Postgres access to marketplace sellers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a page of sellers with product and sales aggregates,
// optionally filtered by a name or email search term.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]Seller, int, error) {
	pattern := "%" + search + "%"

	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM sellers
		WHERE $1 = '' OR name ILIKE $2 OR email ILIKE $2`,
		search, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count sellers: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.email, s.status, s.created_at, s.commission_rate,
		       count(DISTINCT p.id) AS total_products,
		       COALESCE(sum(o.amount) FILTER (WHERE o.status = 'delivered'), 0) AS total_sales
		FROM sellers s
		LEFT JOIN products p ON p.seller_id = s.id
		LEFT JOIN shop_orders o ON o.seller_id = s.id
		WHERE $1 = '' OR s.name ILIKE $2 OR s.email ILIKE $2
		GROUP BY s.id
		ORDER BY s.id
		LIMIT $3 OFFSET $4`,
		search, pattern, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list sellers: %w", err)
	}
	defer rows.Close()

	var out []Seller
	for rows.Next() {
		var s Seller
		var status string
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &status, &s.RegisteredAt, &s.CommissionRate, &s.TotalProducts, &s.TotalSales); err != nil {
			return nil, 0, fmt.Errorf("scan seller: %w", err)
		}
		s.Status = ParseStatus(status)
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// UpdateStatus sets the seller status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sellers SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update seller status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
