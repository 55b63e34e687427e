package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// Repository provides Postgres access to marketplace orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a page of orders, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status Status, limit, offset int) ([]Order, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM shop_orders
		WHERE $1 = '' OR status = $1`,
		string(status),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.reference, u.name, s.name, o.amount, o.status, o.placed_at,
		       (SELECT count(*) FROM shop_order_items i WHERE i.order_id = o.id) AS items_count
		FROM shop_orders o
		JOIN shop_users u ON u.id = o.customer_id
		JOIN sellers s ON s.id = o.seller_id
		WHERE $1 = '' OR o.status = $1
		ORDER BY o.placed_at DESC, o.id DESC
		LIMIT $2 OFFSET $3`,
		string(status), limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var st string
		if err := rows.Scan(&o.ID, &o.Reference, &o.CustomerName, &o.SellerName, &o.Amount, &st, &o.PlacedAt, &o.ItemsCount); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		o.Status = ParseStatus(st)
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// UpdateStatus sets the order status, addressing the order by its external
// reference.
func (r *Repository) UpdateStatus(ctx context.Context, reference string, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shop_orders SET status = $2, updated_at = now() WHERE reference = $1`,
		reference, string(status),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
