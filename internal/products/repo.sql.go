package products

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides Postgres access to the product catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a page of products, optionally filtered by category.
func (r *Repository) List(ctx context.Context, category string, limit, offset int) ([]Product, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM products
		WHERE $1 = '' OR category = $1`,
		category,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.category, s.name, p.price, p.stock,
		       CASE WHEN p.stock = 0 THEN 'out_of_stock' ELSE p.status END,
		       p.created_at
		FROM products p
		JOIN sellers s ON s.id = p.seller_id
		WHERE $1 = '' OR p.category = $1
		ORDER BY p.id
		LIMIT $2 OFFSET $3`,
		category, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var status string
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SellerName, &p.Price, &p.Stock, &status, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		p.Status = Status(status)
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Categories returns the distinct catalog categories.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
