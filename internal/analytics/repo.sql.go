package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// trailingMonths is the window used by the revenue and signup series.
const trailingMonths = 12

// Repository computes aggregates straight from Postgres. Callers are
// expected to sit behind the cache.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MonthlyRevenue returns settled order revenue per month over the trailing
// window, oldest first. Months without orders appear with a zero value.
func (r *Repository) MonthlyRevenue(ctx context.Context) ([]MonthlyPoint, error) {
	rows, err := r.pool.Query(ctx, `
		WITH months AS (
			SELECT date_trunc('month', now()) - make_interval(months => g) AS month_start
			FROM generate_series($1 - 1, 0, -1) AS g
		)
		SELECT to_char(m.month_start, 'YYYY-MM'),
		       COALESCE(sum(o.amount), 0)
		FROM months m
		LEFT JOIN shop_orders o
		  ON date_trunc('month', o.placed_at) = m.month_start
		 AND o.status NOT IN ('cancelled', 'refunded')
		GROUP BY m.month_start
		ORDER BY m.month_start`,
		trailingMonths,
	)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	defer rows.Close()
	return scanSeries(rows)
}

// MonthlySignups returns new customer registrations per month over the
// trailing window, oldest first.
func (r *Repository) MonthlySignups(ctx context.Context) ([]MonthlyPoint, error) {
	rows, err := r.pool.Query(ctx, `
		WITH months AS (
			SELECT date_trunc('month', now()) - make_interval(months => g) AS month_start
			FROM generate_series($1 - 1, 0, -1) AS g
		)
		SELECT to_char(m.month_start, 'YYYY-MM'),
		       count(u.id)::float8
		FROM months m
		LEFT JOIN shop_users u ON date_trunc('month', u.created_at) = m.month_start
		GROUP BY m.month_start
		ORDER BY m.month_start`,
		trailingMonths,
	)
	if err != nil {
		return nil, fmt.Errorf("monthly signups: %w", err)
	}
	defer rows.Close()
	return scanSeries(rows)
}

// SalesReport aggregates order activity between the two dates inclusive.
func (r *Repository) SalesReport(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	report := &SalesReport{
		Period: fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
	}

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(amount), 0), count(*),
		       COALESCE(avg(amount), 0)
		FROM shop_orders
		WHERE placed_at >= $1 AND placed_at < $2 + interval '1 day'
		  AND status NOT IN ('cancelled', 'refunded')`,
		start, end,
	).Scan(&report.TotalSales, &report.TotalOrders, &report.AverageOrderValue)
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}

	catRows, err := r.pool.Query(ctx, `
		SELECT p.category, sum(i.quantity * i.unit_price) AS sales
		FROM shop_order_items i
		JOIN shop_orders o ON o.id = i.order_id
		JOIN products p ON p.id = i.product_id
		WHERE o.placed_at >= $1 AND o.placed_at < $2 + interval '1 day'
		  AND o.status NOT IN ('cancelled', 'refunded')
		GROUP BY p.category
		ORDER BY sales DESC
		LIMIT 5`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var cs CategorySales
		if err := catRows.Scan(&cs.Category, &cs.Sales); err != nil {
			return nil, fmt.Errorf("scan category sales: %w", err)
		}
		report.TopSellingCategories = append(report.TopSellingCategories, cs)
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	sellerRows, err := r.pool.Query(ctx, `
		SELECT s.name, sum(o.amount) AS sales
		FROM shop_orders o
		JOIN sellers s ON s.id = o.seller_id
		WHERE o.placed_at >= $1 AND o.placed_at < $2 + interval '1 day'
		  AND o.status NOT IN ('cancelled', 'refunded')
		GROUP BY s.name
		ORDER BY sales DESC
		LIMIT 5`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	defer sellerRows.Close()
	for sellerRows.Next() {
		var ss SellerSales
		if err := sellerRows.Scan(&ss.Seller, &ss.Sales); err != nil {
			return nil, fmt.Errorf("scan seller sales: %w", err)
		}
		report.TopSellers = append(report.TopSellers, ss)
	}
	return report, sellerRows.Err()
}

type seriesRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSeries(rows seriesRows) ([]MonthlyPoint, error) {
	var out []MonthlyPoint
	for rows.Next() {
		var p MonthlyPoint
		if err := rows.Scan(&p.Month, &p.Value); err != nil {
			return nil, fmt.Errorf("scan series point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
